package contract

// Mode is the translation-mode bitmask handed to an external engine.
type Mode uint32

const (
	// ModeRawDots requests raw dot patterns instead of braille characters.
	ModeRawDots Mode = 1 << iota
	// ModeCaseFold folds capitals onto the lowercase braille row.
	ModeCaseFold
	// ModeExpandWord renders the word under the cursor uncontracted.
	ModeExpandWord
)

// EngineRequest is one translation run handed to an external engine.
type EngineRequest struct {
	TableList   string
	Input       []rune
	OutputLimit int
	Cursor      int // index into Input, or NoCursor
	Mode        Mode
}

// EngineResult is the external engine's answer, in the engine's own
// conventions: Cells may be wider than a byte and are masked on return;
// InputOffsets repeats the previous index for characters that produced no
// new cell, rather than marking them explicitly.
type EngineResult struct {
	Cells         []uint16
	InputOffsets  []int // per consumed input character: first output index
	OutputOffsets []int // per produced cell: source input index
	Consumed      int
	Produced      int
}

// Engine is implemented by bindings to an external contraction translator
// such as liblouis. False reports translation failure, which is advisory:
// the orchestrator falls back to uncontracted conversion.
type Engine interface {
	Translate(req EngineRequest) (EngineResult, bool)
}

// engineDelegate is the translation method that hands the entire run to an
// external engine and re-derives this package's offset convention from the
// engine's per-character offset array.
type engineDelegate struct {
	engine    Engine
	tableList string
	mode      Mode
}

func (d *engineDelegate) classified(ctx *context, entry *charEntry) {}

func (d *engineDelegate) translate(ctx *context) bool {
	mode := d.mode
	if ctx.prefs.ExpandCurrentWord {
		mode |= ModeExpandWord
	}
	if ctx.prefs.Capitalization == CapNone {
		mode |= ModeCaseFold
	}
	res, ok := d.engine.Translate(EngineRequest{
		TableList:   d.tableList,
		Input:       ctx.input,
		OutputLimit: len(ctx.out),
		Cursor:      ctx.cursor,
		Mode:        mode,
	})
	if !ok {
		tracer().Debugf("external engine failed for %d characters, falling back", len(ctx.input))
		return false
	}
	consumed := min(res.Consumed, len(ctx.input), len(res.InputOffsets))
	produced := min(res.Produced, len(ctx.out), len(res.Cells))
	for i := 0; i < produced; i++ {
		ctx.out[i] = Cell(res.Cells[i] & 0xFF)
	}
	// The engine repeats the previous output index for merged characters;
	// this core marks "produced no new cell" explicitly instead. Offsets
	// that run backwards or point outside the produced cells are treated
	// as merged too.
	prev := -1
	for i := 0; i < consumed; i++ {
		off := res.InputOffsets[i]
		if i > 0 && off <= prev {
			ctx.rec.merged(i)
			continue
		}
		if off < 0 || off >= produced {
			ctx.rec.merged(i)
			continue
		}
		ctx.rec.note(i, off)
		prev = off
	}
	ctx.in = consumed
	ctx.outPos = produced
	return true
}
