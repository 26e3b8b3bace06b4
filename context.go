package contract

// offsetRecorder builds the per-character offset map: for each working-input
// character, the index of the cell where its representation begins, or
// NoOffset when it was merged into another character's output. Offsets must
// be monotonic non-decreasing across defined entries.
type offsetRecorder struct {
	offsets []int
	last    int
}

func newOffsetRecorder(n int) offsetRecorder {
	rec := offsetRecorder{offsets: make([]int, n)}
	for i := range rec.offsets {
		rec.offsets[i] = NoOffset
	}
	return rec
}

// note records that input character i begins at cell index off.
func (rec *offsetRecorder) note(i, off int) {
	assert(off >= rec.last, "offset map must be monotonic non-decreasing")
	rec.offsets[i] = off
	rec.last = off
}

// merged records that input character i produced no new cell.
func (rec *offsetRecorder) merged(i int) {
	rec.offsets[i] = NoOffset
}

// context is the working state of one translation call. It is created and
// destroyed within ContractText and never shared.
type context struct {
	table *Table
	prefs Prefs

	input  []rune // working input, possibly the normalized scratch buffer
	out    []Cell // caller-visible output buffer; len is the capacity
	rec    offsetRecorder
	cursor int // cursor position in working-input space, or NoCursor

	in     int // next input character to consume
	outPos int // next output cell to produce

	prevOpcode Opcode
}

func newContext(t *Table, input []rune, out []Cell, cursor int, prefs Prefs) *context {
	return &context{
		table:  t,
		prefs:  prefs,
		input:  input,
		out:    out,
		rec:    newOffsetRecorder(len(input)),
		cursor: cursor,
	}
}

func (ctx *context) remaining() int { return len(ctx.out) - ctx.outPos }

// emitSpan writes cells for the span input[ctx.in : ctx.in+consumed]. The
// span's offset is noted at the first produced cell (marker cells included);
// the remaining characters of the span are merged. Reports false, without
// consuming, when the cells do not fit.
func (ctx *context) emitSpan(consumed int, cells ...Cell) bool {
	if ctx.remaining() < len(cells) {
		return false
	}
	ctx.rec.note(ctx.in, ctx.outPos)
	for i := 1; i < consumed; i++ {
		ctx.rec.merged(ctx.in + i)
	}
	copy(ctx.out[ctx.outPos:], cells)
	ctx.in += consumed
	ctx.outPos += len(cells)
	return true
}

// atWordStart reports whether ctx.in sits at the beginning of a word.
func (ctx *context) atWordStart() bool {
	if ctx.in == 0 {
		return true
	}
	return ctx.classify(ctx.input[ctx.in-1]).is(attrSpace)
}

// wordEndsAt reports whether a match ending just before index i would end
// a word.
func (ctx *context) wordEndsAt(i int) bool {
	if i >= len(ctx.input) {
		return true
	}
	return ctx.classify(ctx.input[i]).is(attrSpace)
}

// sameWord reports whether positions i and j lie inside one word, with no
// intervening space and neither position on a space itself.
func (ctx *context) sameWord(i, j int) bool {
	if j < i {
		i, j = j, i
	}
	if i < 0 || j >= len(ctx.input) {
		return false
	}
	for k := i; k <= j; k++ {
		if ctx.classify(ctx.input[k]).is(attrSpace) {
			return false
		}
	}
	return true
}
