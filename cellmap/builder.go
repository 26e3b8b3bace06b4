package cellmap

import "fmt"

// Builder accumulates codepoint assignments and produces an immutable Table.
// A Builder must not be used after Freeze.
type Builder struct {
	table  *Table
	frozen bool
}

// NewBuilder creates an empty builder. Base-character fallback is enabled
// by default.
func NewBuilder() *Builder {
	return &Builder{
		table: &Table{
			aliases: make(map[rune]rune),
			tryBase: true,
		},
	}
}

// TryBaseCharacters controls whether lookups retry with the
// diacritic-stripped base character before falling back to the
// replacement cell.
func (b *Builder) TryBaseCharacters(enabled bool) {
	b.table.tryBase = enabled
}

// SetReplacement assigns the cell returned for undefined codepoints.
func (b *Builder) SetReplacement(dots Cell) {
	b.table.replacement = dots
	b.table.hasReplacement = true
}

func (b *Builder) ensurePage(r rune) int {
	t := b.table
	pl := planeOf(r)
	if t.planes[pl] == nil {
		t.planes[pl] = &planeIndex{}
	}
	p := t.planes[pl]
	hi := rowOf(r)
	pi := p.rows[hi]
	if pi == 0 {
		// allocate a new page (256 entries)
		t.pages = append(t.pages, make([]cellEntry, 256)...)
		pi = uint16(len(t.pages) >> 8) // number of pages, 1-based index
		p.rows[hi] = pi
	}
	return int(pi-1) << 8
}

// Set assigns a dot pattern to codepoint r. Reassignment overwrites.
func (b *Builder) Set(r rune, dots Cell) error {
	if b.frozen {
		return fmt.Errorf("cellmap: builder already frozen")
	}
	if !validRune(r) {
		return fmt.Errorf("cellmap: codepoint out of range: %#x", r)
	}
	base := b.ensurePage(r)
	b.table.pages[base+slotOf(r)] = cellEntry{dots: dots, flags: flagDefined}
	delete(b.table.aliases, r)
	return nil
}

// SetAlias makes codepoint r display as target's cell. The target need not
// be assigned yet; it is resolved at lookup time against the frozen table.
func (b *Builder) SetAlias(r, target rune) error {
	if b.frozen {
		return fmt.Errorf("cellmap: builder already frozen")
	}
	if !validRune(r) || !validRune(target) {
		return fmt.Errorf("cellmap: codepoint out of range")
	}
	if r == target {
		return fmt.Errorf("cellmap: alias of %#x to itself", r)
	}
	base := b.ensurePage(r)
	b.table.pages[base+slotOf(r)] = cellEntry{flags: flagDefined | flagAlias}
	b.table.aliases[r] = target
	return nil
}

// Freeze builds the reverse table and returns the finished Table. The
// builder is unusable afterwards.
func (b *Builder) Freeze() *Table {
	if b.frozen {
		return b.table
	}
	b.frozen = true
	t := b.table
	// Reverse table from direct assignments, lowest codepoint first so the
	// mapping is deterministic regardless of assignment order.
	for pl := range t.planes {
		p := t.planes[pl]
		if p == nil {
			continue
		}
		for hi := 0; hi < 256; hi++ {
			pi := p.rows[hi]
			if pi == 0 {
				continue
			}
			base := int(pi-1) << 8
			for lo := 0; lo < 256; lo++ {
				e := t.pages[base+lo]
				if e.flags&flagDefined == 0 || e.flags&flagAlias != 0 {
					continue
				}
				if !t.inputSet[e.dots] {
					t.inputSet[e.dots] = true
					t.input[e.dots] = rune(pl<<16 | hi<<8 | lo)
				}
			}
		}
	}
	return t
}
