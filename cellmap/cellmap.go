// Package cellmap provides the text table: a sparse mapping from Unicode
// codepoints to braille cells, used for uncontracted output and as the
// fallback path of the contraction engine.
//
// The forward mapping is a frozen three-level page table:
//   - planes[p] indexes one Unicode plane (p = r>>16, 0..16),
//   - each plane holds 256 row slots; rows[hi] is a 1-based page index,
//     or 0 meaning "row absent",
//   - pages is a flat array of 256-entry pages of cell entries.
//
// Lookup is O(1) with three array reads. Memory is paid only for rows that
// contain at least one assigned codepoint (512 bytes per populated row).
//
// A cell entry carries an explicit "defined" bit: a dot pattern of 0 (the
// blank cell) is a legal assignment, not an absence marker. A codepoint may
// also be an alias, displaying as another codepoint's cell.
//
// Tables are immutable once frozen and are replaced wholesale, never mutated
// in place, when a table file is reloaded.
package cellmap

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Cell is one braille character position: an 8-bit dot-raise mask.
type Cell byte

// Dot masks for the eight braille dots.
const (
	Dot1 Cell = 1 << iota
	Dot2
	Dot3
	Dot4
	Dot5
	Dot6
	Dot7
	Dot8
)

const numPlanes = 17 // Unicode planes 0..16

const (
	flagDefined = 1 << iota
	flagAlias
)

type cellEntry struct {
	dots  Cell
	flags uint8
}

// planeIndex maps the middle byte of a codepoint to a 1-based page index.
// 0 means "row absent".
type planeIndex struct {
	rows [256]uint16
}

// Table is a frozen codepoint-to-cell mapping.
type Table struct {
	planes  [numPlanes]*planeIndex
	pages   []cellEntry // flat: numPages*256
	aliases map[rune]rune

	// input is the reverse mapping, one codepoint per possible cell value,
	// populated at freeze time from direct (non-alias) assignments.
	input    [256]rune
	inputSet [256]bool

	replacement    Cell
	hasReplacement bool
	tryBase        bool
}

// Stats reports density metrics for the underlying page table.
type Stats struct {
	Rows           int // populated 256-entry rows
	Defined        int // directly assigned codepoints
	Aliases        int
	HasReplacement bool // a replacement cell was configured
}

// stripMarks removes combining marks after canonical decomposition, so that
// "é" reduces to "e". Used for the base-character fallback.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func planeOf(r rune) int { return int(r >> 16) }
func rowOf(r rune) int   { return int(r>>8) & 0xFF }
func slotOf(r rune) int  { return int(r) & 0xFF }

func validRune(r rune) bool {
	return r >= 0 && r <= unicode.MaxRune
}

func (t *Table) entry(r rune) (cellEntry, bool) {
	if !validRune(r) {
		return cellEntry{}, false
	}
	p := t.planes[planeOf(r)]
	if p == nil {
		return cellEntry{}, false
	}
	pi := p.rows[rowOf(r)]
	if pi == 0 {
		return cellEntry{}, false
	}
	base := int(pi-1) << 8
	e := t.pages[base+slotOf(r)]
	if e.flags == 0 {
		return cellEntry{}, false
	}
	return e, true
}

// Cell returns the cell assigned to r, following at most one alias hop.
// The second result reports whether r is defined in this table.
func (t *Table) Cell(r rune) (Cell, bool) {
	e, ok := t.entry(r)
	if !ok {
		return 0, false
	}
	if e.flags&flagAlias != 0 {
		target, ok := t.aliases[r]
		if !ok {
			return 0, false
		}
		te, ok := t.entry(target)
		if !ok || te.flags&flagAlias != 0 {
			return 0, false
		}
		return te.dots, true
	}
	return e.dots, true
}

// CellWithFallback returns the cell for r, trying the diacritic-stripped base
// character when r itself is undefined, and finally the table's replacement
// cell. The boolean reports whether any of the lookups succeeded; on false
// the replacement cell is returned anyway.
func (t *Table) CellWithFallback(r rune) (Cell, bool) {
	if c, ok := t.Cell(r); ok {
		return c, true
	}
	if t.tryBase {
		if base, ok := baseCharacter(r); ok {
			if c, ok := t.Cell(base); ok {
				return c, true
			}
		}
	}
	return t.replacement, false
}

// Character is the reverse lookup: the codepoint a cell value types as.
// Unambiguous by construction (when several direct assignments share a cell
// value, the lowest codepoint wins at freeze time).
func (t *Table) Character(c Cell) (rune, bool) {
	if !t.inputSet[c] {
		return 0, false
	}
	return t.input[c], true
}

// Replacement returns the cell used for undefined codepoints.
func (t *Table) Replacement() Cell { return t.replacement }

// Stats counts populated rows and assignments.
func (t *Table) Stats() Stats {
	s := Stats{Aliases: len(t.aliases), HasReplacement: t.hasReplacement}
	for _, p := range t.planes {
		if p == nil {
			continue
		}
		for _, pi := range p.rows {
			if pi == 0 {
				continue
			}
			s.Rows++
			base := int(pi-1) << 8
			for i := 0; i < 256; i++ {
				flags := t.pages[base+i].flags
				if flags&flagDefined != 0 && flags&flagAlias == 0 {
					s.Defined++
				}
			}
		}
	}
	return s
}

// baseCharacter strips combining marks from r. Returns false when r has no
// distinct base character or the transform fails.
func baseCharacter(r rune) (rune, bool) {
	out, _, err := transform.String(stripMarks, string(r))
	if err != nil || out == "" {
		return 0, false
	}
	base := []rune(out)[0]
	if base == r {
		return 0, false
	}
	return base, true
}
