package contract

import (
	"sort"
	"unicode"
)

type charAttrs uint8

const (
	attrSpace charAttrs = 1 << iota
	attrLetter
	attrDigit
	attrPunct
	attrUpper
	attrLower
	attrCell // codepoint has a cell in the text table (internal engine only)
)

// charEntry caches locale-aware classification for one codepoint.
type charEntry struct {
	r     rune
	upper rune
	lower rune
	attrs charAttrs
}

// charTable is a lazily populated classification table, kept sorted by
// codepoint. Entries are created on first lookup and never removed during
// the table's lifetime.
type charTable struct {
	entries []charEntry
}

// find locates the entry for r, or the insertion index when absent.
func (ct *charTable) find(r rune) (int, bool) {
	i := sort.Search(len(ct.entries), func(i int) bool {
		return ct.entries[i].r >= r
	})
	return i, i < len(ct.entries) && ct.entries[i].r == r
}

// classify returns the cached entry for r, deriving it on first sight and
// handing the fresh entry to the translation method's classified hook.
// Returns nil for runes outside the Unicode range; callers treat a nil
// entry as "no attributes".
func (ctx *context) classify(r rune) *charEntry {
	if r < 0 || r > unicode.MaxRune {
		return nil
	}
	ct := &ctx.table.chars
	i, ok := ct.find(r)
	if ok {
		return &ct.entries[i]
	}
	e := charEntry{r: r, upper: unicode.ToUpper(r), lower: unicode.ToLower(r)}
	switch {
	case unicode.IsSpace(r):
		e.attrs |= attrSpace
	case unicode.IsDigit(r):
		e.attrs |= attrDigit
	case unicode.IsLetter(r):
		e.attrs |= attrLetter
		if unicode.IsUpper(r) {
			e.attrs |= attrUpper
		}
		if unicode.IsLower(r) {
			e.attrs |= attrLower
		}
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		e.attrs |= attrPunct
	}
	ct.entries = append(ct.entries, charEntry{})
	copy(ct.entries[i+1:], ct.entries[i:])
	ct.entries[i] = e
	entry := &ct.entries[i]
	ctx.table.method.classified(ctx, entry)
	return entry
}

func (e *charEntry) is(a charAttrs) bool {
	return e != nil && e.attrs&a != 0
}
