package contract

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// composeInput runs canonical composition (NFC) over the input, so that a
// base character followed by combining marks translates like its precomposed
// form. The returned position map has one entry per working-input character
// holding the original index its segment started at; a nil map means the
// original buffer is used unchanged (already composed, or normalization
// unavailable for this input).
func composeInput(in []rune) ([]rune, []int) {
	for _, r := range in {
		if !utf8.ValidRune(r) {
			return in, nil // normalization unavailable; use input as-is
		}
	}
	b := []byte(string(in))
	if norm.NFC.IsNormal(b) {
		return in, nil
	}
	var it norm.Iter
	it.Init(norm.NFC, b)
	work := make([]rune, 0, len(in))
	posMap := make([]int, 0, len(in))
	srcRune := 0
	prevPos := 0
	for !it.Done() {
		seg := it.Next()
		pos := it.Pos()
		segSrc := utf8.RuneCount(b[prevPos:pos])
		k := 0
		for len(seg) > 0 {
			r, size := utf8.DecodeRune(seg)
			seg = seg[size:]
			oi := srcRune + k
			if k >= segSrc {
				oi = srcRune + segSrc - 1
			}
			work = append(work, r)
			posMap = append(posMap, oi)
			k++
		}
		srcRune += segSrc
		prevPos = pos
	}
	return work, posMap
}

// cursorToWork maps an original-space cursor through the position map: a
// cursor on a character that merged into a composed form lands on that
// composed character.
func cursorToWork(cursor int, posMap []int) int {
	if cursor == NoCursor || posMap == nil {
		return cursor
	}
	mapped := 0
	for j, oi := range posMap {
		if oi > cursor {
			break
		}
		mapped = j
	}
	return mapped
}
