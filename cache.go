package contract

const initialCacheCap = 32

// cache remembers the last full translation of its owning table, together
// with the settings it was computed under. Screen content is redrawn far
// more often than it changes, so replaying the last result removes the rule
// engine from the common refresh path.
//
// A cached result is valid only on exact equality of every compared field:
// cursor offset, output and offsets capacity, preference snapshot and
// the complete input codepoint sequence. There is no partial reuse.
type cache struct {
	valid bool

	input   []rune
	output  []Cell
	offsets []int

	cursor int
	outCap int
	offCap int
	prefs  Prefs

	consumed int
	produced int
}

// grown resizes buf to n entries, reusing capacity when possible and
// doubling otherwise. Buffers never shrink: reallocation frequency is the
// bound that matters under the caching workload.
func grown[T rune | Cell | int](buf []T, n int) []T {
	if cap(buf) >= n {
		return buf[:n]
	}
	newCap := max(cap(buf), initialCacheCap)
	for newCap < n {
		newCap *= 2
	}
	return make([]T, n, newCap)
}

func (c *cache) check(in []rune, outCap, offCap int, cursor int, prefs Prefs) bool {
	if c == nil || !c.valid {
		return false
	}
	if cursor != c.cursor || outCap != c.outCap || offCap != c.offCap || prefs != c.prefs {
		return false
	}
	if len(in) != len(c.input) {
		return false
	}
	for i, r := range in {
		if r != c.input[i] {
			return false
		}
	}
	return true
}

// use splices the cached output and offsets into the caller's buffers and
// returns the cached counts. No recomputation happens.
func (c *cache) use(out []Cell, offsets []int) (consumed, produced int) {
	copy(out, c.output[:c.produced])
	if offsets != nil {
		n := copy(offsets, c.offsets)
		for i := n; i < len(offsets); i++ {
			offsets[i] = NoOffset
		}
	}
	return c.consumed, c.produced
}

// update stores a genuinely computed translation. offsets is in
// original-input space and has one entry per input character.
func (c *cache) update(in []rune, out []Cell, offsets []int,
	consumed, produced int, outCap, offCap int, cursor int, prefs Prefs) {
	//
	c.valid = false
	c.input = grown(c.input, len(in))
	copy(c.input, in)
	c.output = grown(c.output, produced)
	copy(c.output, out[:produced])
	c.offsets = grown(c.offsets, len(offsets))
	copy(c.offsets, offsets)
	c.cursor = cursor
	c.outCap = outCap
	c.offCap = offCap
	c.prefs = prefs
	c.consumed = consumed
	c.produced = produced
	c.valid = true
}

func (c *cache) invalidate() {
	c.valid = false
}
