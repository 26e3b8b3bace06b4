package contract

// ContractText translates input characters into braille cells using the
// given table. This is the sole operation the display-refresh driver
// invokes.
//
// The lengths of out and offsets are the available capacities; the returned
// counts report the characters actually consumed and the cells actually
// produced. offsets, when non-nil, receives one entry per input character:
// the index of the cell where that character's representation begins, or
// NoOffset when it was merged into another character's output. cursor is
// the index of the cursor character in the input, or NoCursor.
//
// Zero-length input or a zero-capacity output buffer yields (0, 0); a
// too-small buffer is signalled purely through the counts.
func ContractText(t *Table, in []rune, out []Cell, offsets []int, cursor int) (consumed, produced int) {
	if t == nil || len(in) == 0 || len(out) == 0 {
		return 0, 0
	}
	prefs := t.Prefs
	if t.cache.check(in, len(out), len(offsets), cursor, prefs) {
		return t.cache.use(out, offsets)
	}

	work, posMap := composeInput(in)
	ctx := newContext(t, work, out, cursorToWork(cursor, posMap), prefs)

	t.methodCalls++
	if !t.method.translate(ctx) {
		fallbackText(ctx)
	}
	wordBackoff(ctx)

	consumed, produced = ctx.in, ctx.outPos
	finalOffsets := ctx.rec.offsets
	if posMap != nil {
		consumed = originalConsumed(ctx.in, posMap, len(in))
		finalOffsets = remapOffsets(ctx.rec.offsets[:ctx.in], posMap, len(in))
	}
	if offsets != nil {
		n := min(len(offsets), len(finalOffsets))
		copy(offsets, finalOffsets[:n])
		for i := n; i < len(offsets); i++ {
			offsets[i] = NoOffset
		}
	}
	t.cache.update(in, out, finalOffsets, consumed, produced, len(out), len(offsets), cursor, prefs)
	return consumed, produced
}

// fallbackText converts the unconsumed remainder one cell per character
// through the text table. Used when the translation method reports failure.
func fallbackText(ctx *context) {
	cells := ctx.table.cells
	for ctx.in < len(ctx.input) {
		c, _ := cells.CellWithFallback(ctx.input[ctx.in])
		if !ctx.emitSpan(1, c) {
			return
		}
	}
}

// wordBackoff keeps words whole across display refreshes: when translation
// stopped mid-word because output space ran out, the consumed and produced
// counts are backed off to the last word boundary. The backoff is skipped
// when the cursor lies inside the tail that would be abandoned, so the
// cursor's character stays visible even at the cost of splitting the word;
// a cursor on the boundary space itself still allows the backoff. A single
// unbroken word larger than the output stays split, since backing off would
// make no progress at all.
func wordBackoff(ctx *context) {
	if ctx.in >= len(ctx.input) || ctx.in == 0 {
		return
	}
	if ctx.classify(ctx.input[ctx.in]).is(attrSpace) {
		return // stopped at a word boundary
	}
	if ctx.classify(ctx.input[ctx.in-1]).is(attrSpace) {
		return // stopped at a word start
	}
	b := ctx.in - 1
	for b >= 0 && !ctx.classify(ctx.input[b]).is(attrSpace) {
		b--
	}
	if b < 0 {
		return
	}
	newIn := b + 1
	// Never land inside a rule's input span (a rule may contain the space).
	for newIn > 0 && ctx.rec.offsets[newIn] == NoOffset {
		newIn--
	}
	if ctx.cursor != NoCursor && ctx.cursor >= newIn && ctx.cursor < ctx.in {
		return
	}
	cut := ctx.rec.offsets[newIn]
	if cut == NoOffset {
		// An external engine may mark the whole prefix as merged; with no
		// span start left of the boundary the split has to stay.
		return
	}
	for i := newIn; i < ctx.in; i++ {
		ctx.rec.offsets[i] = NoOffset
	}
	tracer().Debugf("word backoff: consumed %d -> %d, produced %d -> %d",
		ctx.in, newIn, ctx.outPos, cut)
	ctx.in = newIn
	ctx.outPos = cut
}

// originalConsumed maps a consumed count in working space back to original
// space through the position map.
func originalConsumed(workConsumed int, posMap []int, n int) int {
	if workConsumed >= len(posMap) {
		return n
	}
	return posMap[workConsumed]
}

// remapOffsets rebuilds the offset map in original-input space. Where
// several working characters collapse onto one original character the first
// one wins; original characters whose working form was merged into another
// character's output keep NoOffset.
func remapOffsets(workOffsets []int, posMap []int, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = NoOffset
	}
	assigned := make([]bool, n)
	for j, off := range workOffsets {
		oi := posMap[j]
		if !assigned[oi] {
			assigned[oi] = true
			out[oi] = off
		}
	}
	return out
}
