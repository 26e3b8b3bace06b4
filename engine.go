package contract

import (
	"fmt"
	"unicode"

	"github.com/derekparker/trie"

	"github.com/braillekit/contract/cellmap"
)

// ruleEngine is the internal translation method: longest-match,
// context-sensitive substitution over a compiled rule set, with the cellmap
// text table serving uncontracted characters.
//
// Rules are indexed by their case-folded input in a prefix trie. At each
// input position the engine walks successive prefixes, keeps the longest
// rule whose opcode constraints hold at that position, and emits its cells.
// Characters no rule covers go out one cell at a time through the text
// table.
type ruleEngine struct {
	cells   *cellmap.Table
	index   *trie.Trie
	pending map[string][]*Rule // collected until seal
	maxRule int
	count   int
}

func newRuleEngine(cells *cellmap.Table) *ruleEngine {
	return &ruleEngine{
		cells:   cells,
		index:   trie.New(),
		pending: make(map[string][]*Rule),
	}
}

// add registers one rule under its folded input key. Rules sharing an input
// sequence are kept in registration order; the first applicable one wins.
func (e *ruleEngine) add(input []rune, cells []Cell, opcode Opcode) error {
	if len(input) == 0 {
		return fmt.Errorf("contraction rule with empty input")
	}
	if opcode != OpLiteral && len(cells) == 0 {
		return fmt.Errorf("contraction rule %q has no cells", string(input))
	}
	folded := foldRunes(input)
	rule := &Rule{Input: folded, Cells: cells, Opcode: opcode}
	key := string(folded)
	e.pending[key] = append(e.pending[key], rule)
	if len(folded) > e.maxRule {
		e.maxRule = len(folded)
	}
	e.count++
	return nil
}

// seal moves collected rules into the lookup trie. No rules may be added
// afterwards.
func (e *ruleEngine) seal() {
	for key, rules := range e.pending {
		e.index.Add(key, rules)
	}
	e.pending = nil
}

// classified marks fresh classifier entries that have a cell of their own,
// so fallback decisions need no second table probe.
func (e *ruleEngine) classified(ctx *context, entry *charEntry) {
	if _, ok := e.cells.Cell(entry.r); ok {
		entry.attrs |= attrCell
	}
}

func (e *ruleEngine) translate(ctx *context) bool {
	folded := foldRunes(ctx.input)
	for ctx.in < len(ctx.input) {
		r := ctx.input[ctx.in]
		entry := ctx.classify(r)
		attrs := charAttrs(0)
		lower := r
		if entry != nil {
			attrs = entry.attrs
			lower = entry.lower
		}
		if attrs&attrSpace != 0 {
			ctx.prevOpcode = OpNone // literal poison ends at the word boundary
			cell, _ := e.cells.CellWithFallback(r)
			if !ctx.emitSpan(1, cell) {
				return true // out of room at a boundary: clean partial stop
			}
			continue
		}
		if ctx.prevOpcode != OpLiteral && !e.expandHere(ctx) {
			if rule, length := e.match(ctx, folded); rule != nil {
				if rule.Opcode == OpLiteral {
					if !e.putLiteral(ctx, length) {
						return true
					}
					ctx.prevOpcode = OpLiteral
					continue
				}
				cells := rule.Cells
				if ctx.prefs.Capitalization == CapSign && attrs&attrUpper != 0 && len(ctx.table.CapSign) > 0 {
					cells = prepend(ctx.table.CapSign, rule.Cells)
				}
				if ctx.remaining() < len(cells) {
					return false // a full contraction must not be split
				}
				ctx.emitSpan(length, cells...)
				ctx.prevOpcode = rule.Opcode
				continue
			}
		}
		if !e.putCharacter(ctx, r, lower, attrs) {
			return true
		}
	}
	return true
}

// match returns the longest rule applicable at ctx.in, if any, with its
// match length in the folded input.
func (e *ruleEngine) match(ctx *context, folded []rune) (*Rule, int) {
	limit := min(e.maxRule, len(folded)-ctx.in)
	var best *Rule
	bestLen := 0
	for length := 1; length <= limit; length++ {
		prefix := string(folded[ctx.in : ctx.in+length])
		if node, ok := e.index.Find(prefix); ok {
			if rules, ok := node.Meta().([]*Rule); ok {
				for _, rule := range rules {
					if e.applicable(ctx, rule, length) {
						best, bestLen = rule, length
						break
					}
				}
			}
		}
		if !e.index.HasKeysWithPrefix(prefix) {
			break
		}
	}
	return best, bestLen
}

func (e *ruleEngine) applicable(ctx *context, rule *Rule, length int) bool {
	switch rule.Opcode {
	case OpAlways, OpLiteral:
		return true
	case OpWholeWord:
		return ctx.atWordStart() && ctx.wordEndsAt(ctx.in+length)
	case OpBegWord:
		return ctx.atWordStart() && !ctx.wordEndsAt(ctx.in+length)
	case OpEndWord:
		return !ctx.atWordStart() && ctx.wordEndsAt(ctx.in+length)
	}
	return false
}

// expandHere reports whether the word at ctx.in must be rendered
// uncontracted because the cursor sits inside it.
func (e *ruleEngine) expandHere(ctx *context) bool {
	return ctx.prefs.ExpandCurrentWord && ctx.cursor != NoCursor &&
		ctx.sameWord(ctx.in, ctx.cursor)
}

// putLiteral renders the next length characters uncontracted, one offset
// each. Stops early when room runs out.
func (e *ruleEngine) putLiteral(ctx *context, length int) bool {
	for i := 0; i < length; i++ {
		r := ctx.input[ctx.in]
		entry := ctx.classify(r)
		attrs := charAttrs(0)
		lower := r
		if entry != nil {
			attrs = entry.attrs
			lower = entry.lower
		}
		if !e.putCharacter(ctx, r, lower, attrs) {
			return false
		}
	}
	return true
}

// putCharacter emits one uncontracted character with any marker cells it
// needs: a number sign when a digit run starts, a capital sign for capitals
// under CapSign mode. Reports false when the cells do not fit.
func (e *ruleEngine) putCharacter(ctx *context, r, lower rune, attrs charAttrs) bool {
	t := ctx.table
	var cell Cell
	ok := false
	if attrs&attrCell != 0 {
		cell, ok = e.cells.Cell(r)
	}
	if !ok && lower != r {
		cell, ok = e.cells.Cell(lower)
	}
	if !ok {
		cell, _ = e.cells.CellWithFallback(r)
	}
	var markers []Cell
	if attrs&attrDigit != 0 && len(t.NumSign) > 0 && !e.prevIsDigit(ctx) {
		markers = t.NumSign
	}
	if attrs&attrUpper != 0 && ctx.prefs.Capitalization == CapSign && len(t.CapSign) > 0 {
		markers = t.CapSign
	}
	if len(markers) == 0 {
		return ctx.emitSpan(1, cell)
	}
	return ctx.emitSpan(1, append(prepend(markers, nil), cell)...)
}

func (e *ruleEngine) prevIsDigit(ctx *context) bool {
	if ctx.in == 0 {
		return false
	}
	return ctx.classify(ctx.input[ctx.in-1]).is(attrDigit)
}

func foldRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func prepend(head, tail []Cell) []Cell {
	out := make([]Cell, 0, len(head)+len(tail))
	out = append(out, head...)
	return append(out, tail...)
}
