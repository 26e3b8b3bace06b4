package contract

// Opcode classifies a contraction rule. The engine remembers the opcode of
// the previously applied rule, since some rules are sensitive to what
// precedes them.
type Opcode uint8

const (
	OpNone Opcode = iota
	// OpLiteral renders its input uncontracted and poisons the remainder of
	// the word: no contraction may apply until the next word boundary.
	OpLiteral
	// OpAlways applies wherever its input matches.
	OpAlways
	// OpWholeWord applies only when its input spans a complete word.
	OpWholeWord
	// OpBegWord applies only at the start of a word, and not for the whole
	// of it.
	OpBegWord
	// OpEndWord applies only at the end of a word, and not for the whole
	// of it.
	OpEndWord
)

var opcodeNames = []string{"none", "literal", "always", "word", "begword", "endword"}

func (o Opcode) String() string {
	if int(o) >= len(opcodeNames) {
		return "invalid"
	}
	return opcodeNames[o]
}

// Rule is one compiled contraction: Input (case-folded) is consumed, Cells
// are emitted in its place.
type Rule struct {
	Input  []rune
	Cells  []Cell
	Opcode Opcode
}

// method is the translation backend owned by a Table: either the internal
// rule engine or the delegate to an external translation engine. translate
// consumes from the working context and reports false when it could not run
// to a usable stop (a contraction that cannot fit, or an engine failure);
// the orchestrator then falls back to uncontracted conversion for whatever
// remains. classified is invoked for every newly classified codepoint.
type method interface {
	translate(ctx *context) bool
	classified(ctx *context, e *charEntry)
}
