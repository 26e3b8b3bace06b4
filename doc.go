/*
Package contract translates runs of text into braille cells, applying
rule-based contraction: the substitution of one or more input characters by
one or more cells, shorter than direct transliteration.

The package is the translation core of a screen-reading braille daemon. A
compiled Table holds either an internal contraction rule set (backed by a
cellmap text table for uncontracted characters) or a handle to an external
translation engine; both are driven through ContractText, the single
operation the display-refresh driver invokes.

ContractText performs Unicode composition on its input, tracks the cursor
position through that normalization, applies the table's translation method,
truncates at word boundaries when output space runs out, and reports per
character offsets into the produced cells. A per-table cache remembers the
last full translation so unchanged screen content never reaches the rule
engine twice.

Rule files are parsed by package tabledir and compiled through the streaming
reader interfaces of this package. Table replacement on configuration reload
goes through Registry, which swaps the shared table reference atomically
under a lock.
*/
package contract

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'contract'
func tracer() tracing.Trace {
	return tracing.Select("contract")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
