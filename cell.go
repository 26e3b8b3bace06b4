package contract

import "github.com/braillekit/contract/cellmap"

// Cell is one braille character position: an up-to-8-bit dot-raise mask.
type Cell = cellmap.Cell

// Dot masks re-exported for rule construction.
const (
	Dot1 = cellmap.Dot1
	Dot2 = cellmap.Dot2
	Dot3 = cellmap.Dot3
	Dot4 = cellmap.Dot4
	Dot5 = cellmap.Dot5
	Dot6 = cellmap.Dot6
	Dot7 = cellmap.Dot7
	Dot8 = cellmap.Dot8
)

// NoOffset marks an input character whose representation was merged into
// another character's cells: it produced no new cell of its own.
const NoOffset = -1

// NoCursor disables cursor tracking for a translation call.
const NoCursor = -1

// CapMode selects how capital letters are rendered by the internal engine.
type CapMode uint8

const (
	// CapNone folds capitals to their lowercase cells without a marker.
	CapNone CapMode = iota
	// CapSign prefixes capitalized letters with the table's capital sign.
	CapSign
)

// Prefs is the preference snapshot a translation is valid under. The cache
// compares it byte for byte; changing any field invalidates cached results.
type Prefs struct {
	// ExpandCurrentWord renders the word under the cursor uncontracted, so
	// that cursor routing stays character-exact while editing.
	ExpandCurrentWord bool
	Capitalization    CapMode
}
