package contract

import (
	"fmt"
	"io"

	"github.com/braillekit/contract/cellmap"
)

// RuleReader yields compiled contraction rules one-by-one.
// It should return io.EOF when the stream is exhausted.
type RuleReader interface {
	Next() (input []rune, cells []Cell, opcode Opcode, err error)
}

// Table is a compiled contraction table. It owns exactly one translation
// method (the internal rule engine, or a delegate to an external engine),
// its lazily built classification table and its translation cache.
//
// A Table is compiled once and never mutated afterwards except through
// ContractText, which is single-threaded by contract with the display
// driver. Reloading replaces the table wholesale through a Registry.
type Table struct {
	Identifier string

	// Prefs is the preference snapshot translations run under. The
	// configuration collaborator sets it between calls, never during one.
	Prefs Prefs

	// CapSign and NumSign are marker cells emitted before capitals and
	// digit runs. Empty slices disable the markers.
	CapSign []Cell
	NumSign []Cell

	cells  *cellmap.Table
	chars  charTable
	method method
	cache  cache

	engine Engine // non-nil for external tables; closed by Close

	methodCalls int // genuine translation-method invocations
}

// CompileTable compiles contraction rules from a streaming, format-agnostic
// source into an internal-engine table backed by the given text table.
//
// File format parsing is intentionally outside the base package. Use
// adapters like package tabledir to parse concrete formats and feed this
// API.
func CompileTable(name string, cells *cellmap.Table, reader RuleReader) (*Table, error) {
	if cells == nil {
		cells = cellmap.NewBuilder().Freeze()
	}
	eng := newRuleEngine(cells)
	for {
		input, ruleCells, opcode, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := eng.add(input, ruleCells, opcode); err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
	}
	eng.seal()
	t := &Table{
		Identifier: fmt.Sprintf("table: %s", name),
		cells:      cells,
		method:     eng,
	}
	stats := cells.Stats()
	tracer().Infof("compiled table %s: %d rules, %d cells in %d rows, %d aliases",
		name, eng.count, stats.Defined, stats.Rows, stats.Aliases)
	return t, nil
}

// NewExternalTable builds a table that delegates contraction to an external
// engine with the given table-list string. The text table still serves the
// fallback path when the engine reports failure.
func NewExternalTable(name string, engine Engine, tableList string, cells *cellmap.Table, mode Mode) *Table {
	if cells == nil {
		cells = cellmap.NewBuilder().Freeze()
	}
	return &Table{
		Identifier: fmt.Sprintf("table: %s (external %s)", name, tableList),
		cells:      cells,
		method:     &engineDelegate{engine: engine, tableList: tableList, mode: mode},
		engine:     engine,
	}
}

// TextTable returns the text table serving uncontracted characters.
func (t *Table) TextTable() *cellmap.Table { return t.cells }

// Close releases the table's external engine handle, if it holds one and
// the handle is closable. Call it only after no in-flight translation can
// still be using the table (see Registry).
func (t *Table) Close() error {
	t.cache.invalidate()
	if closer, ok := t.engine.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
