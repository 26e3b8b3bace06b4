// Package tabledir parses braille table sources in a directive-per-line
// format and compiles them through the streaming interfaces of package
// contract.
//
// Recognized directives:
//
//	char <char> <dots>      assign a dot pattern to a codepoint
//	block <char>            assign cell values 0..255 to a 256-codepoint
//	                        block in order, starting at <char>
//	alias <char> <char>     display a codepoint as another codepoint's cell
//	replace <dots>          cell for undefined codepoints
//	capsign <cells>         marker cells emitted before capitals
//	numsign <cells>         marker cells emitted before digit runs
//	literal <text>          render text uncontracted, no contraction follows
//	                        in the same word
//	always <text> <cells>   contract text wherever it matches
//	word <text> <cells>     contract text only as a complete word
//	begword <text> <cells>  contract text only at the start of a word
//	endword <text> <cells>  contract text only at the end of a word
//	include <path>          splice another table source
//	uses <tableList>        delegate contraction to an external engine
//
// A <char> is a single character or a U+XXXX codepoint. <dots> is a digit
// run such as 123 naming raised dots 1..8, or 0 for the blank cell; <cells>
// is one or more <dots> groups joined by '-'. Lines starting with '#' are
// comments.
package tabledir

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"

	"github.com/braillekit/contract"
	"github.com/braillekit/contract/cellmap"
)

// tracer writes to trace with key 'contract.tabledir'
func tracer() tracing.Trace {
	return tracing.Select("contract.tabledir")
}

const maxIncludeDepth = 8

var ruleOpcodes = map[string]contract.Opcode{
	"literal": contract.OpLiteral,
	"always":  contract.OpAlways,
	"word":    contract.OpWholeWord,
	"begword": contract.OpBegWord,
	"endword": contract.OpEndWord,
}

type parsedRule struct {
	input  []rune
	cells  []contract.Cell
	opcode contract.Opcode
}

// source accumulates the directives of one table, includes flattened.
type source struct {
	cells     *cellmap.Builder
	capSign   []contract.Cell
	numSign   []contract.Cell
	rules     []parsedRule
	tableList string
}

// Load parses a single table source and compiles it into an internal-engine
// table. Sources using include or uses need LoadFile or LoadWithEngine.
func Load(name string, reader io.Reader) (*contract.Table, error) {
	return load(name, reader, nil, nil, "")
}

// LoadWithEngine parses a table source that may delegate contraction to an
// external engine through the uses directive.
func LoadWithEngine(name string, reader io.Reader, engine contract.Engine) (*contract.Table, error) {
	return load(name, reader, nil, engine, "")
}

// LoadFile parses the table source at p inside fsys, following include
// directives relative to p's directory.
func LoadFile(fsys fs.FS, p string) (*contract.Table, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return load(p, f, fsys, nil, path.Dir(p))
}

func load(name string, reader io.Reader, fsys fs.FS, engine contract.Engine, dir string) (*contract.Table, error) {
	src := &source{cells: cellmap.NewBuilder()}
	if err := src.parse(name, reader, fsys, dir, 0); err != nil {
		return nil, err
	}
	if src.tableList != "" {
		if engine == nil {
			return nil, fmt.Errorf("%s: uses directive requires an external engine", name)
		}
		tracer().Infof("table %s delegates to external engine (%s)", name, src.tableList)
		return contract.NewExternalTable(name, engine, src.tableList, src.cells.Freeze(), 0), nil
	}
	table, err := contract.CompileTable(name, src.cells.Freeze(), &sliceRuleReader{rules: src.rules})
	if err != nil {
		return nil, err
	}
	table.CapSign = src.capSign
	table.NumSign = src.numSign
	return table, nil
}

func (src *source) parse(name string, reader io.Reader, fsys fs.FS, dir string, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("%s: includes nested deeper than %d", name, maxIncludeDepth)
	}
	scanner := bufio.NewScanner(reader)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := src.directive(line, fsys, dir, depth); err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineno, err)
		}
	}
	return scanner.Err()
}

func (src *source) directive(line string, fsys fs.FS, dir string, depth int) error {
	fields := strings.Fields(line)
	verb, args := fields[0], fields[1:]
	if opcode, ok := ruleOpcodes[verb]; ok {
		return src.rule(opcode, args)
	}
	switch verb {
	case "char":
		if len(args) != 2 {
			return fmt.Errorf("char wants <char> <dots>")
		}
		r, err := parseChar(args[0])
		if err != nil {
			return err
		}
		dots, err := parseDots(args[1])
		if err != nil {
			return err
		}
		return src.cells.Set(r, dots)
	case "alias":
		if len(args) != 2 {
			return fmt.Errorf("alias wants <char> <char>")
		}
		r, err := parseChar(args[0])
		if err != nil {
			return err
		}
		target, err := parseChar(args[1])
		if err != nil {
			return err
		}
		return src.cells.SetAlias(r, target)
	case "replace":
		if len(args) != 1 {
			return fmt.Errorf("replace wants <dots>")
		}
		dots, err := parseDots(args[0])
		if err != nil {
			return err
		}
		src.cells.SetReplacement(dots)
		return nil
	case "capsign", "numsign":
		if len(args) != 1 {
			return fmt.Errorf("%s wants <cells>", verb)
		}
		cells, err := parseCells(args[0])
		if err != nil {
			return err
		}
		if verb == "capsign" {
			src.capSign = cells
		} else {
			src.numSign = cells
		}
		return nil
	case "block":
		if len(args) != 1 {
			return fmt.Errorf("block wants <char>")
		}
		first, err := parseChar(args[0])
		if err != nil {
			return err
		}
		// map a 256-codepoint block onto cell values in order, as for the
		// Unicode braille patterns block at U+2800
		for i := 0; i < 256; i++ {
			if err := src.cells.Set(first+rune(i), contract.Cell(i)); err != nil {
				return err
			}
		}
		return nil
	case "include":
		if len(args) != 1 {
			return fmt.Errorf("include wants <path>")
		}
		if fsys == nil {
			return fmt.Errorf("include not available for this source")
		}
		p := path.Join(dir, args[0])
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		return src.parse(p, f, fsys, path.Dir(p), depth+1)
	case "uses":
		if len(args) != 1 {
			return fmt.Errorf("uses wants <tableList>")
		}
		src.tableList = args[0]
		return nil
	}
	return fmt.Errorf("unknown directive %q", verb)
}

func (src *source) rule(opcode contract.Opcode, args []string) error {
	if opcode == contract.OpLiteral {
		if len(args) != 1 {
			return fmt.Errorf("literal wants <text>")
		}
		src.rules = append(src.rules, parsedRule{input: []rune(args[0]), opcode: opcode})
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("%v wants <text> <cells>", opcode)
	}
	cells, err := parseCells(args[1])
	if err != nil {
		return err
	}
	src.rules = append(src.rules, parsedRule{input: []rune(args[0]), cells: cells, opcode: opcode})
	return nil
}

// sliceRuleReader feeds parsed rules to contract.CompileTable.
type sliceRuleReader struct {
	rules []parsedRule
	index int
}

func (r *sliceRuleReader) Next() ([]rune, []contract.Cell, contract.Opcode, error) {
	if r.index >= len(r.rules) {
		return nil, nil, 0, io.EOF
	}
	rule := r.rules[r.index]
	r.index++
	return rule.input, rule.cells, rule.opcode, nil
}

func parseChar(s string) (rune, error) {
	if strings.HasPrefix(s, "U+") || strings.HasPrefix(s, "u+") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("bad codepoint %q", s)
		}
		return rune(v), nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("want a single character, have %q", s)
	}
	return r, nil
}

func parseDots(s string) (contract.Cell, error) {
	if s == "0" {
		return 0, nil
	}
	if s == "" {
		return 0, fmt.Errorf("empty dot pattern")
	}
	var cell contract.Cell
	for _, d := range s {
		if d < '1' || d > '8' {
			return 0, fmt.Errorf("bad dot %q in %q", d, s)
		}
		bit := contract.Cell(1) << (d - '1')
		if cell&bit != 0 {
			return 0, fmt.Errorf("dot %c repeated in %q", d, s)
		}
		cell |= bit
	}
	return cell, nil
}

func parseCells(s string) ([]contract.Cell, error) {
	parts := strings.Split(s, "-")
	cells := make([]contract.Cell, 0, len(parts))
	for _, part := range parts {
		cell, err := parseDots(part)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}
