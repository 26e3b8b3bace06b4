package tabledir

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/braillekit/contract"
)

const litSource = `
# test table
char a 1
char b 12
char c 14
char U+0020 0
replace 12345678
capsign 6
numsign 3456
always abc 16
word ab 26
`

func loadTest(t *testing.T, source string) *contract.Table {
	t.Helper()
	table, err := Load("test", strings.NewReader(source))
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestLoadCompilesCharsAndRules(t *testing.T) {
	table := loadTest(t, litSource)
	cells := table.TextTable()
	if c, ok := cells.Cell('a'); !ok || c != contract.Dot1 {
		t.Fatalf("char a: %#x %v", c, ok)
	}
	if c, ok := cells.Cell('b'); !ok || c != contract.Dot1|contract.Dot2 {
		t.Fatalf("char b: %#x %v", c, ok)
	}
	if c, ok := cells.Cell(' '); !ok || c != 0 {
		t.Fatalf("U+0020 must be the blank cell: %#x %v", c, ok)
	}
	out := make([]contract.Cell, 8)
	consumed, produced := contract.ContractText(table, []rune("abc"), out, nil, contract.NoCursor)
	if consumed != 3 || produced != 1 || out[0] != contract.Dot1|contract.Dot6 {
		t.Fatalf("always rule not applied: %d/%d %v", consumed, produced, out[:produced])
	}
}

func TestSignsAttached(t *testing.T) {
	table := loadTest(t, litSource)
	if len(table.CapSign) != 1 || table.CapSign[0] != contract.Dot6 {
		t.Fatalf("capsign wrong: %v", table.CapSign)
	}
	want := contract.Dot3 | contract.Dot4 | contract.Dot5 | contract.Dot6
	if len(table.NumSign) != 1 || table.NumSign[0] != want {
		t.Fatalf("numsign wrong: %v", table.NumSign)
	}
}

func TestMultiCellRule(t *testing.T) {
	table := loadTest(t, "char x 1346\nalways xx 1-2\n")
	out := make([]contract.Cell, 8)
	consumed, produced := contract.ContractText(table, []rune("xx"), out, nil, contract.NoCursor)
	if consumed != 2 || produced != 2 {
		t.Fatalf("want 2/2, have %d/%d", consumed, produced)
	}
	if out[0] != contract.Dot1 || out[1] != contract.Dot2 {
		t.Fatalf("cells wrong: %v", out[:produced])
	}
}

func TestBlockDirective(t *testing.T) {
	table := loadTest(t, "block U+2800\n")
	cells := table.TextTable()
	if c, ok := cells.Cell('⠀'); !ok || c != 0 {
		t.Fatalf("U+2800 must be the blank cell: %#x %v", c, ok)
	}
	if c, ok := cells.Cell('⣿'); !ok || c != 0xFF {
		t.Fatalf("U+28FF must carry all dots: %#x %v", c, ok)
	}
	if _, ok := cells.Cell('⤀'); ok {
		t.Fatal("codepoint past the block must stay undefined")
	}
}

func TestBadDots(t *testing.T) {
	for _, source := range []string{
		"char a 9\n",
		"char a 11\n",
		"always ab 1-\n",
		"char a\n",
	} {
		if _, err := Load("bad", strings.NewReader(source)); err == nil {
			t.Fatalf("source %q must fail to parse", source)
		}
	}
}

func TestUnknownDirectiveRejected(t *testing.T) {
	if _, err := Load("bad", strings.NewReader("frobnicate a 1\n")); err == nil {
		t.Fatal("unknown directive must be a compile failure")
	}
}

func TestErrorCarriesLineNumber(t *testing.T) {
	_, err := Load("bad", strings.NewReader("char a 1\nchar b 9\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "bad:2") {
		t.Fatalf("error should name the line: %v", err)
	}
}

func TestInclude(t *testing.T) {
	fsys := fstest.MapFS{
		"tables/base.tbl": &fstest.MapFile{Data: []byte("char a 1\nchar b 12\n")},
		"tables/main.tbl": &fstest.MapFile{Data: []byte("include base.tbl\nalways ab 1234\n")},
	}
	table, err := LoadFile(fsys, "tables/main.tbl")
	if err != nil {
		t.Fatal(err)
	}
	out := make([]contract.Cell, 4)
	consumed, produced := contract.ContractText(table, []rune("ab"), out, nil, contract.NoCursor)
	if consumed != 2 || produced != 1 {
		t.Fatalf("included chars plus rule must compile together: %d/%d", consumed, produced)
	}
}

func TestIncludeCycleRejected(t *testing.T) {
	fsys := fstest.MapFS{
		"a.tbl": &fstest.MapFile{Data: []byte("include b.tbl\n")},
		"b.tbl": &fstest.MapFile{Data: []byte("include a.tbl\n")},
	}
	if _, err := LoadFile(fsys, "a.tbl"); err == nil {
		t.Fatal("include cycle must be rejected")
	}
}

func TestUsesRequiresEngine(t *testing.T) {
	if _, err := Load("ext", strings.NewReader("uses en-us-g2.ctb\n")); err == nil {
		t.Fatal("uses without an engine must fail")
	}
}

type nullEngine struct{}

func (nullEngine) Translate(req contract.EngineRequest) (contract.EngineResult, bool) {
	return contract.EngineResult{}, false
}

func TestUsesBuildsExternalTable(t *testing.T) {
	source := "char a 1\nuses en-us-g2.ctb,braille-patterns.cti\n"
	table, err := LoadWithEngine("ext", strings.NewReader(source), nullEngine{})
	if err != nil {
		t.Fatal(err)
	}
	// the engine always fails; the text table carries the fallback
	out := make([]contract.Cell, 4)
	consumed, produced := contract.ContractText(table, []rune("a"), out, nil, contract.NoCursor)
	if consumed != 1 || produced != 1 || out[0] != contract.Dot1 {
		t.Fatalf("fallback through text table failed: %d/%d %v", consumed, produced, out[:produced])
	}
}
