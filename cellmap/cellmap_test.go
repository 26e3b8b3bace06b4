package cellmap

import "testing"

func TestSetAndLookup(t *testing.T) {
	b := NewBuilder()
	if err := b.Set('a', Dot1); err != nil {
		t.Fatal(err)
	}
	if err := b.Set('b', Dot1|Dot2); err != nil {
		t.Fatal(err)
	}
	table := b.Freeze()
	if c, ok := table.Cell('a'); !ok || c != Dot1 {
		t.Fatalf("lookup 'a': %#x %v", c, ok)
	}
	if c, ok := table.Cell('b'); !ok || c != Dot1|Dot2 {
		t.Fatalf("lookup 'b': %#x %v", c, ok)
	}
	if _, ok := table.Cell('c'); ok {
		t.Fatal("'c' must be undefined")
	}
}

func TestBlankCellIsDefined(t *testing.T) {
	b := NewBuilder()
	b.Set(' ', 0)
	table := b.Freeze()
	c, ok := table.Cell(' ')
	if !ok {
		t.Fatal("dot pattern 0 is a legal assignment, not an absence")
	}
	if c != 0 {
		t.Fatalf("blank cell should be 0, have %#x", c)
	}
}

func TestLookupIsPure(t *testing.T) {
	b := NewBuilder()
	b.Set('x', Dot4)
	table := b.Freeze()
	for i := 0; i < 3; i++ {
		if c, ok := table.Cell('x'); !ok || c != Dot4 {
			t.Fatalf("repeated lookups must agree: %#x %v", c, ok)
		}
	}
}

func TestAlias(t *testing.T) {
	b := NewBuilder()
	b.Set('s', Dot2|Dot3|Dot4)
	b.SetAlias('ſ', 's') // long s displays as s
	table := b.Freeze()
	c, ok := table.Cell('ſ')
	if !ok || c != Dot2|Dot3|Dot4 {
		t.Fatalf("alias must resolve to the target's cell: %#x %v", c, ok)
	}
}

func TestAliasToUndefined(t *testing.T) {
	b := NewBuilder()
	b.SetAlias('x', 'y')
	table := b.Freeze()
	if _, ok := table.Cell('x'); ok {
		t.Fatal("alias to an undefined codepoint must be undefined")
	}
}

func TestAliasToSelfRejected(t *testing.T) {
	b := NewBuilder()
	if err := b.SetAlias('x', 'x'); err == nil {
		t.Fatal("self-alias must be rejected")
	}
}

func TestBaseCharacterFallback(t *testing.T) {
	b := NewBuilder()
	b.Set('e', Dot1|Dot5)
	b.SetReplacement(0xFF)
	table := b.Freeze()
	c, ok := table.CellWithFallback('é')
	if !ok || c != Dot1|Dot5 {
		t.Fatalf("é must fall back to the base character cell: %#x %v", c, ok)
	}
}

func TestFallbackDisabled(t *testing.T) {
	b := NewBuilder()
	b.Set('e', Dot1|Dot5)
	b.SetReplacement(0xFF)
	b.TryBaseCharacters(false)
	table := b.Freeze()
	c, ok := table.CellWithFallback('é')
	if ok {
		t.Fatal("fallback disabled: é must be undefined")
	}
	if c != 0xFF {
		t.Fatalf("want replacement cell, have %#x", c)
	}
}

func TestReplacementCell(t *testing.T) {
	b := NewBuilder()
	b.SetReplacement(Dot1 | Dot2 | Dot3 | Dot4 | Dot5 | Dot6)
	table := b.Freeze()
	c, ok := table.CellWithFallback('世')
	if ok {
		t.Fatal("undefined codepoint must not report success")
	}
	if c != Dot1|Dot2|Dot3|Dot4|Dot5|Dot6 {
		t.Fatalf("want replacement cell, have %#x", c)
	}
}

func TestReverseLookup(t *testing.T) {
	b := NewBuilder()
	b.Set('a', Dot1)
	b.Set('A', Dot1) // many-to-one: first definition (lowest codepoint) wins
	table := b.Freeze()
	r, ok := table.Character(Dot1)
	if !ok {
		t.Fatal("cell must reverse-map")
	}
	if r != 'A' {
		t.Fatalf("reverse lookup must be deterministic by codepoint order, have %q", r)
	}
	if _, ok := table.Character(Dot8); ok {
		t.Fatal("unassigned cell value must not reverse-map")
	}
}

func TestAliasNotInReverseTable(t *testing.T) {
	b := NewBuilder()
	b.Set('s', Dot2)
	b.SetAlias('ſ', 's')
	table := b.Freeze()
	r, ok := table.Character(Dot2)
	if !ok || r != 's' {
		t.Fatalf("reverse table must hold the direct assignment, have %q %v", r, ok)
	}
}

func TestHighPlaneCodepoints(t *testing.T) {
	b := NewBuilder()
	b.Set(0x1D41A, Dot1) // mathematical bold small a
	table := b.Freeze()
	if c, ok := table.Cell(0x1D41A); !ok || c != Dot1 {
		t.Fatalf("supplementary plane lookup failed: %#x %v", c, ok)
	}
	if _, ok := table.Cell(0x1D41B); ok {
		t.Fatal("neighbour codepoint must be undefined")
	}
}

func TestBuilderRejectsAfterFreeze(t *testing.T) {
	b := NewBuilder()
	b.Set('a', Dot1)
	b.Freeze()
	if err := b.Set('b', Dot2); err == nil {
		t.Fatal("assignments after freeze must be rejected")
	}
}

func TestStats(t *testing.T) {
	b := NewBuilder()
	b.Set('a', Dot1)
	b.Set('b', Dot2)
	b.SetAlias('c', 'a')
	table := b.Freeze()
	s := table.Stats()
	if s.Rows != 1 {
		t.Fatalf("want 1 populated row, have %d", s.Rows)
	}
	if s.Defined != 2 {
		t.Fatalf("want 2 direct assignments, have %d", s.Defined)
	}
	if s.Aliases != 1 {
		t.Fatalf("want 1 alias, have %d", s.Aliases)
	}
	if s.HasReplacement {
		t.Fatal("no replacement cell was configured")
	}
	b = NewBuilder()
	b.SetReplacement(Dot7 | Dot8)
	if !b.Freeze().Stats().HasReplacement {
		t.Fatal("replacement cell not reported")
	}
}
