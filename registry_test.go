package contract

import (
	"sync"
	"testing"
)

func TestRegistryGetAndReplace(t *testing.T) {
	first := compileTestTable(t)
	reg := NewRegistry(first)
	if reg.Get() != first {
		t.Fatal("registry must hand out the installed table")
	}
	second := compileTestTable(t, ruleSpec{"the", []Cell{theCell}, OpAlways})
	old := reg.Replace(second)
	if old != first {
		t.Fatal("Replace must return the displaced table")
	}
	if reg.Get() != second {
		t.Fatal("registry must hand out the replacement")
	}
}

func TestRegistryReplaceDuringTranslation(t *testing.T) {
	reg := NewRegistry(compileTestTable(t, ruleSpec{"the", []Cell{theCell}, OpAlways}))
	input := []rune("the weather of the day")
	replacements := make([]*Table, 100)
	for i := range replacements {
		replacements[i] = compileTestTable(t, ruleSpec{"the", []Cell{theCell}, OpAlways})
	}
	var displaced []*Table
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, next := range replacements {
			displaced = append(displaced, reg.Replace(next))
		}
	}()
	go func() {
		defer wg.Done()
		out := make([]Cell, 32)
		for i := 0; i < 100; i++ {
			table := reg.Get()
			consumed, _ := ContractText(table, input, out, nil, NoCursor)
			if consumed != len(input) {
				t.Errorf("translation under replacement consumed %d of %d", consumed, len(input))
				return
			}
		}
	}()
	wg.Wait()
	// Old tables are destroyed only after no call can still hold them.
	for _, old := range displaced {
		old.Close()
	}
}
