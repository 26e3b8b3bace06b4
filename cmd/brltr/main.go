// Command brltr compiles a braille table and translates text lines from
// stdin into Unicode braille patterns, one output line per input line.
// It exists for inspecting tables outside the daemon.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/braillekit/contract"
	"github.com/braillekit/contract/tabledir"
)

func main() {
	tablePath := pflag.StringP("table", "t", "", "table source file (required)")
	width := pflag.IntP("width", "w", 80, "output cells per line")
	cursor := pflag.IntP("cursor", "c", contract.NoCursor, "cursor position, -1 for none")
	expand := pflag.Bool("expand-word", false, "render the word under the cursor uncontracted")
	capsigns := pflag.Bool("capsigns", false, "emit capital signs instead of folding case")
	showOffsets := pflag.Bool("offsets", false, "print the per-character offset map")
	pflag.Parse()

	if *tablePath == "" {
		fmt.Fprintln(os.Stderr, "brltr: --table is required")
		os.Exit(2)
	}
	dir, base := filepath.Split(*tablePath)
	if dir == "" {
		dir = "."
	}
	table, err := tabledir.LoadFile(os.DirFS(dir), base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "brltr: %v\n", err)
		os.Exit(1)
	}
	table.Prefs = contract.Prefs{ExpandCurrentWord: *expand}
	if *capsigns {
		table.Prefs.Capitalization = contract.CapSign
	}

	out := make([]contract.Cell, *width)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		in := []rune(scanner.Text())
		offsets := make([]int, len(in))
		consumed, produced := contract.ContractText(table, in, out, offsets, *cursor)
		fmt.Println(dotsToString(out[:produced]))
		if *showOffsets {
			fmt.Printf("consumed=%d produced=%d offsets=%v\n", consumed, produced, offsets)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "brltr: %v\n", err)
		os.Exit(1)
	}
}

func dotsToString(cells []contract.Cell) string {
	var b strings.Builder
	b.Grow(len(cells) * 3)
	for _, c := range cells {
		b.WriteRune(0x2800 + rune(c))
	}
	return b.String()
}
