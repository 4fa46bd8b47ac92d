package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table writes rows as left-aligned columns measured in terminal cells, so
// headlines with wide characters stay aligned. Cells wider than maxWidth
// are cut with an ellipsis.
type table struct {
	header   []string
	rows     [][]string
	maxWidth int
}

func newTable(header ...string) *table {
	return &table{header: header, maxWidth: 60}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) error {
	widths := make([]int, len(t.header))
	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		return runewidth.Truncate(strings.Join(strings.Fields(row[i]), " "), t.maxWidth, "…")
	}
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i := range widths {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(row, i)))
		}
	}

	for _, row := range append([][]string{t.header}, t.rows...) {
		var b strings.Builder
		for i := range widths {
			c := cell(row, i)
			if i == len(widths)-1 {
				b.WriteString(c)
			} else {
				b.WriteString(runewidth.FillRight(c, widths[i]))
				b.WriteString("  ")
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
