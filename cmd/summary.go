package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type summaryRow struct {
	Label string
	Value any
}

func printSummary(w io.Writer, title string, rows []summaryRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	for _, r := range rows {
		t.AppendRow(table.Row{r.Label, r.Value})
	}
	t.Render()
}
