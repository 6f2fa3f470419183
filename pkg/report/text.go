package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

func renderText(w io.Writer, doc Document) error {
	title := color.New(color.Bold)

	_, err := title.Fprintf(w, "=== %s ===\n", doc.Command)
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Source", "Records", "Read 1 bp", "Read 2 bp"})

	var totalBP [2]int64

	for _, src := range doc.Summary.Sources() {
		bp := doc.Summary.BPCounts[src]
		totalBP[0] += bp[0]
		totalBP[1] += bp[1]

		tbl.AppendRow(table.Row{
			string(src),
			humanize.Comma(doc.Summary.RecordCounts[src]),
			humanize.Comma(bp[0]),
			humanize.Comma(bp[1]),
		})
	}

	tbl.AppendFooter(table.Row{
		"Total",
		humanize.Comma(doc.Summary.TotalRecords()),
		humanize.Comma(totalBP[0]),
		humanize.Comma(totalBP[1]),
	})
	tbl.Render()

	if len(doc.Details) == 0 {
		return nil
	}

	keys := make([]string, 0, len(doc.Details))
	for k := range doc.Details {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		_, err = fmt.Fprintf(w, "%s: %v\n", k, doc.Details[k])
		if err != nil {
			return fmt.Errorf("render details: %w", err)
		}
	}

	return nil
}
