package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Values longer than maxWidth wrap;
// zero means unlimited.
type column struct {
	title    string
	align    text.Align
	maxWidth int
}

func col(title string) column { return column{title: title, align: text.AlignLeft} }

func (c column) right() column {
	c.align = text.AlignRight
	return c
}

func (c column) wrapAt(width int) column {
	c.maxWidth = width
	return c
}

// renderTable draws rows under columns with rounded borders. Short rows are
// padded with empty cells; extra cells are dropped.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       c.align,
			AlignHeader: text.AlignLeft,
			WidthMax:    c.maxWidth,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
