package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danielolaszy/redmine/pkg/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// printer renders command results in the format selected by --output.
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(cmd *cobra.Command) (*printer, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	format = strings.ToLower(format)
	if format != outputTable && format != outputJSON {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return &printer{w: cmd.OutOrStdout(), format: format}, nil
}

// list prints records as a table, or as a JSON array.
func list[T any](p *printer, items []T, header table.Row, row func(T) table.Row) error {
	if p.format == outputJSON {
		return p.json(items)
	}
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(lo.Map(items, func(item T, _ int) table.Row { return row(item) }))
	t.AppendFooter(table.Row{fmt.Sprintf("%d total", len(items))})
	t.Render()
	return nil
}

// detail prints one record as a two-column table, or as JSON.
func detail(p *printer, v any, fields [][2]string) error {
	if p.format == outputJSON {
		return p.json(v)
	}
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleLight)
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		t.AppendRow(table.Row{field[0], field[1]})
	}
	t.Render()
	return nil
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func refName(r models.Ref) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID.String()
}

func refNames(refs []models.Ref) string {
	return strings.Join(lo.Map(refs, func(r models.Ref, _ int) string { return refName(r) }), ", ")
}
