package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amply-impact/amply/internal/ux"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// render writes data in the --output format. Text output uses view when
// given, so lists become tables and records become aligned fields.
func render(cmd *cobra.Command, data any, view any) error {
	format := strings.ToLower(outputFormat)
	f, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	if (format == "text" || format == "") && view != nil {
		return f.Format(view)
	}
	return f.Format(data)
}

// say prints a status line in text mode only, so json and yaml output
// stay machine readable.
func say(cmd *cobra.Command, format string, args ...any) {
	if f := strings.ToLower(outputFormat); f != "text" && f != "" {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

// record renders label/value pairs as an aligned block.
type record [][2]string

func (r record) String() string {
	width := 0
	for _, kv := range r {
		width = max(width, len(kv[0]))
	}
	var b strings.Builder
	for i, kv := range r {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-*s  %s", width+1, kv[0]+":", kv[1])
	}
	return b.String()
}

// table adapts prepared headers and rows to ux.Tabular.
type table struct {
	headers []string
	rows    [][]string
}

func (t table) Table() ([]string, [][]string) { return t.headers, t.rows }

func pageFooter[T any](p *types.Page[T]) string {
	if p.PageSize == 0 {
		return fmt.Sprintf("%d total", p.Total)
	}
	s := fmt.Sprintf("page %d, %d of %d", max(p.Page, 1), len(p.Items), p.Total)
	if p.HasMore {
		s += fmt.Sprintf(" (next: --page %d)", max(p.Page, 1)+1)
	}
	return s
}

// renderList prints a page: a table plus the paging line in text mode,
// the whole page in json and yaml.
func renderList[T any](cmd *cobra.Command, p *types.Page[T], headers []string, row func(T) []string) error {
	t := table{headers: headers, rows: make([][]string, 0, len(p.Items))}
	for _, item := range p.Items {
		t.rows = append(t.rows, row(item))
	}
	if err := render(cmd, p, t); err != nil {
		return err
	}
	if len(t.rows) > 0 {
		say(cmd, "%s", pageFooter(p))
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// shortDate trims an RFC 3339 timestamp to its date.
func shortDate(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return orDash(s)
}
