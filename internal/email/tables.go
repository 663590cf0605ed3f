package email

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

// TableOptions carries locale formatting hints for numeric cells. They vary
// by vendor and must be supplied, not guessed.
type TableOptions struct {
	// ThousandsSep is the grouping separator used by the vendor, e.g. "."
	// for Indonesian amounts ("1.234.567").
	ThousandsSep string
	// DecimalSep is the fraction separator, e.g. ",".
	DecimalSep string
}

// Table is one HTML <table> element as row/column data. Cells are kept as
// strings; thousands-separator conventions differ enough across vendors
// that automatic numeric coercion would be unsafe, so extractors own the
// final parse (see Number).
type Table struct {
	Rows [][]string

	opts TableOptions
}

// tableData is the cached structural parse, shared across Tables calls.
type tableData struct {
	rows [][]string
}

// Tables parses the HTML body's <table> elements into structured rows. The
// structural parse happens once and is cached; the options are attached to
// the returned views at call time. Returns ErrEmptyBody via HTML when the
// message has no body.
func (c *Content) Tables(opts TableOptions) ([]Table, error) {
	c.tablesOnce.Do(func() {
		body, err := c.HTML()
		if err != nil {
			c.tablesErr = err
			return
		}
		c.tables, c.tablesErr = parseTables(body)
	})
	if c.tablesErr != nil {
		return nil, c.tablesErr
	}

	out := make([]Table, len(c.tables))
	for i, td := range c.tables {
		out[i] = Table{Rows: td.rows, opts: opts}
	}
	return out, nil
}

// Cell returns the trimmed cell text at (row, col), or "" when out of
// range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Number parses the cell at (row, col) as an exact decimal using the
// table's separator hints. Currency symbols and spaces are not handled
// here; strip them before the table stage or use extract's money helpers.
func (t Table) Number(row, col int) (decimal.Decimal, error) {
	cell := t.Cell(row, col)
	if cell == "" {
		return decimal.Decimal{}, fmt.Errorf("email: empty cell at (%d,%d)", row, col)
	}
	s := cell
	if t.opts.ThousandsSep != "" {
		s = strings.ReplaceAll(s, t.opts.ThousandsSep, "")
	}
	if t.opts.DecimalSep != "" && t.opts.DecimalSep != "." {
		s = strings.ReplaceAll(s, t.opts.DecimalSep, ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("email: cell %q at (%d,%d) is not numeric: %w", cell, row, col, err)
	}
	return d, nil
}

func parseTables(body string) ([]tableData, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parseTables: %w", err)
	}

	var tables []tableData
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, tableData{rows: parseRows(n)})
			// Nested tables are flattened into the parent's cell text.
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(root)
	return tables, nil
}

func parseRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, parseCells(n))
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(table)
	return rows
}

func parseCells(tr *html.Node) []string {
	var cells []string
	for ch := tr.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && (ch.Data == "td" || ch.Data == "th") {
			cells = append(cells, strings.TrimSpace(nodeText(ch)))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.WriteString(nodeText(ch))
	}
	return b.String()
}
