package email

import (
	"errors"
	"testing"
)

const tableMsg = "From: receipts@store.example\r\nSubject: Receipt\r\n" +
	"Content-Type: text/html\r\n\r\n" +
	"<html><body><table>" +
	"<tr><th>Item</th><th>Price</th></tr>" +
	"<tr><td>Voucher</td><td>1.234.567</td></tr>" +
	"<tr><td>Admin</td><td>2.500,50</td></tr>" +
	"</table></body></html>\r\n"

func TestTables(t *testing.T) {
	c := New([]byte(tableMsg))

	tables, err := c.Tables(TableOptions{ThousandsSep: ".", DecimalSep: ","})
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("Tables() returned %d tables, want 1", len(tables))
	}

	tbl := tables[0]
	if got := tbl.Cell(1, 0); got != "Voucher" {
		t.Errorf("Cell(1,0) = %q, want Voucher", got)
	}

	// Cells stay strings; coercion only happens through Number.
	if got := tbl.Cell(1, 1); got != "1.234.567" {
		t.Errorf("Cell(1,1) = %q, want the raw string", got)
	}

	n, err := tbl.Number(1, 1)
	if err != nil {
		t.Fatalf("Number(1,1) error = %v", err)
	}
	if n.String() != "1234567" {
		t.Errorf("Number(1,1) = %s, want exactly 1234567", n)
	}

	n, err = tbl.Number(2, 1)
	if err != nil {
		t.Fatalf("Number(2,1) error = %v", err)
	}
	if n.String() != "2500.5" {
		t.Errorf("Number(2,1) = %s, want 2500.5", n)
	}
}

func TestTables_EmptyBody(t *testing.T) {
	c := New([]byte("From: a@b.co\r\nSubject: s\r\n\r\n"))

	_, err := c.Tables(TableOptions{})
	if !errors.Is(err, ErrEmptyBody) {
		t.Errorf("Tables() error = %v, want ErrEmptyBody", err)
	}
}

func TestTables_NumberOutOfRange(t *testing.T) {
	c := New([]byte(tableMsg))

	tables, err := c.Tables(TableOptions{ThousandsSep: "."})
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}

	if _, err := tables[0].Number(9, 9); err == nil {
		t.Error("Number(9,9) expected error for out-of-range cell")
	}
}
