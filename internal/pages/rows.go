package pages

import (
	"iter"
	"strings"

	"golang.org/x/text/cases"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

// Row is one element yielded by Query. It carries a lazy locator for the
// element so callers can act on it without re-querying.
type Row struct {
	Index int
	Text  string
	Cells []string

	loc browser.Locator
}

// Locator returns the element behind the row.
func (r Row) Locator() browser.Locator { return r.loc }

// Cell returns the i-th cell text or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// RowPredicate filters rows. A nil predicate accepts every row.
type RowPredicate func(Row) bool

// Contains accepts rows whose text contains s.
func Contains(s string) RowPredicate {
	return func(r Row) bool { return strings.Contains(r.Text, s) }
}

// ContainsFold accepts rows whose text contains s under Unicode case folding.
func ContainsFold(s string) RowPredicate {
	fold := cases.Fold()
	want := fold.String(s)
	return func(r Row) bool { return strings.Contains(fold.String(r.Text), want) }
}

// Collect drains a row sequence, stopping at the first error.
func Collect(seq iter.Seq2[Row, error]) ([]Row, error) {
	var rows []Row
	for row, err := range seq {
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// First returns the first row of seq, or false when it is empty.
func First(seq iter.Seq2[Row, error]) (Row, bool, error) {
	for row, err := range seq {
		if err != nil {
			return Row{}, false, err
		}
		return row, true, nil
	}
	return Row{}, false, nil
}
