// Package mockclickhouserows serves a canned result set through the
// driver.Rows interface so repository scan loops can run without a
// live connection.
package mockclickhouserows

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type Rows struct {
	rows [][]any
	pos  int
	err  error
}

var _ driver.Rows = &Rows{}

// New builds a result set; each argument is one row of already-typed
// column values matching the Scan destinations.
func New(rows ...[]any) *Rows {
	return &Rows{rows: rows}
}

// WithErr makes Err report the given error after iteration.
func (r *Rows) WithErr(err error) *Rows {
	r.err = err
	return r
}

func (r *Rows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.rows) {
		return errors.New("scan called outside iteration")
	}
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan expects %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *Rows) ScanStruct(any) error { return nil }

func (r *Rows) ColumnTypes() []driver.ColumnType { return nil }

func (r *Rows) Totals(...any) error { return nil }

func (r *Rows) Columns() []string { return nil }

func (r *Rows) Close() error { return nil }

func (r *Rows) Err() error { return r.err }
