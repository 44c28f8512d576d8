package dataset

import (
	"strings"

	"github.com/proptalk/proptalk/internal/model"
)

// Table is the in-memory property inventory. It is loaded once at startup
// and never mutated afterwards, which makes it safe to share across
// goroutines without locking.
type Table struct {
	records []model.PropertyRecord
	columns []string
	source  string
}

func newTable(records []model.PropertyRecord, headers []string, source string) *Table {
	columns := make([]string, 0, len(headers))
	for _, name := range headers {
		if name != "" {
			columns = append(columns, name)
		}
	}
	return &Table{records: records, columns: columns, source: source}
}

// Records returns the backing record slice in dataset order. Callers must
// treat it as read-only.
func (t *Table) Records() []model.PropertyRecord {
	return t.records
}

// Columns returns the trimmed source column names.
func (t *Table) Columns() []string {
	return t.columns
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Source describes where the table was loaded from, for logs and tooling.
func (t *Table) Source() string {
	return t.source
}

// Page returns one page of records in dataset order.
func (t *Table) Page(limit, offset int) []model.PropertyRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(t.records) || limit <= 0 {
		return []model.PropertyRecord{}
	}
	end := offset + limit
	if end > len(t.records) {
		end = len(t.records)
	}
	return t.records[offset:end]
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func fromRows(rows [][]string, source string) *Table {
	if len(rows) == 0 {
		return newTable(nil, nil, source)
	}

	plan := planHeaders(rows[0])
	records := make([]model.PropertyRecord, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if emptyRow(cells) {
			continue
		}
		records = append(records, plan.record(cells))
	}
	return newTable(records, plan.names, source)
}
