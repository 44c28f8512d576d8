package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
)

// LoadCSV reads the inventory from a CSV export with a header row.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Exports are ragged often enough that strict field counting hurts.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return fromRows(rows, "csv:"+path), nil
}
