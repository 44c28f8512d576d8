package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, ` Project Name ,Developer,Location,Price per sqft (Enriched),RERA ID
Sobha Dream Acres,Sobha,Panathur,"₹8,500",PRM/KA/1
Brigade Utopia,Brigade,Varthur,~7450,
`)

	table, err := LoadCSV(path)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"Project Name", "Developer", "Location", "Price per sqft (Enriched)", "RERA ID"}, table.Columns())

	first := table.Records()[0]
	assert.Equal(t, "Sobha Dream Acres", first.ProjectName)
	assert.Equal(t, "₹8,500", first.PricePerSqft)
	assert.Equal(t, map[string]string{"RERA ID": "PRM/KA/1"}, first.Extra)

	second := table.Records()[1]
	assert.Equal(t, "Brigade Utopia", second.ProjectName)
	assert.Equal(t, "~7450", second.PricePerSqft)
	assert.Nil(t, second.Extra)
}

func TestLoadCSVSkipsBlankLines(t *testing.T) {
	path := writeTempCSV(t, `Project Name,Developer
Sobha Indraprastha,Sobha
,
Godrej Park Retreat,Godrej
`)

	table, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Godrej Park Retreat", table.Records()[1].ProjectName)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"Project Name", "Developer", "Location", "Region", "Price per sqft (Enriched)",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"Sobha Dream Acres", "Sobha", "Panathur", "East Bangalore", "8500",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{
		"Prestige Lakeside Habitat", "Prestige", "Varthur",
	}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := LoadXLSX(path)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	first := table.Records()[0]
	assert.Equal(t, "Sobha Dream Acres", first.ProjectName)
	assert.Equal(t, "East Bangalore", first.Region)
	assert.Equal(t, "8500", first.PricePerSqft)

	// Trailing cells excelize never wrote come back empty, not as errors.
	second := table.Records()[1]
	assert.Equal(t, "Prestige Lakeside Habitat", second.ProjectName)
	assert.Equal(t, "", second.Region)
}

func TestLoadXLSXMissingFile(t *testing.T) {
	_, err := LoadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestTablePage(t *testing.T) {
	path := writeTempCSV(t, `Project Name
P1
P2
P3
P4
`)
	table, err := LoadCSV(path)
	require.NoError(t, err)

	page := table.Page(2, 1)
	require.Len(t, page, 2)
	assert.Equal(t, "P2", page[0].ProjectName)
	assert.Equal(t, "P3", page[1].ProjectName)

	assert.Empty(t, table.Page(2, 10))
	assert.Len(t, table.Page(100, 0), 4)
	assert.Empty(t, table.Page(0, 0))
}
