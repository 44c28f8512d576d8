package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Project Name", "project_name"},
		{"  Developer  ", "developer"},
		{"Price per sqft (Enriched)", "price_per_sqft_enriched"},
		{"Nearby Developments", "nearby_developments"},
		{"KEY AMENITIES", "key_amenities"},
		{"RERA ID#", "rera_id"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeHeader(tc.in), "header %q", tc.in)
	}
}

func TestPlanHeadersMapsKnownFields(t *testing.T) {
	plan := planHeaders([]string{
		"Project Name", "Developer", "Location", "Region",
		"Project Type", "Project Status", "Price per sqft (Enriched)",
		"Nearby Developments", "Key Amenities", "RERA ID",
	})

	rec := plan.record([]string{
		"Sobha Dream Acres", "Sobha", "Panathur", "East Bangalore",
		"Apartment", "Ready", "₹8,500", "Marathahalli ORR", "Pool, Gym",
		"PRM/KA/123",
	})

	assert.Equal(t, "Sobha Dream Acres", rec.ProjectName)
	assert.Equal(t, "Sobha", rec.Developer)
	assert.Equal(t, "Panathur", rec.Location)
	assert.Equal(t, "East Bangalore", rec.Region)
	assert.Equal(t, "Apartment", rec.ProjectType)
	assert.Equal(t, "Ready", rec.ProjectStatus)
	assert.Equal(t, "₹8,500", rec.PricePerSqft)
	assert.Equal(t, "Marathahalli ORR", rec.NearbyDevelopments)
	assert.Equal(t, "Pool, Gym", rec.KeyAmenities)
	assert.Equal(t, map[string]string{"RERA ID": "PRM/KA/123"}, rec.Extra)
}

func TestPlanHeadersEnrichedPriceWins(t *testing.T) {
	// When a sheet carries both the raw and the enriched price column, the
	// enriched one feeds the record and the raw one passes through.
	plan := planHeaders([]string{"Project Name", "Price per sqft", "Price per sqft (Enriched)"})

	rec := plan.record([]string{"Brigade Utopia", "7000", "7450"})

	assert.Equal(t, "7450", rec.PricePerSqft)
	assert.Equal(t, map[string]string{"Price per sqft": "7000"}, rec.Extra)
}

func TestPlanHeadersShortRow(t *testing.T) {
	plan := planHeaders([]string{"Project Name", "Developer", "Location"})

	rec := plan.record([]string{"Prestige Lakeside"})

	assert.Equal(t, "Prestige Lakeside", rec.ProjectName)
	assert.Equal(t, "", rec.Developer)
	assert.Equal(t, "", rec.Location)
	assert.Nil(t, rec.Extra)
}
