package dataset

import (
	"strings"

	"github.com/proptalk/proptalk/internal/model"
)

// Source spreadsheets name the same column in more than one way, so each
// scored field carries an ordered alias list. Earlier aliases win when two
// columns resolve to the same field; that is what routes the enriched price
// column ahead of a raw one when a sheet has both.
var fieldAliases = []struct {
	field   string
	aliases []string
}{
	{"project_name", []string{"project_name", "project_title", "project", "name"}},
	{"developer", []string{"developer", "developer_name", "builder"}},
	{"location", []string{"location", "locality", "area"}},
	{"region", []string{"region", "zone", "micro_market"}},
	{"project_type", []string{"project_type", "property_type", "type"}},
	{"project_status", []string{"project_status", "construction_status", "status"}},
	{"price_per_sqft", []string{"price_per_sqft_enriched", "price_per_sqft", "price_per_sq_ft", "price_sqft"}},
	{"nearby_developments", []string{"nearby_developments", "nearby_projects", "nearby"}},
	{"key_amenities", []string{"key_amenities", "amenities"}},
}

// normalizeHeader lowers a header and squeezes every non-alphanumeric run
// into a single underscore: "Price per sqft (Enriched)" becomes
// "price_per_sqft_enriched".
func normalizeHeader(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pending = false
			continue
		}
		pending = true
	}
	return b.String()
}

func resolveField(normalized string) (field string, rank int, ok bool) {
	for _, group := range fieldAliases {
		for i, alias := range group.aliases {
			if normalized == alias {
				return group.field, i, true
			}
		}
	}
	return "", 0, false
}

// headerPlan maps row cells onto PropertyRecord fields. Columns that do not
// resolve to a known field pass through into Extra under their trimmed
// original name.
type headerPlan struct {
	names  []string // trimmed original header per column
	fields []string // canonical field per column, "" for passthrough
}

func planHeaders(raw []string) headerPlan {
	plan := headerPlan{
		names:  make([]string, len(raw)),
		fields: make([]string, len(raw)),
	}

	type winner struct{ col, rank int }
	best := make(map[string]winner)

	for i, h := range raw {
		trimmed := strings.TrimSpace(h)
		plan.names[i] = trimmed

		field, rank, ok := resolveField(normalizeHeader(trimmed))
		if !ok {
			continue
		}
		if prev, taken := best[field]; taken {
			if rank >= prev.rank {
				continue
			}
			plan.fields[prev.col] = ""
		}
		best[field] = winner{col: i, rank: rank}
		plan.fields[i] = field
	}

	return plan
}

func (p headerPlan) record(cells []string) model.PropertyRecord {
	var rec model.PropertyRecord
	for i, name := range p.names {
		value := ""
		if i < len(cells) {
			value = strings.TrimSpace(cells[i])
		}

		if field := p.fields[i]; field != "" {
			setField(&rec, field, value)
			continue
		}
		if name == "" || value == "" {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[name] = value
	}
	return rec
}

func setField(rec *model.PropertyRecord, field, value string) {
	switch field {
	case "project_name":
		rec.ProjectName = value
	case "developer":
		rec.Developer = value
	case "location":
		rec.Location = value
	case "region":
		rec.Region = value
	case "project_type":
		rec.ProjectType = value
	case "project_status":
		rec.ProjectStatus = value
	case "price_per_sqft":
		rec.PricePerSqft = value
	case "nearby_developments":
		rec.NearbyDevelopments = value
	case "key_amenities":
		rec.KeyAmenities = value
	}
}
