package model

import "strconv"

// CriteriaMap is the open form of search criteria as stored in a funnel and
// produced by the extractor: plain JSON-shaped keys and values. Keeping it a
// map preserves keys this codebase does not know about, so a criteria update
// can delete or overwrite them all the same.
type CriteriaMap map[string]interface{}

// Clone returns a copy of the map. Values are replaced wholesale on merge,
// never mutated in place, so a key-level copy is enough.
func (c CriteriaMap) Clone() CriteriaMap {
	if c == nil {
		return nil
	}
	out := make(CriteriaMap, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// MergeCriteria folds an update into the current criteria: a key present
// with a nil value deletes the stored entry, a non-nil value overwrites it,
// and keys absent from the update stay untouched. Returns a new map.
func MergeCriteria(current, update CriteriaMap) CriteriaMap {
	merged := make(CriteriaMap, len(current)+len(update))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range update {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// SearchCriteria is the typed view of the criteria keys the engine and the
// agents understand.
type SearchCriteria struct {
	Keywords       []string `json:"keywords,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty"`
	MinPrice       *float64 `json:"min_price,omitempty"`
	Bedrooms       *int     `json:"bedrooms,omitempty"`
	Developers     []string `json:"developers,omitempty"`
	ProjectType    *string  `json:"project_type,omitempty"`
	Possession     *string  `json:"possession,omitempty"`
	InvestmentGoal bool     `json:"investment_goal,omitempty"`
	Amenities      []string `json:"amenities,omitempty"`
}

// CriteriaFromMap converts stored criteria to the typed view. The extractor
// output is model-generated, so every coercion is tolerant: values of an
// unexpected shape are ignored rather than turned into errors.
func CriteriaFromMap(m CriteriaMap) SearchCriteria {
	var c SearchCriteria
	if m == nil {
		return c
	}

	c.Keywords = toStringSlice(m["keywords"])
	c.MaxPrice = toFloat(m["max_price"])
	c.MinPrice = toFloat(m["min_price"])
	c.Bedrooms = toInt(m["bedrooms"])
	c.Developers = toStringSlice(m["developers"])
	c.ProjectType = toString(m["project_type"])
	c.Possession = toString(m["possession"])
	c.Amenities = toStringSlice(m["amenities"])
	if b, ok := m["investment_goal"].(bool); ok {
		c.InvestmentGoal = b
	}

	return c
}

func toFloat(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return &f
		}
	}
	return nil
}

func toInt(v interface{}) *int {
	if f := toFloat(v); f != nil {
		i := int(*f)
		return &i
	}
	return nil
}

func toString(v interface{}) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}

func toStringSlice(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if vals == "" {
			return nil
		}
		return []string{vals}
	}
	return nil
}
