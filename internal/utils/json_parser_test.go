package utils

import (
	"strings"
	"testing"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"keywords": ["sobha", "whitefield"], "max_price": 8000}`,
			want: map[string]interface{}{
				"keywords":  []interface{}{"sobha", "whitefield"},
				"max_price": float64(8000),
			},
			wantErr: false,
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"action": "NEW", "suggested_funnel_name": "Sobha Search"}` + "\n```",
			want: map[string]interface{}{
				"action":                "NEW",
				"suggested_funnel_name": "Sobha Search",
			},
			wantErr: false,
		},
		{
			name: "JSON in untagged code block",
			input: "```\n" +
				`{"action": "UPDATE"}` + "\n```",
			want: map[string]interface{}{
				"action": "UPDATE",
			},
			wantErr: false,
		},
		{
			name:  "JSON with surrounding text",
			input: `Here is the extraction: {"keywords": ["prestige"]} as requested.`,
			want: map[string]interface{}{
				"keywords": []interface{}{"prestige"},
			},
			wantErr: false,
		},
		{
			name:  "JSON with trailing comma",
			input: `{"keywords": ["brigade"], "min_price": 4500,}`,
			want: map[string]interface{}{
				"keywords":  []interface{}{"brigade"},
				"min_price": float64(4500),
			},
			wantErr: false,
		},
		{
			name:  "JSON with unquoted keys",
			input: `{action: "UPDATE", suggested_funnel_name: "Budget Homes"}`,
			want: map[string]interface{}{
				"action":                "UPDATE",
				"suggested_funnel_name": "Budget Homes",
			},
			wantErr: false,
		},
		{
			name:    "Empty string",
			input:   "",
			want:    nil,
			wantErr: true,
		},
		{
			name:    "No JSON at all",
			input:   "I could not find any criteria in that message.",
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAIJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseAIJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParseAIJSON() got = %v, want %v", got, tt.want)
				}
				for key := range tt.want {
					if _, ok := got[key]; !ok {
						t.Errorf("ParseAIJSON() missing key %q in %v", key, got)
					}
				}
			}
		})
	}
}

func TestParseAIJSONIntoSlice(t *testing.T) {
	var got []string
	err := ParseAIJSON("```json\n[\"kiadb\", \"devanahalli\"]\n```", &got)
	if err != nil {
		t.Fatalf("ParseAIJSON() error = %v", err)
	}
	if len(got) != 2 || got[0] != "kiadb" || got[1] != "devanahalli" {
		t.Errorf("ParseAIJSON() got = %v, want [kiadb devanahalli]", got)
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Code block with json tag",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "Code block without tag",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "Untagged block without JSON payload",
			input: "```\nplain text\n```",
			want:  "",
		},
		{
			name:  "No code block",
			input: `{"test": true}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFromMarkdown(tt.input)
			if got != tt.want {
				t.Errorf("extractFromMarkdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  rune
		close rune
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1}`,
			open:  '{',
			close: '}',
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"a": {"b": 2}}`,
			open:  '{',
			close: '}',
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "Braces inside string",
			input: `{"text": "Hello {world}"}`,
			open:  '{',
			close: '}',
			want:  `{"text": "Hello {world}"}`,
		},
		{
			name:  "Escaped quote inside string",
			input: `{"text": "say \"hi\""}`,
			open:  '{',
			close: '}',
			want:  `{"text": "say \"hi\""}`,
		},
		{
			name:  "Array",
			input: `[1, 2, 3]`,
			open:  '[',
			close: ']',
			want:  `[1, 2, 3]`,
		},
		{
			name:  "Unterminated object",
			input: `{"a": 1`,
			open:  '{',
			close: '}',
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalanced(tt.input, tt.open, tt.close)
			if got != tt.want {
				t.Errorf("extractBalanced() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Trailing comma in object",
			input: `{"a": 1,}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "Trailing comma in array",
			input: `[1, 2,]`,
			want:  `[1, 2]`,
		},
		{
			name:  "Unquoted keys",
			input: `{action: "NEW", count: 3}`,
			want:  `{"action": "NEW", "count": 3}`,
		},
		{
			name:  "Control characters stripped",
			input: "{\"a\": \x01\"b\"}",
			want:  `{"a": "b"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repairJSON(tt.input)
			if got != tt.want {
				t.Errorf("repairJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrettyPrintJSON(t *testing.T) {
	out, err := PrettyPrintJSON(map[string]interface{}{"name": "Sobha Dream Acres"})
	if err != nil {
		t.Fatalf("PrettyPrintJSON() error = %v", err)
	}
	if !strings.Contains(out, "\"name\": \"Sobha Dream Acres\"") {
		t.Errorf("PrettyPrintJSON() = %v, want indented key/value", out)
	}
}
