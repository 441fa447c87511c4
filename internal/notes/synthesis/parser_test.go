package synthesis

import "testing"

func TestParse_AcceptsCanonicalObject(t *testing.T) {
	res := Parse(map[string]any{"chief_complaint": "dolor lumbar"})
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Err)
	}
	if res.Source != "object" {
		t.Fatalf("expected source object, got %q", res.Source)
	}
	if res.Data["chief_complaint"] != "dolor lumbar" {
		t.Fatalf("payload lost: %+v", res.Data)
	}
}

func TestParse_Envelopes(t *testing.T) {
	payload := `{"chief_complaint": "neck pain"}`
	cases := []struct {
		name   string
		raw    any
		source string
	}{
		{"raw_string", payload, "string"},
		{"text_field", map[string]any{"text": payload}, "text"},
		{"result_field", map[string]any{"result": payload}, "result"},
		{"data_string", map[string]any{"data": payload}, "data"},
		{"data_object", map[string]any{"data": map[string]any{"chief_complaint": "neck pain"}}, "data"},
		{
			"provider_candidates",
			map[string]any{
				"candidates": []any{
					map[string]any{
						"content": map[string]any{
							"parts": []any{map[string]any{"text": payload}},
						},
					},
				},
			},
			"candidates",
		},
	}
	for _, tc := range cases {
		res := Parse(tc.raw)
		if !res.Success {
			t.Fatalf("%s: expected success, got %s", tc.name, res.Err)
		}
		if res.Source != tc.source {
			t.Fatalf("%s: expected source %q, got %q", tc.name, tc.source, res.Source)
		}
		if res.Data["chief_complaint"] != "neck pain" {
			t.Fatalf("%s: payload lost: %+v", tc.name, res.Data)
		}
	}
}

func TestParse_StripsCodeFence(t *testing.T) {
	res := Parse("```json\n{\"chief_complaint\": \"knee pain\"}\n```")
	if !res.Success {
		t.Fatalf("expected success, got %s", res.Err)
	}
	if res.Data["chief_complaint"] != "knee pain" {
		t.Fatalf("payload lost: %+v", res.Data)
	}
}

func TestParse_RepairsKnownDefects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing_comma_after_number", "{\"pain_scale\": 7\n\"chief_complaint\": \"dolor\"}"},
		{"missing_comma_after_closing_bracket", "{\"red_flags\": []\n\"chief_complaint\": \"dolor\"}"},
		{"missing_comma_after_closing_brace", "{\"context\": {\"job\": \"driver\"}\n\"chief_complaint\": \"dolor\"}"},
		{"missing_comma_after_boolean", "{\"red_flags_assessed\": true\n\"chief_complaint\": \"dolor\"}"},
		{"missing_comma_after_string", `{"chief_complaint": "dolor" "medications": ["ibuprofeno"]}`},
	}
	for _, tc := range cases {
		res := Parse(tc.raw)
		if !res.Success {
			t.Fatalf("%s: expected repaired parse, got %s", tc.name, res.Err)
		}
		if res.Source != "string+repair" {
			t.Fatalf("%s: expected source string+repair, got %q", tc.name, res.Source)
		}
		if res.Data["chief_complaint"] != "dolor" {
			t.Fatalf("%s: payload lost after repair: %+v", tc.name, res.Data)
		}
	}
}

func TestParse_EndToEndExampleDefect(t *testing.T) {
	res := Parse(`{"chief_complaint": "back pain" "medications": ["ibuprofen"]}`)
	if !res.Success {
		t.Fatalf("expected repaired parse, got %s", res.Err)
	}
	meds, ok := res.Data["medications"].([]any)
	if !ok || len(meds) != 1 || meds[0] != "ibuprofen" {
		t.Fatalf("medications lost: %+v", res.Data)
	}
}

func TestParse_FailuresAreTagged(t *testing.T) {
	cases := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"number", 42},
		{"unrepairable_string", "this is not json at all"},
		{"empty_envelope", map[string]any{"text": "   "}},
	}
	for _, tc := range cases {
		res := Parse(tc.raw)
		if res.Success {
			t.Fatalf("%s: expected failure", tc.name)
		}
		if res.Source != "error" {
			t.Fatalf("%s: expected source error, got %q", tc.name, res.Source)
		}
		if res.Err == "" {
			t.Fatalf("%s: expected an error message", tc.name)
		}
	}
}

func TestRepair_LeavesValidJSONAlone(t *testing.T) {
	valid := `{"a": 1, "b": [true, false], "c": {"d": "e"}}`
	out, changed := Repair(valid)
	if changed {
		t.Fatalf("valid JSON should not change, got %q", out)
	}
}
