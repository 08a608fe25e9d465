package critique

import (
	"errors"
	"testing"
)

// Kept free of quotes so it can be embedded in JSON string literals below.
const validFixedMJML = `<mjml><mj-body><mj-section><mj-column><mj-button>Go</mj-button></mj-column></mj-section></mj-body></mjml>`

func TestParseResultAcceptsWellFormedResponse(t *testing.T) {
	raw := `{
		"issues": [
			{"issue": "Buttons touch each other", "severity": 4, "fix": "Add padding=\"20px\" between the adjacent buttons"}
		],
		"fixedMJML": "` + validFixedMJML + `"
	}`
	res, err := parseResult(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Issues) != 1 {
		t.Fatalf("expected one issue, got %d", len(res.Issues))
	}
	if res.Issues[0].Severity != 4 {
		t.Fatalf("unexpected severity: %d", res.Issues[0].Severity)
	}
	if res.FixedMarkup == "" {
		t.Fatal("fixed markup missing")
	}
}

func TestParseResultAcceptsQuotedSeverity(t *testing.T) {
	raw := `{"issues":[{"issue":"x","severity":"2","fix":"y"}],"fixedMJML":"` + validFixedMJML + `"}`
	res, err := parseResult(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Issues[0].Severity != 2 {
		t.Fatalf("unexpected severity: %d", res.Issues[0].Severity)
	}
}

func TestParseResultRejectsNonJSON(t *testing.T) {
	_, err := parseResult("Looks great, no issues!")
	var merr *MalformedCritiqueError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedCritiqueError, got %v", err)
	}
}

func TestParseResultRejectsMissingFixedMarkup(t *testing.T) {
	_, err := parseResult(`{"issues":[]}`)
	var merr *MalformedCritiqueError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedCritiqueError, got %v", err)
	}
}

func TestParseResultRejectsOutOfRangeSeverity(t *testing.T) {
	raw := `{"issues":[{"issue":"x","severity":9,"fix":"y"}],"fixedMJML":"` + validFixedMJML + `"}`
	if _, err := parseResult(raw); err == nil {
		t.Fatal("expected error for severity out of range")
	}
}

func TestParseResultValidatesFixedMarkupShape(t *testing.T) {
	raw := `{"issues":[],"fixedMJML":"<div>not mjml</div>"}`
	_, err := parseResult(raw)
	var merr *MalformedCritiqueError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedCritiqueError for invalid fixedMJML, got %v", err)
	}
}
