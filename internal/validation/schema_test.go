package validation

import (
	"errors"
	"testing"
)

var testSchema = []byte(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"root_namespace": {"type": "string", "minLength": 1},
		"workers": {"type": "integer", "minimum": 0}
	},
	"required": ["root_namespace"]
}`)

func TestSchemaCacheCompileMemoizes(t *testing.T) {
	cache := NewSchemaCache()

	first, err := cache.Compile("config", testSchema)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	second, err := cache.Compile("config", []byte(`{"type":"array"}`))
	if err != nil {
		t.Fatalf("Compile returned error on reuse: %v", err)
	}
	if first != second {
		t.Fatal("expected compiled schema to be reused for the same name")
	}
}

func TestSchemaCacheCompileRejectsBadSchema(t *testing.T) {
	cache := NewSchemaCache()
	if _, err := cache.Compile("broken", []byte(`{"type": 12}`)); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestValidatePayloadAcceptsValidDocument(t *testing.T) {
	cache := NewSchemaCache()
	schema, err := cache.Compile("config", testSchema)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	payload := map[string]any{
		"root_namespace": "site/pages",
		"workers":        float64(4),
	}
	if err := ValidatePayload(schema, payload); err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestValidatePayloadCollectsIssues(t *testing.T) {
	cache := NewSchemaCache()
	schema, err := cache.Compile("config", testSchema)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	payload := map[string]any{
		"workers": float64(-1),
		"extra":   true,
	}
	err = ValidatePayload(schema, payload)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}

	issues := Issues(err)
	if len(issues) == 0 {
		t.Fatal("expected at least one issue")
	}
}

func TestIssuesFallsBackToMessage(t *testing.T) {
	issues := Issues(errors.New("boom"))
	if len(issues) != 1 || issues[0].Message != "boom" {
		t.Fatalf("unexpected issues: %#v", issues)
	}
}
