package scrape

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCleanJSONStripsDigitPrefix(t *testing.T) {
	cleaned, valid := CleanJSON(`12{"a":1}`)
	if !valid {
		t.Fatalf("Expected cleaned content to be valid JSON")
	}
	if cleaned != `{"a":1}` {
		t.Errorf("Cleaned content mismatch: got %q", cleaned)
	}
}

func TestCleanJSONDigitPrefixNeedsBrace(t *testing.T) {
	// A digit run not followed by '{' is data, not a viewer artifact.
	cleaned, valid := CleanJSON(`12345`)
	if !valid {
		t.Fatalf("Expected a bare number to stay valid JSON")
	}
	if cleaned != `12345` {
		t.Errorf("Cleaned content mismatch: got %q", cleaned)
	}
}

func TestCleanJSONStripsBOMAndWhitespace(t *testing.T) {
	cleaned, valid := CleanJSON("\uFEFF  {\"key\":\"value\"}\n")
	if !valid {
		t.Fatalf("Expected cleaned content to be valid JSON")
	}
	if cleaned != `{"key":"value"}` {
		t.Errorf("Cleaned content mismatch: got %q", cleaned)
	}
}

func TestCleanJSONExtractsEmbeddedObject(t *testing.T) {
	cleaned, valid := CleanJSON(`some viewer noise {"a":{"b":2}} trailing junk`)
	if !valid {
		t.Fatalf("Expected embedded object to be extracted")
	}
	if cleaned != `{"a":{"b":2}}` {
		t.Errorf("Cleaned content mismatch: got %q", cleaned)
	}
}

func TestCleanJSONExtractsEmbeddedArray(t *testing.T) {
	cleaned, valid := CleanJSON(`noise [1,2,3] more`)
	if !valid {
		t.Fatalf("Expected embedded array to be extracted")
	}
	if cleaned != `[1,2,3]` {
		t.Errorf("Cleaned content mismatch: got %q", cleaned)
	}
}

func TestCleanJSONBracesInsideStrings(t *testing.T) {
	input := `junk {"msg":"contains } and { inside"} junk`
	cleaned, valid := CleanJSON(input)
	if !valid {
		t.Fatalf("Expected extraction to survive braces inside string values")
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		t.Fatalf("Cleaned content does not parse: %v", err)
	}
	if v["msg"] != "contains } and { inside" {
		t.Errorf("Unexpected value: %v", v["msg"])
	}
}

func TestCleanJSONFallsBackToRaw(t *testing.T) {
	raw := "not json at all"
	cleaned, valid := CleanJSON(raw)
	if valid {
		t.Fatalf("Expected invalid content to be reported as such")
	}
	if cleaned != raw {
		t.Errorf("Expected original raw content back, got %q", cleaned)
	}
}

func TestNormalizeContentShapes(t *testing.T) {
	// The three shapes the file-contents endpoint can return for the same
	// underlying document.
	shapes := map[string]string{
		"raw string":   `{"token":"abc","id":7}`,
		"pre-parsed":   "{\n  \"token\": \"abc\",\n  \"id\": 7\n}",
		"data wrapper": `{"data":"{\"token\":\"abc\",\"id\":7}"}`,
	}

	var want map[string]any
	if err := json.Unmarshal([]byte(`{"token":"abc","id":7}`), &want); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	for name, raw := range shapes {
		normalized, ok := NormalizeContent(raw)
		if !ok {
			t.Fatalf("%s: expected content", name)
		}
		var got map[string]any
		if err := json.Unmarshal([]byte(normalized), &got); err != nil {
			t.Fatalf("%s: normalized content does not parse: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: normalized content mismatch: got %v, want %v", name, got, want)
		}
	}
}

func TestNormalizeContentEmpty(t *testing.T) {
	if _, ok := NormalizeContent("   \n"); ok {
		t.Error("Expected empty content to be rejected")
	}
}

func TestNormalizeContentNonJSONString(t *testing.T) {
	raw := "plain text file"
	normalized, ok := NormalizeContent(raw)
	if !ok {
		t.Fatalf("Expected non-JSON text to pass through")
	}
	if normalized != raw {
		t.Errorf("Expected verbatim content, got %q", normalized)
	}
}
