package models

import (
	"encoding/json"
	"testing"
)

func TestFieldValueRoundTrip(t *testing.T) {
	data := SubmissionData{
		"f1": StringValue("hello"),
		"f2": BoolValue(true),
		"f3": NullValue(),
	}

	raw, err := data.Encode()
	if err != nil {
		t.Fatalf("Error encoding data: %v", err)
	}

	decoded, err := DecodeSubmissionData(raw)
	if err != nil {
		t.Fatalf("Error decoding data: %v", err)
	}

	if len(decoded) != 3 {
		t.Fatalf("Expected 3 values, got %d", len(decoded))
	}

	if v := decoded["f1"]; v.Kind != ValueString || v.Str != "hello" {
		t.Errorf("Expected string 'hello', got %+v", v)
	}
	if v := decoded["f2"]; v.Kind != ValueBool || !v.Bool {
		t.Errorf("Expected bool true, got %+v", v)
	}
	if v := decoded["f3"]; v.Kind != ValueNull {
		t.Errorf("Expected null, got %+v", v)
	}
}

func TestFieldValueMarshalShape(t *testing.T) {
	raw, err := json.Marshal(SubmissionData{"f1": StringValue("x")})
	if err != nil {
		t.Fatal(err)
	}

	// Values marshal as plain JSON scalars, not as tagged objects
	if string(raw) != `{"f1":"x"}` {
		t.Errorf("Unexpected JSON shape: %s", raw)
	}
}

func TestFieldValueRejectsNumbers(t *testing.T) {
	var v FieldValue
	if err := json.Unmarshal([]byte("42"), &v); err == nil {
		t.Error("Expected error for numeric field value")
	}
}

func TestDecodeSubmissionDataEmpty(t *testing.T) {
	d, err := DecodeSubmissionData("")
	if err != nil {
		t.Fatalf("Error decoding empty data: %v", err)
	}
	if len(d) != 0 {
		t.Errorf("Expected empty data, got %d values", len(d))
	}
}

func TestAllows(t *testing.T) {
	set := []string{"u1", "u2"}

	if !Allows(set, "u1") {
		t.Error("Expected u1 to be allowed")
	}
	if Allows(set, "u3") {
		t.Error("Expected u3 to be denied")
	}
	if !Allows([]string{PermissionAny}, "u3") {
		t.Error("Expected wildcard to allow everyone")
	}
}
