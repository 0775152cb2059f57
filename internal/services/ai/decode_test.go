package ai

import (
	"errors"
	"testing"

	"github.com/j-veylop/mise/internal/models"
)

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1,2]\n```":         `[1,2]`,
		"  ```json{\"a\":1}```  ": `{"a":1}`,
		"\n\n  [\"x\"]  \n":       `["x"]`,
	}
	for in, want := range tests {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr any
	}{
		{"Valid", `{"dishName":"Pad Thai","cuisine":"Thai","confidence":0.9}`, nil},
		{"Fenced", "```json\n{\"dishName\":\"Ramen\"}\n```", nil},
		{"Malformed", `{"dishName":`, &ParseError{}},
		{"MissingDishName", `{"cuisine":"Thai"}`, &ValidationError{}},
		{"ConfidenceOutOfRange", `{"dishName":"x","confidence":3}`, &ValidationError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeObject[models.DishIdentification](tt.raw)
			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("decodeObject() error = %v", err)
				}
				if got.DishName == "" {
					t.Error("decodeObject() returned empty dish name")
				}
			case *ParseError:
				if !errors.As(err, &want) {
					t.Errorf("decodeObject() error = %v, want *ParseError", err)
				}
			case *ValidationError:
				if !errors.As(err, &want) {
					t.Errorf("decodeObject() error = %v, want *ValidationError", err)
				}
			}
			if err != nil && Classify(err) != FailureTerminal {
				t.Errorf("Classify(%v) = %v, want terminal", err, Classify(err))
			}
		})
	}
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"BareArray", `["egg","milk"]`, 2, false},
		{"Keyed", `{"ingredients":["egg"]}`, 1, false},
		{"KeyedEmpty", `{"ingredients":[]}`, 0, false},
		{"MissingKey", `{"items":["egg"]}`, 0, true},
		{"NullKey", `{"ingredients":null}`, 0, true},
		{"WrongType", `{"ingredients":"egg"}`, 0, true},
		{"NotJSON", `eggs and milk`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList[string](tt.raw, "ingredients")
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("decodeList() = %v, want %d items", got, tt.want)
			}
		})
	}
}

func TestDecodeListValidatesStructs(t *testing.T) {
	_, err := decodeList[models.Substitution](`{"substitutes":[{"name":"oat milk"},{"ratio":"1:1"}]}`, "substitutes")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("decodeList() error = %v, want *ValidationError", err)
	}

	subs, err := decodeList[models.Substitution](`[{"name":"oat milk","ratio":"1:1"}]`, "substitutes")
	if err != nil {
		t.Fatalf("decodeList() error = %v", err)
	}
	if len(subs) != 1 || subs[0].Ratio != "1:1" {
		t.Errorf("decodeList() = %+v", subs)
	}
}
