package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/j-veylop/mise/internal/models"
)

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeJSON parses raw into T. Malformed JSON yields *ParseError.
func decodeJSON[T any](raw string) (T, error) {
	var v T
	clean := stripFences(raw)
	if err := json.Unmarshal([]byte(clean), &v); err != nil {
		return v, &ParseError{Err: err, Raw: truncate(clean, 200)}
	}
	return v, nil
}

// decodeObject parses raw into *T and validates it against its tags.
func decodeObject[T any](raw string) (*T, error) {
	v, err := decodeJSON[T](raw)
	if err != nil {
		return nil, err
	}
	if err := models.Validate(&v); err != nil {
		return nil, &ValidationError{Err: err}
	}
	return &v, nil
}

// decodeList parses either a bare JSON array or an object holding the array
// under key, then validates each struct element.
func decodeList[T any](raw, key string) ([]T, error) {
	clean := stripFences(raw)
	if strings.HasPrefix(clean, "[") {
		list, err := decodeJSON[[]T](clean)
		if err != nil {
			return nil, err
		}
		return list, validateEach(list)
	}

	obj, err := decodeJSON[map[string]json.RawMessage](clean)
	if err != nil {
		return nil, err
	}
	field, ok := obj[key]
	if !ok || bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
		return nil, &ValidationError{Reason: fmt.Sprintf("response has no %q array", key)}
	}
	list, err := decodeJSON[[]T](string(field))
	if err != nil {
		return nil, err
	}
	return list, validateEach(list)
}

// validateEach validates struct elements; scalar lists pass through.
func validateEach[T any](list []T) error {
	if reflect.TypeFor[T]().Kind() != reflect.Struct {
		return nil
	}
	for i := range list {
		if err := models.Validate(&list[i]); err != nil {
			return &ValidationError{Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}
	return nil
}
