package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VariantFallbackName is the display name used when a variant's attribute
// map is absent or cannot be decoded.
func VariantFallbackName(variantID int64) string {
	return fmt.Sprintf("Variant #%d", variantID)
}

// DecodeVariantAttributes parses the JSON-encoded attribute map stored on a
// variant. On success it returns the map plus a display name built by
// joining the non-empty attribute values with " / " in document order.
// Absent or malformed data yields an empty map and the fallback name.
func DecodeVariantAttributes(variantID int64, raw string) (map[string]string, string) {
	fallback := VariantFallbackName(variantID)
	if strings.TrimSpace(raw) == "" {
		return map[string]string{}, fallback
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return map[string]string{}, fallback
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return map[string]string{}, fallback
	}

	attrs := make(map[string]string)
	names := make([]string, 0, 4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return map[string]string{}, fallback
		}
		key, ok := keyTok.(string)
		if !ok {
			return map[string]string{}, fallback
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return map[string]string{}, fallback
		}

		text, present := attributeText(value)
		attrs[key] = text
		if present {
			names = append(names, text)
		}
	}
	if _, err := dec.Token(); err != nil {
		return map[string]string{}, fallback
	}

	return attrs, strings.Join(names, " / ")
}

// attributeText renders one attribute value for display. The second return
// reports whether the value should appear in the joined display name:
// empty strings, zero numbers, false and null are omitted.
func attributeText(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		if !v {
			return "false", false
		}
		return "true", true
	case json.Number:
		s := v.String()
		if f, err := v.Float64(); err == nil && f == 0 {
			return s, false
		}
		return s, true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
