package domain

import "testing"

func TestDecodeVariantAttributes(t *testing.T) {
	attrs, name := DecodeVariantAttributes(7, `{"size":"M","color":"Red"}`)
	if name != "M / Red" {
		t.Fatalf("expected display name %q, got %q", "M / Red", name)
	}
	if attrs["size"] != "M" || attrs["color"] != "Red" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}
}

func TestDecodeVariantAttributesKeepsDocumentOrder(t *testing.T) {
	_, name := DecodeVariantAttributes(1, `{"color":"Blue","size":"XL"}`)
	if name != "Blue / XL" {
		t.Fatalf("expected document-order join, got %q", name)
	}
}

func TestDecodeVariantAttributesMalformed(t *testing.T) {
	attrs, name := DecodeVariantAttributes(42, "not json")
	if name != "Variant #42" {
		t.Fatalf("expected fallback name, got %q", name)
	}
	if len(attrs) != 0 {
		t.Fatalf("expected empty attributes, got %v", attrs)
	}
}

func TestDecodeVariantAttributesAbsent(t *testing.T) {
	attrs, name := DecodeVariantAttributes(3, "")
	if name != "Variant #3" {
		t.Fatalf("expected fallback name, got %q", name)
	}
	if len(attrs) != 0 {
		t.Fatalf("expected empty attributes, got %v", attrs)
	}
}

func TestDecodeVariantAttributesNonMap(t *testing.T) {
	if _, name := DecodeVariantAttributes(5, `["M","Red"]`); name != "Variant #5" {
		t.Fatalf("expected fallback for non-map payload, got %q", name)
	}
}

func TestDecodeVariantAttributesSkipsEmptyValues(t *testing.T) {
	_, name := DecodeVariantAttributes(9, `{"size":"L","note":"","color":"Black"}`)
	if name != "L / Black" {
		t.Fatalf("expected empty values omitted from display name, got %q", name)
	}
}
