package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("entity")

	first := gen.Next()
	second := gen.Next()

	if first != "entity-1" || second != "entity-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	gen := NewIDGenerator("")

	if next := gen.Next(); next != "id-1" {
		t.Fatalf("expected id-1 for empty prefix, got %q", next)
	}
}

func TestIDGeneratorNextFuncOnNil(t *testing.T) {
	var gen *IDGenerator

	next := gen.NextFunc()
	if got := next(); got != "" {
		t.Fatalf("expected empty identifier from nil generator, got %q", got)
	}
}
