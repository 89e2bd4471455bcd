package validation

import "testing"

func TestSanitizeString_Trims(t *testing.T) {
	if got := SanitizeString("  hello  ", 100); got != "hello" {
		t.Errorf("Expected trimmed string, got %q", got)
	}
}

func TestSanitizeString_CapsLength(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	if got := SanitizeString(string(long), 10); len(got) != 10 {
		t.Errorf("Expected 10 chars, got %d", len(got))
	}
}

func TestSanitizeString_StripsControlChars(t *testing.T) {
	if got := SanitizeString("a\x00b\x01c", 100); got != "abc" {
		t.Errorf("Expected control chars stripped, got %q", got)
	}
}

func TestSanitizeString_KeepsTabs(t *testing.T) {
	if got := SanitizeString("a\tb", 100); got != "a\tb" {
		t.Errorf("Expected tab preserved, got %q", got)
	}
}

func TestRequired(t *testing.T) {
	if err := Required("name", "value")(); err != nil {
		t.Errorf("Expected nil for non-empty, got %v", err)
	}
	if err := Required("name", "   ")(); err == nil {
		t.Error("Expected error for blank value")
	}
}

func TestIntRange(t *testing.T) {
	if err := IntRange("timeout", 3, 1, 60)(); err != nil {
		t.Errorf("Expected nil for in-range, got %v", err)
	}
	if err := IntRange("timeout", 0, 1, 60)(); err == nil {
		t.Error("Expected error for below range")
	}
	if err := IntRange("timeout", 61, 1, 60)(); err == nil {
		t.Error("Expected error for above range")
	}
}

func TestOneOf(t *testing.T) {
	if err := OneOf("cod_action", "verify", "verify", "hide", "allow")(); err != nil {
		t.Errorf("Expected nil for allowed value, got %v", err)
	}
	if err := OneOf("cod_action", "block", "verify", "hide", "allow")(); err == nil {
		t.Error("Expected error for disallowed value")
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	errs := Validate(
		Required("a", ""),
		Required("b", "ok"),
		IntRange("c", 500, 0, 100),
	)
	if len(errs) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs.Error() == "" {
		t.Error("Expected non-empty error string")
	}
}
