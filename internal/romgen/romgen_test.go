package romgen

import (
	"strings"
	"testing"
)

func TestGenerateEmitsOneArmPerByte(t *testing.T) {
	src := Generate("rom", []byte{10, 20, 30}, 5)

	if !strings.HasPrefix(src, "mod rom(addr: $A) -> $X {") {
		t.Fatalf("expected module header, got %q", src)
	}
	for _, want := range []string{"5 => 10", "6 => 20", "7 => 30"} {
		if !strings.Contains(src, want) {
			t.Errorf("expected arm %q in:\n%s", want, src)
		}
	}
	if strings.Count(src, "=>") != 3 {
		t.Errorf("expected 3 match arms, got %d", strings.Count(src, "=>"))
	}
}

func TestGenerateEmptyData(t *testing.T) {
	src := Generate("rom", nil, 0)
	if strings.Contains(src, "=>") {
		t.Errorf("expected no match arms for empty data, got:\n%s", src)
	}
}
