package roles

import (
	"testing"

	"alias-heaven-calculator/internal/models"
)

func TestProvider_Swap(t *testing.T) {
	first := NewDefault()
	p := NewProvider(first)
	if p.Calculator() != first {
		t.Fatalf("expected initial calculator")
	}

	second, err := New(Config{QuackerRoleNames: []string{"Nobody"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if prev := p.Swap(second); prev != first {
		t.Fatalf("swap should return previous calculator")
	}
	if _, name := p.Calculator().Quacker(models.Input{Quacks: 1000}); name != "Nobody" {
		t.Fatalf("expected swapped calculator in effect, got %q", name)
	}
}
