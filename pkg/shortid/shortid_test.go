package shortid

import (
	"strings"
	"testing"
)

func TestNewFormat(t *testing.T) {
	t.Parallel()

	code := NewOrderID()
	if !strings.HasPrefix(code, PrefixOrder) {
		t.Fatalf("code %q missing prefix %q", code, PrefixOrder)
	}
	body := strings.TrimPrefix(code, PrefixOrder)
	if len(body) != Length {
		t.Fatalf("code body %q has length %d, want %d", body, len(body), Length)
	}
	for _, r := range body {
		if !strings.ContainsRune(Alphabet, r) {
			t.Fatalf("code %q contains %q outside alphabet", code, r)
		}
	}
}

func TestNewIsNotConstant(t *testing.T) {
	t.Parallel()

	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		seen[NewProductSKU()] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatal("expected varying codes across generations")
	}
}
