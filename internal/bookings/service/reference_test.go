package service

import (
	"strings"
	"testing"
)

func TestNewReference_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		ref := NewReference()
		if !strings.HasPrefix(ref, ReferencePrefix) || len(ref) != len(ReferencePrefix)+referenceLength {
			t.Fatalf("reference = %q", ref)
		}
		for _, c := range ref[len(ReferencePrefix):] {
			if !strings.ContainsRune(referenceAlphabet, c) {
				t.Fatalf("reference %q contains %q", ref, c)
			}
		}
		seen[ref] = true
	}
	if len(seen) < 990 {
		t.Errorf("only %d distinct references out of 1000", len(seen))
	}
}
