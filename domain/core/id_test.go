package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id == "" {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	id := NewRunID()
	parsed, err := ParseRunID(" " + id.String() + " ")
	if err != nil {
		t.Fatalf("ParseRunID(%q) failed: %v", id, err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}

	if _, err := ParseRunID(""); err == nil {
		t.Error("Expected error for empty run ID")
	}
	if _, err := ParseRunID("not-a-uuid"); err == nil {
		t.Error("Expected error for malformed run ID")
	}
}

func TestParseRunKind(t *testing.T) {
	tests := []struct {
		in      string
		want    RunKind
		wantErr bool
	}{
		{"target", RunTarget, false},
		{"DECOY", RunDecoy, false},
		{" target ", RunTarget, false},
		{"both", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRunKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRunKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRunKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestComputeMatrixHash(t *testing.T) {
	rows := []string{"a", "b"}
	cols := []string{"s1", "s2"}
	base := ComputeMatrixHash(rows, cols, []float64{1, 2, 3, 4})

	if again := ComputeMatrixHash(rows, cols, []float64{1, 2, 3, 4}); again != base {
		t.Errorf("Expected identical hashes, got %s and %s", base, again)
	}
	if other := ComputeMatrixHash(rows, cols, []float64{1, 2, 3, 4.0000000001}); other == base {
		t.Error("Expected hash to change with a one-ulp-scale value change")
	}
	if swapped := ComputeMatrixHash([]string{"b", "a"}, cols, []float64{1, 2, 3, 4}); swapped == base {
		t.Error("Expected hash to depend on row labels")
	}
	if len(base.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", base.Short())
	}
}
