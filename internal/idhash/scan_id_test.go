package idhash

import "testing"

func TestComputeScanID(t *testing.T) {
	tests := []struct {
		name       string
		startedAt  int64
		classifier string
		addresses  []string
	}{
		{"with tokens", 1700000000000, "Enhanced Meme Token Classifier", []string{"MintA", "MintB"}},
		{"no tokens", 1700000000000, "Threshold Classifier", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScanID(tt.startedAt, tt.classifier, tt.addresses)
			if len(got) != 64 {
				t.Errorf("ComputeScanID() length = %d, want 64", len(got))
			}

			got2 := ComputeScanID(tt.startedAt, tt.classifier, tt.addresses)
			if got != got2 {
				t.Errorf("ComputeScanID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeScanID_OrderIndependent(t *testing.T) {
	addrs := []string{"MintC", "MintA", "MintB"}
	a := ComputeScanID(1000, "c", addrs)
	b := ComputeScanID(1000, "c", []string{"MintA", "MintB", "MintC"})
	if a != b {
		t.Errorf("address order changed scan id: %s != %s", a, b)
	}
	if addrs[0] != "MintC" {
		t.Error("ComputeScanID must not reorder the caller's slice")
	}
}

func TestComputeScanID_DifferentInputs(t *testing.T) {
	base := ComputeScanID(1000, "c", []string{"MintA"})

	if base == ComputeScanID(2000, "c", []string{"MintA"}) {
		t.Error("Different start time should produce different hash")
	}
	if base == ComputeScanID(1000, "d", []string{"MintA"}) {
		t.Error("Different classifier should produce different hash")
	}
	if base == ComputeScanID(1000, "c", []string{"MintB"}) {
		t.Error("Different addresses should produce different hash")
	}
}
