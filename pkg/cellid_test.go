package digi

import "testing"

func TestCellIDCoderRoundTrip(t *testing.T) {
	coder, err := NewCellIDCoder("system:8,layer:4,phi:10,z:12")
	if err != nil {
		t.Fatalf("NewCellIDCoder: %v", err)
	}

	id, err := coder.Encode(map[string]uint64{
		"system": 3,
		"layer":  1,
		"phi":    63,
		"z":      15,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for field, want := range map[string]uint64{"system": 3, "layer": 1, "phi": 63, "z": 15} {
		got, err := coder.Get(id, field)
		if err != nil {
			t.Fatalf("Get(%s): %v", field, err)
		}
		if got != want {
			t.Errorf("Get(%s) = %d, want %d", field, got, want)
		}
	}
}

func TestCellIDCoderSetKeepsOtherFields(t *testing.T) {
	coder, err := NewCellIDCoder("system:8,layer:4,phi:10,z:12")
	if err != nil {
		t.Fatalf("NewCellIDCoder: %v", err)
	}
	id, _ := coder.Encode(map[string]uint64{"system": 7, "phi": 12, "z": 5})

	id, err = coder.Set(id, "phi", 13)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := coder.Get(id, "phi"); got != 13 {
		t.Errorf("phi = %d, want 13", got)
	}
	if got, _ := coder.Get(id, "system"); got != 7 {
		t.Errorf("system changed to %d", got)
	}
	if got, _ := coder.Get(id, "z"); got != 5 {
		t.Errorf("z changed to %d", got)
	}
}

func TestCellIDCoderMask(t *testing.T) {
	coder, err := NewCellIDCoder("system:8,layer:4,phi:10,z:12")
	if err != nil {
		t.Fatalf("NewCellIDCoder: %v", err)
	}
	mask, err := coder.Mask([]string{"phi", "z"})
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	// phi occupies bits 12-21, z bits 22-33
	want := uint64(0x3FFFFF) << 12
	if mask != want {
		t.Errorf("mask = 0x%x, want 0x%x", mask, want)
	}

	if _, err := coder.Mask([]string{"nope"}); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestCellIDCoderRejectsBadEncodings(t *testing.T) {
	bad := []string{
		"",
		"phi",
		"phi:0",
		"phi:60,z:10",
		"phi:10,phi:10",
	}
	for _, encoding := range bad {
		if _, err := NewCellIDCoder(encoding); err == nil {
			t.Errorf("expected error for encoding %q", encoding)
		}
	}
}

func TestCellIDCoderUnknownField(t *testing.T) {
	coder, _ := NewCellIDCoder("phi:10,z:12")
	if _, err := coder.Get(0, "layer"); err == nil {
		t.Error("expected error for unknown field in Get")
	}
	if _, err := coder.Set(0, "layer", 1); err == nil {
		t.Error("expected error for unknown field in Set")
	}
}
