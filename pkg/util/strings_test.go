package util

import "testing"

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"x":      "*",
		"cisco":  "c****",
		"s3cr3t": "s*****",
	}
	for in, want := range tests {
		if got := MaskSecret(in); got != want {
			t.Errorf("MaskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCoalesceString(t *testing.T) {
	if got := CoalesceString("", "", "SSH"); got != "SSH" {
		t.Errorf("CoalesceString() = %q, want SSH", got)
	}
	if got := CoalesceString(); got != "" {
		t.Errorf("CoalesceString() = %q, want empty", got)
	}
}
