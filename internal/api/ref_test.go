package api

import "testing"

func TestParseRef(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPath string
		isToken  bool
	}{
		{"numeric id", "42", "/debates/42", false},
		{"long numeric id", "9007199254740993", "/debates/9007199254740993", false},
		{"share token", "a1b2c3d4", "/debates/t/a1b2c3d4", true},
		{"uuid token", "3f8e0d1c-aaaa-bbbb-cccc-000000000001", "/debates/t/3f8e0d1c-aaaa-bbbb-cccc-000000000001", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := ParseRef(tt.raw)
			if ref.Path() != tt.wantPath {
				t.Errorf("Path() = %q, want %q", ref.Path(), tt.wantPath)
			}
			if ref.IsToken() != tt.isToken {
				t.Errorf("IsToken() = %v, want %v", ref.IsToken(), tt.isToken)
			}
			if ref.String() != tt.raw {
				t.Errorf("String() = %q, want %q", ref.String(), tt.raw)
			}
		})
	}
}
