package errors

import (
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "pump", false},
		{"valid with dash", "pump-1", false},
		{"valid with underscore", "G_and_1", false},
		{"valid with dot", "unit.a", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGateType(t *testing.T) {
	for _, valid := range []string{"AND", "OR", "KOON"} {
		if err := ValidateGateType(valid); err != nil {
			t.Errorf("ValidateGateType(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "and", "NAND", "XOR"} {
		err := ValidateGateType(invalid)
		if !Is(err, ErrCodeInvalidGate) {
			t.Errorf("ValidateGateType(%q) = %v, want INVALID_GATE", invalid, err)
		}
	}
}

func TestValidateRelation(t *testing.T) {
	for _, valid := range []string{"series", "parallel", "koon"} {
		if err := ValidateRelation(valid); err != nil {
			t.Errorf("ValidateRelation(%q) = %v, want nil", valid, err)
		}
	}
	if err := ValidateRelation("SERIES"); !Is(err, ErrCodeInvalidRelation) {
		t.Errorf("ValidateRelation(SERIES) = %v, want INVALID_RELATION", err)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "diagrams/plant.json", false},
		{"valid simple", "plant.json", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "foo/../../etc", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
