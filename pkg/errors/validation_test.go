package errors

import (
	"strings"
	"testing"
)

func TestValidateHash(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		wantErr bool
	}{
		{"Full40", "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2", false},
		{"SHA256Length", strings.Repeat("ab", 32), false},
		{"Abbreviated", "a1b2c3d", false},
		{"Empty", "", true},
		{"TooShort", "abc", true},
		{"NonHex", "xyz1234", true},
		{"Uppercase", "A1B2C3D4", true},
		{"Flag", "--help", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHash(tt.hash)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHash(%q) error = %v, wantErr %v", tt.hash, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRefName(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"Simple", "main", false},
		{"Slashed", "feature/lanes", false},
		{"Dotted", "release-1.2", false},
		{"Empty", "", true},
		{"LeadingDash", "-D", true},
		{"DoubleDot", "a..b", true},
		{"Space", "my branch", true},
		{"Tilde", "main~1", true},
		{"Caret", "main^", true},
		{"Colon", "src:dst", true},
		{"Reflog", "main@{1}", true},
		{"LockSuffix", "main.lock", true},
		{"TrailingSlash", "feature/", true},
		{"TrailingDot", "main.", true},
		{"ControlChar", "ma\x07in", true},
		{"TooLong", strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRefName(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRefName(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRef) {
				t.Errorf("error should carry ErrCodeInvalidRef, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateRepoPath(t *testing.T) {
	if err := ValidateRepoPath("/home/user/project"); err != nil {
		t.Errorf("valid path rejected: %v", err)
	}
	if err := ValidateRepoPath(""); err == nil {
		t.Error("empty path should be rejected")
	}
	if err := ValidateRepoPath(strings.Repeat("p", 501)); err == nil {
		t.Error("overlong path should be rejected")
	}
	if err := ValidateRepoPath("/tmp/\x00evil"); err == nil {
		t.Error("null byte should be rejected")
	}
}
