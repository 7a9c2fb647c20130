package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"sha1", "9bf7399763ff968e4dbaf1bef11ad7b8f5a75c09", false},
		{"uuid", "1424026a-a3e4-4af2-9ac7-b910f98f213d", false},
		{"underscore", "job_1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"slash", "abc/def", true},
		{"dot", "abc.def", true},
		{"traversal", "..", true},
		{"space", "abc def", true},
		{"null byte", "abc\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("commit", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"nested", "blueprint/tests/1.ipynb", false},
		{"root file", "1.ipynb", false},
		{"spaces", "my folder/analysis.ipynb", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "a/../b.ipynb", true},
		{"backslash", "a\\b.ipynb", true},
		{"empty segment", "a//b.ipynb", true},
		{"trailing slash", "a/b/", true},
		{"control char", "a/\x01.ipynb", true},
		{"too long", strings.Repeat("a", 501), true},
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

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"http", "http://localhost:10180", false},
		{"https", "https://blueprint.example.com", false},

		{"empty", "", true},
		{"no scheme", "localhost:10180", true},
		{"ftp", "ftp://example.com", true},
		{"no host", "http://", true},
		{"path only", "https:///api", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
