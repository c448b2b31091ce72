package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// hexHashRegex matches full or abbreviated hexadecimal object names.
var hexHashRegex = regexp.MustCompile(`^[0-9a-f]{4,64}$`)

// ValidateHash validates a commit hash for safety and correctness.
// Both full 40/64-character names and abbreviations of at least four
// characters are accepted.
func ValidateHash(hash string) error {
	if hash == "" {
		return New(ErrCodeInvalidHash, "commit hash cannot be empty")
	}
	if !hexHashRegex.MatchString(hash) {
		return New(ErrCodeInvalidHash, "invalid commit hash: %q", hash)
	}
	return nil
}

// ValidateRefName validates a branch or ref name following the rules of
// git-check-ref-format. The validation is intentionally conservative: it
// rejects anything that could be interpreted as a command-line flag or be
// used for path traversal when the name is later passed to the git CLI.
func ValidateRefName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRef, "ref name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidRef, "ref name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRef, "ref name contains invalid control characters")
		}
	}

	// Flags must never reach the git CLI as ref names
	if strings.HasPrefix(name, "-") {
		return New(ErrCodeInvalidRef, "ref name cannot start with a dash: %q", name)
	}

	dangerousPatterns := []string{
		"..",   // Parent directory / range syntax
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		"@{",   // Reflog syntax
		" ",    // Spaces are invalid in ref names
		"~",    // Revision suffix
		"^",    // Revision suffix
		":",    // Refspec separator
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidRef, "ref name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasSuffix(name, ".lock") || strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".") {
		return New(ErrCodeInvalidRef, "invalid ref name: %q", name)
	}

	return nil
}

// ValidateRepoPath validates a repository worktree path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateRepoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "repository path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "repository path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "repository path contains invalid characters")
		}
	}

	return nil
}
