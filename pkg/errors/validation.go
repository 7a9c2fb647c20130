package errors

import (
	"strings"
	"unicode"
)

// ValidateID validates a repository, commit, execution or job identifier
// before it is interpolated into a service URL.
//
// Identifiers are content hashes or UUIDs, so the accepted alphabet is
// small: letters, digits, '-' and '_'. Anything else (slashes, dots,
// control characters) is rejected to keep path segments intact.
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "%s id cannot be empty", kind)
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidID, "%s id too long (max 128 characters)", kind)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return New(ErrCodeInvalidID, "%s id contains invalid character %q", kind, r)
		}
	}
	return nil
}

// ValidatePath validates a notebook path within a repository.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
//   - No empty segments (a//b)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	if strings.Contains(path, "//") || strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "path cannot contain empty segments")
	}

	return nil
}

// ValidateURL validates a service base URL.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	rest, ok := strings.CutPrefix(rawURL, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(rawURL, "http://")
	}
	if !ok {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if rest == "" || strings.HasPrefix(rest, "/") {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}
