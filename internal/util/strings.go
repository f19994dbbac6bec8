package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SafeName keeps ASCII letters, digits, '.', '_' and '-' and replaces every
// other rune with '-'. Leading dots are replaced as well so the result is
// never "." or "..".
func SafeName(s string) string {
	if s == "" {
		return "-"
	}

	var builder strings.Builder
	leading := true
	for _, r := range s {
		switch {
		case r == '.' && leading:
			builder.WriteRune('-')
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9',
			r == '.', r == '_', r == '-':
			builder.WriteRune(r)
			leading = false
		default:
			builder.WriteRune('-')
			leading = false
		}
	}

	return builder.String()
}

// ProjectDir names a project's workspace directory. SafeName alone is lossy,
// so a short digest of the raw name is appended and distinct names never
// share a directory.
func ProjectDir(name string) string {
	sum := sha256.Sum256([]byte(name))
	return SafeName(name) + "-" + hex.EncodeToString(sum[:4])
}
