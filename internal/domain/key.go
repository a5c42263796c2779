package domain

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFileName is used when sanitization leaves nothing alphanumeric.
const DefaultFileName = "file"

// maxKeyNameLength bounds the sanitized filename portion of a storage key.
const maxKeyNameLength = 100

var (
	illegalRunes = regexp.MustCompile(`[^a-zA-Z0-9._/-]+`)
	alphanumeric = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// deaccent decomposes characters and strips combining marks, so "café"
// becomes "cafe".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFileName normalizes a client-supplied filename into a form legal
// for the blob backend: diacritics stripped, illegal characters replaced
// with underscores, repeated separators and dots collapsed, leading and
// trailing separators trimmed. Returns DefaultFileName when nothing
// alphanumeric survives. Idempotent: sanitizing an already-sanitized name
// returns it unchanged.
func SanitizeFileName(name string) string {
	if s, _, err := transform.String(deaccent, name); err == nil {
		name = s
	}

	// Anything outside the legal set becomes a single underscore per run.
	// The result is pure ASCII from here on.
	name = illegalRunes.ReplaceAllString(name, "_")

	for _, sep := range []string{"__", "//", ".."} {
		for strings.Contains(name, sep) {
			name = strings.ReplaceAll(name, sep, sep[:1])
		}
	}

	name = strings.Trim(name, "_./")

	if !alphanumeric.MatchString(name) {
		return DefaultFileName
	}

	return truncateName(name, maxKeyNameLength)
}

// truncateName shortens an over-long name, keeping the extension when the
// extension itself fits.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}

	ext := path.Ext(name)
	if ext != "" && len(ext) < max {
		base := name[:len(name)-len(ext)]
		base = strings.TrimRight(base[:max-len(ext)], "_./")
		return base + ext
	}

	return strings.TrimRight(name[:max], "_./")
}

// BuildKey computes the deterministic storage key for an upload:
// prefix/yyyyMMdd/trackingID-sanitizedFileName. The date component uses the
// batch-start time in UTC.
func BuildKey(prefix string, uploadedAt time.Time, trackingID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s-%s",
		prefix,
		uploadedAt.UTC().Format("20060102"),
		trackingID,
		SanitizeFileName(fileName),
	)
}
