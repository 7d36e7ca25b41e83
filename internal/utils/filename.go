package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceChars      = regexp.MustCompile(`[\r\n\t]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
	nonSlugChars         = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

const maxFilenameLen = 200

// SanitizeFilename turns a level or book name into a safe file or directory name.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Leave room for an extension
	if len(filename) > maxFilenameLen {
		filename = strings.TrimSpace(truncateUTF8(filename, maxFilenameLen))
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// Slugify lowercases name and joins its letters and digits with dashes.
// "The Fox & the Grapes" becomes "the-fox-the-grapes".
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
