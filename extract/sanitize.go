package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxNameLen bounds the sanitized stem (extension excluded).
const DefaultMaxNameLen = 50

var (
	unsafeChars    = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)
	repeatedUnders = regexp.MustCompile(`_+`)
)

// Sanitize transliterates a filename to an ASCII-safe, length-bounded form.
// Non-alphanumeric characters become underscores, runs of underscores
// collapse, and the extension is preserved. The result is never empty:
// a name with no safe characters becomes "file".
//
// Downstream OS-level automation (native clipboard, file inputs) cannot
// reliably address paths containing non-ASCII characters, so every
// filename handed to those layers passes through here first.
func Sanitize(filename string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxNameLen
	}
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	safe := unsafeChars.ReplaceAllString(stem, "_")
	safe = repeatedUnders.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		safe = "file"
	}
	if len(safe) > maxLen {
		safe = safe[:maxLen]
	}
	return safe + ext
}

// EnsureASCIINames renames every file in dir whose name is not already
// ASCII-safe. Collisions get a numeric suffix (_1, _2, ...). Returns a map
// of old path → new path for the files that were renamed. A missing
// directory is not an error: nothing to rename.
func EnsureASCIINames(dir string) (map[string]string, error) {
	renamed := make(map[string]string)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return renamed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extract: read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		safe := Sanitize(name, DefaultMaxNameLen)
		if safe == name {
			continue
		}

		oldPath := filepath.Join(dir, name)
		newPath := filepath.Join(dir, safe)

		ext := filepath.Ext(safe)
		stem := strings.TrimSuffix(safe, ext)
		for i := 1; exists(newPath); i++ {
			newPath = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		}

		if err := os.Rename(oldPath, newPath); err != nil {
			return renamed, fmt.Errorf("extract: rename %s: %w", oldPath, err)
		}
		renamed[oldPath] = newPath
	}
	return renamed, nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
