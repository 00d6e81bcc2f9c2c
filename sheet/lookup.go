package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var leadingIndex = regexp.MustCompile(`^\d+_`)

// FindDoc locates the structured document for a record: first the exact
// numeric convention post_<row-1>.docx, then fuzzy title matching against
// the output directory. First match wins. Returns "" when the row has no
// associated document and the legacy flat content applies.
func FindDoc(outputDir, title string, rowNum int) string {
	if _, err := os.Stat(outputDir); err != nil {
		return ""
	}

	exact := filepath.Join(outputDir, fmt.Sprintf("post_%03d.docx", rowNum-1))
	if _, err := os.Stat(exact); err == nil {
		return exact
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".docx") || strings.HasPrefix(name, "test_") {
			continue
		}
		stem := strings.TrimSuffix(name, ".docx")
		stem = leadingIndex.ReplaceAllString(stem, "")
		if strings.Contains(stem, title) || strings.Contains(title, stem) {
			return filepath.Join(outputDir, name)
		}
	}
	return ""
}

// SectionImages returns the sorted section_<row-1>_*.png assets for a
// record, the last-resort image source when neither a document nor an
// image_paths column exists.
func SectionImages(imagesDir string, rowNum int) []string {
	matches, err := filepath.Glob(filepath.Join(imagesDir, fmt.Sprintf("section_%d_*.png", rowNum-1)))
	if err != nil || len(matches) == 0 {
		return nil
	}
	sort.Strings(matches)
	return matches
}
