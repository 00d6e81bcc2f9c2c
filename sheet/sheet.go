// Package sheet acquires the batch's work list: rows of intended posts
// from an .xlsx workbook, plus the lookup rules that associate each row
// with its structured document or legacy flat content.
//
// Columns are addressed by header name, order-independent. Records are
// read once at batch start and never mutated; outcomes go to the run
// ledger, not back into the workbook.
package sheet

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrNoWorkbook is returned when no blog*.xlsx workbook exists in the
// search directory.
var ErrNoWorkbook = errors.New("sheet: no blog workbook found")

// ScheduleLayout is the scheduled_at column format.
const ScheduleLayout = "2006-01-02 15:04"

// Record is one row of intended work. Title is required; everything else
// is optional. Body and ImagePaths are the legacy flat fallback used when
// no structured document is associated with the row.
type Record struct {
	Row         int // spreadsheet row number, 1-based
	Title       string
	Body        string
	Category    string
	ScheduledAt *time.Time
	ImagePaths  []string
}

// headerAliases maps normalized header cells to canonical column names.
// The workbook generator has shipped both English and Korean headers.
var headerAliases = map[string]string{
	"title":        "title",
	"제목":           "title",
	"body":         "body",
	"content":      "body",
	"본문":           "body",
	"category":     "category",
	"카테고리":         "category",
	"scheduled_at": "scheduled_at",
	"schedule":     "scheduled_at",
	"예약시간":         "scheduled_at",
	"image_paths":  "image_paths",
	"images":       "image_paths",
	"이미지":          "image_paths",
}

// Load reads the workbook's active sheet into records. Rows without a
// title are skipped. A malformed scheduled_at is a warning, not a fatal
// error: the post publishes immediately.
func Load(path string, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("sheet: read sheet %q: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := mapHeader(rows[0])
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("sheet: workbook %s has no title column", path)
	}

	var records []Record
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		title := get("title")
		if title == "" {
			continue
		}

		rec := Record{
			Row:      rowNum,
			Title:    title,
			Body:     get("body"),
			Category: get("category"),
		}

		if raw := get("scheduled_at"); raw != "" {
			at, err := time.ParseInLocation(ScheduleLayout, raw, time.Local)
			if err != nil {
				logger.Warn("unparseable schedule, publishing immediately",
					"row", rowNum, "value", raw, "error", err)
			} else {
				rec.ScheduledAt = &at
			}
		}

		if raw := get("image_paths"); raw != "" {
			rec.ImagePaths = splitImagePaths(raw)
		}

		records = append(records, rec)
	}
	return records, nil
}

// mapHeader returns canonical column name → index.
func mapHeader(header []string) map[string]int {
	cols := make(map[string]int)
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canonical, ok := headerAliases[key]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	return cols
}

// splitImagePaths parses the comma-separated legacy column, keeping only
// paths that exist on disk.
func splitImagePaths(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// FindWorkbook returns the newest blog*.xlsx in dir.
func FindWorkbook(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "blog*.xlsx"))
	if err != nil {
		return "", fmt.Errorf("sheet: glob workbooks: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoWorkbook, dir)
	}

	newest := matches[0]
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if info.ModTime().After(newestMod) {
			newest = m
			newestMod = info.ModTime()
		}
	}
	return newest, nil
}
