package sheet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook builds a minimal xlsx: header row then data rows.
func writeWorkbook(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheetName, ref, cell); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "pic.png")
	os.WriteFile(img, []byte("png"), 0644)

	path := filepath.Join(dir, "blog20260829.xlsx")
	writeWorkbook(t, path, [][]string{
		{"title", "body", "category", "scheduled_at", "image_paths"},
		{"Test Post", "hello world", "Food", "2025-03-01 09:15", img + ", /missing/x.png"},
		{"", "skipped: no title", "", "", ""},
		{"Second", "", "", "not a date", ""},
	})

	records, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(records), records)
	}

	r := records[0]
	if r.Row != 2 || r.Title != "Test Post" || r.Body != "hello world" || r.Category != "Food" {
		t.Errorf("record 0 = %+v", r)
	}
	if r.ScheduledAt == nil {
		t.Fatal("scheduled_at not parsed")
	}
	want := time.Date(2025, 3, 1, 9, 15, 0, 0, time.Local)
	if !r.ScheduledAt.Equal(want) {
		t.Errorf("scheduled_at = %v, want %v", r.ScheduledAt, want)
	}
	if len(r.ImagePaths) != 1 || r.ImagePaths[0] != img {
		t.Errorf("image paths = %v, want only the existing file", r.ImagePaths)
	}

	// Malformed schedule degrades to immediate publish.
	if records[1].ScheduledAt != nil {
		t.Errorf("malformed schedule should be nil, got %v", records[1].ScheduledAt)
	}
}

func TestLoadKoreanHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.xlsx")
	writeWorkbook(t, path, [][]string{
		{"제목", "본문", "카테고리"},
		{"포스트", "내용", "맛집"},
	})

	records, err := Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Title != "포스트" || records[0].Body != "내용" || records[0].Category != "맛집" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestLoadNoTitleColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.xlsx")
	writeWorkbook(t, path, [][]string{
		{"nothing", "useful"},
		{"a", "b"},
	})

	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected error for workbook without a title column")
	}
}

func TestFindWorkbookNewest(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "blog20250101.xlsx")
	newer := filepath.Join(dir, "blog20260829.xlsx")
	os.WriteFile(older, []byte("x"), 0644)
	os.WriteFile(newer, []byte("x"), 0644)

	old := time.Now().Add(-48 * time.Hour)
	os.Chtimes(older, old, old)

	got, err := FindWorkbook(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != newer {
		t.Errorf("FindWorkbook = %q, want %q", got, newer)
	}
}

func TestFindWorkbookMissing(t *testing.T) {
	_, err := FindWorkbook(t.TempDir())
	if err == nil {
		t.Fatal("expected ErrNoWorkbook")
	}
}

func TestFindDoc(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "post_001.docx"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "3_My Trip to Busan.docx"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "test_fixture.docx"), []byte("x"), 0644)

	// Exact numeric convention: row 2 → post_001.docx.
	if got := FindDoc(dir, "whatever", 2); filepath.Base(got) != "post_001.docx" {
		t.Errorf("exact lookup = %q", got)
	}

	// Fuzzy title match, leading index stripped.
	if got := FindDoc(dir, "My Trip to Busan", 9); filepath.Base(got) != "3_My Trip to Busan.docx" {
		t.Errorf("fuzzy lookup = %q", got)
	}

	// test_ prefixed files never match.
	if got := FindDoc(dir, "fixture", 9); got != "" {
		t.Errorf("test_ file matched: %q", got)
	}

	// No association → legacy flat content.
	if got := FindDoc(dir, "unrelated", 9); got != "" {
		t.Errorf("unexpected match: %q", got)
	}
}

func TestSectionImages(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "section_1_b.png"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "section_1_a.png"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "section_2_a.png"), []byte("x"), 0644)

	got := SectionImages(dir, 2)
	if len(got) != 2 {
		t.Fatalf("got %d images, want 2: %v", len(got), got)
	}
	if filepath.Base(got[0]) != "section_1_a.png" || filepath.Base(got[1]) != "section_1_b.png" {
		t.Errorf("images not sorted: %v", got)
	}
}
