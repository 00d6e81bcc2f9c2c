package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeDocx builds a minimal .docx archive: document.xml, optional
// relationships, optional media entries.
func writeDocx(t *testing.T, path, documentXML, relsXML string, media map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)

	fw, _ := w.Create("word/document.xml")
	fw.Write([]byte(documentXML))

	if relsXML != "" {
		fw, _ = w.Create("word/_rels/document.xml.rels")
		fw.Write([]byte(relsXML))
	}
	for name, data := range media {
		fw, _ = w.Create(name)
		fw.Write(data)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

const docxHeader = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<w:body>`

const docxFooter = `</w:body></w:document>`

func textPara(s string) string {
	return `<w:p><w:r><w:t>` + s + `</w:t></w:r></w:p>`
}

func imagePara(rid string) string {
	return `<w:p><w:r><w:drawing><a:blip r:embed="` + rid + `"/></w:drawing></w:r></w:p>`
}

const relsHeader = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`

func TestExtractAlternatingOrder(t *testing.T) {
	// Text and image paragraphs must come out in exactly the source order.
	dir := t.TempDir()
	scratch := t.TempDir()
	path := filepath.Join(dir, "post.docx")

	doc := docxHeader +
		textPara("first text") +
		imagePara("rId1") +
		textPara("second text") +
		imagePara("rId2") +
		textPara("third text") +
		docxFooter
	rels := relsHeader +
		`<Relationship Id="rId1" Target="media/image1.png"/>` +
		`<Relationship Id="rId2" Target="media/image2.png"/>` +
		`</Relationships>`
	media := map[string][]byte{
		"word/media/image1.png": []byte("png-one"),
		"word/media/image2.png": []byte("png-two"),
	}
	writeDocx(t, path, doc, rels, media)

	seq, err := New(Config{}).Extract(context.Background(), path, scratch)
	if err != nil {
		t.Fatal(err)
	}

	wantKinds := []BlockKind{KindText, KindImage, KindText, KindImage, KindText}
	if len(seq) != len(wantKinds) {
		t.Fatalf("got %d blocks, want %d: %+v", len(seq), len(wantKinds), seq)
	}
	for i, k := range wantKinds {
		if seq[i].Kind != k {
			t.Errorf("block %d kind = %q, want %q", i, seq[i].Kind, k)
		}
	}
	for i, want := range map[int]string{0: "first text", 2: "second text", 4: "third text"} {
		if seq[i].Text != want {
			t.Errorf("block %d text = %q, want %q", i, seq[i].Text, want)
		}
	}

	// Image blocks resolve to distinct, existing files.
	if seq[1].Path == seq[3].Path {
		t.Errorf("image blocks share a path: %q", seq[1].Path)
	}
	for _, i := range []int{1, 3} {
		if _, err := os.Stat(seq[i].Path); err != nil {
			t.Errorf("image block %d path %q: %v", i, seq[i].Path, err)
		}
	}

	// Relationship resolution must map rId1 to the first archive image.
	data, err := os.ReadFile(seq[1].Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png-one" {
		t.Errorf("first image bytes = %q, want png-one", data)
	}
}

func TestTextRunCollapsing(t *testing.T) {
	// Three consecutive text paragraphs collapse into one block.
	dir := t.TempDir()
	path := filepath.Join(dir, "text.docx")
	doc := docxHeader + textPara("a") + textPara("b") + textPara("c") + docxFooter
	writeDocx(t, path, doc, "", nil)

	seq, err := New(Config{}).Extract(context.Background(), path, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 1 {
		t.Fatalf("got %d blocks, want 1: %+v", len(seq), seq)
	}
	if seq[0].Text != "a\nb\nc" {
		t.Errorf("collapsed text = %q, want %q", seq[0].Text, "a\nb\nc")
	}
}

func TestWhitespaceOnlyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blank.docx")
	doc := docxHeader + textPara("   ") + textPara("") + textPara("  	 ") + docxFooter
	writeDocx(t, path, doc, "", nil)

	seq, err := New(Config{}).Extract(context.Background(), path, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 0 {
		t.Fatalf("got %d blocks, want 0: %+v", len(seq), seq)
	}
}

func TestBoundaryImages(t *testing.T) {
	// Leading and trailing image paragraphs produce boundary image blocks
	// with no adjacent text.
	dir := t.TempDir()
	path := filepath.Join(dir, "bounds.docx")
	doc := docxHeader +
		imagePara("rId1") +
		textPara("middle") +
		imagePara("rId2") +
		docxFooter
	rels := relsHeader +
		`<Relationship Id="rId1" Target="media/a.png"/>` +
		`<Relationship Id="rId2" Target="media/b.png"/>` +
		`</Relationships>`
	media := map[string][]byte{
		"word/media/a.png": []byte("a"),
		"word/media/b.png": []byte("b"),
	}
	writeDocx(t, path, doc, rels, media)

	seq, err := New(Config{}).Extract(context.Background(), path, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	wantKinds := []BlockKind{KindImage, KindText, KindImage}
	if len(seq) != 3 {
		t.Fatalf("got %d blocks, want 3: %+v", len(seq), seq)
	}
	for i, k := range wantKinds {
		if seq[i].Kind != k {
			t.Errorf("block %d kind = %q, want %q", i, seq[i].Kind, k)
		}
	}
}

func TestPositionalFallback(t *testing.T) {
	// An image paragraph whose relationship cannot be resolved consumes
	// media in archive order instead of being dropped.
	dir := t.TempDir()
	path := filepath.Join(dir, "norels.docx")
	doc := docxHeader + textPara("body") + imagePara("rId99") + docxFooter
	media := map[string][]byte{
		"word/media/image1.png": []byte("fallback"),
	}
	writeDocx(t, path, doc, "", media)

	seq, err := New(Config{}).Extract(context.Background(), path, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 2 || seq[1].Kind != KindImage {
		t.Fatalf("expected text+image, got %+v", seq)
	}
	data, _ := os.ReadFile(seq[1].Path)
	if string(data) != "fallback" {
		t.Errorf("fallback image bytes = %q", data)
	}
}

func TestTrailingParagraphText(t *testing.T) {
	// Text inside an image paragraph is buffered into the next text run,
	// after the image block.
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.docx")
	doc := docxHeader +
		`<w:p><w:r><w:drawing><a:blip r:embed="rId1"/></w:drawing></w:r><w:r><w:t>caption</w:t></w:r></w:p>` +
		textPara("after") +
		docxFooter
	rels := relsHeader + `<Relationship Id="rId1" Target="media/x.png"/></Relationships>`
	writeDocx(t, path, doc, rels, map[string][]byte{"word/media/x.png": []byte("x")})

	seq, err := New(Config{}).Extract(context.Background(), path, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(seq), seq)
	}
	if seq[0].Kind != KindImage {
		t.Errorf("first block kind = %q, want image", seq[0].Kind)
	}
	if seq[1].Text != "caption\nafter" {
		t.Errorf("trailing text = %q, want %q", seq[1].Text, "caption\nafter")
	}
}

func TestXMLDepthBomb(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bomb.docx")

	var b strings.Builder
	b.WriteString(docxHeader)
	for i := 0; i < 300; i++ {
		b.WriteString("<w:p>")
	}
	b.WriteString("<w:r><w:t>deep</w:t></w:r>")
	for i := 0; i < 300; i++ {
		b.WriteString("</w:p>")
	}
	b.WriteString(docxFooter)
	writeDocx(t, path, b.String(), "", nil)

	_, err := New(Config{}).Extract(context.Background(), path, t.TempDir())
	if err == nil {
		t.Fatal("expected error for deeply nested XML")
	}
	if !strings.Contains(err.Error(), "nesting depth") {
		t.Errorf("expected nesting depth error, got: %v", err)
	}
}

func TestMissingDocumentXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, _ := os.Create(path)
	zip.NewWriter(f).Close()
	f.Close()

	_, err := New(Config{}).Extract(context.Background(), path, t.TempDir())
	if err == nil {
		t.Fatal("expected error for archive without document.xml")
	}
}

func TestSequenceAccessors(t *testing.T) {
	seq := Sequence{
		TextBlock("intro"),
		ImageBlock("/scratch/img_000.png"),
		TextBlock("outro"),
	}

	if got := seq.JoinedText(); got != "intro\noutro" {
		t.Errorf("JoinedText = %q, want %q", got, "intro\noutro")
	}
	imgs := seq.Images()
	if len(imgs) != 1 || imgs[0] != "/scratch/img_000.png" {
		t.Errorf("Images = %v", imgs)
	}
}
