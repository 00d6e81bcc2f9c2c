package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// maxXMLDepth bounds element nesting while streaming document.xml.
// Real Word output stays far below this; exceeding it means a crafted file.
const maxXMLDepth = 256

// mediaStore holds the images materialized from word/media, addressable
// both by relationship ID and by archive order for the positional fallback.
type mediaStore struct {
	byRID   map[string]string // rId → materialized path
	names   map[string]string // original base name → materialized path
	ordered []string          // archive order
	next    int               // cursor for positional fallback
}

// resolve returns the materialized path for the first resolvable rID, or
// falls back to consuming media in archive order. The fallback can
// misattribute images if the document was edited out of order; callers log
// it, they do not fail on it.
func (m *mediaStore) resolve(rids []string) (string, bool, bool) {
	for _, rid := range rids {
		if p, ok := m.byRID[rid]; ok {
			return p, true, false
		}
	}
	if m.next < len(m.ordered) {
		p := m.ordered[m.next]
		m.next++
		return p, true, true
	}
	return "", false, false
}

func (e *Extractor) extractDocx(ctx context.Context, docPath, scratchDir string) (Sequence, error) {
	r, err := zip.OpenReader(docPath)
	if err != nil {
		return nil, fmt.Errorf("extract: open zip: %w", err)
	}
	defer r.Close()

	media, err := e.materializeMedia(&r.Reader, scratchDir)
	if err != nil {
		return nil, err
	}
	e.loadRelationships(&r.Reader, media)

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("extract: word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("extract: open document.xml: %w", err)
	}
	defer rc.Close()

	return e.walkParagraphs(ctx, rc, media)
}

// walkParagraphs streams document.xml and builds the block sequence.
// A maximal run of non-image paragraphs collapses into one text block.
// A paragraph carrying a drawing or pict emits an image block; its own
// text (rare) is buffered into the following text run.
func (e *Extractor) walkParagraphs(ctx context.Context, r io.Reader, media *mediaStore) (Sequence, error) {
	dec := xml.NewDecoder(r)

	var (
		seq         Sequence
		textBuf     []string
		inParagraph bool
		paraText    strings.Builder
		paraRIDs    []string
		hasImage    bool
		depth       int
	)

	flushText := func() {
		if len(textBuf) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(textBuf, "\n"))
		textBuf = textBuf[:0]
		if joined != "" {
			seq = append(seq, TextBlock(joined))
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("extract: parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return nil, fmt.Errorf("extract: XML nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "p":
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				inParagraph = true
				paraText.Reset()
				paraRIDs = paraRIDs[:0]
				hasImage = false
			case "drawing", "pict":
				if inParagraph {
					hasImage = true
				}
			case "blip", "imagedata":
				// a:blip carries r:embed, legacy v:imagedata carries r:id.
				for _, attr := range t.Attr {
					if attr.Name.Local == "embed" || attr.Name.Local == "id" {
						paraRIDs = append(paraRIDs, attr.Value)
					}
				}
			}

		case xml.CharData:
			if inParagraph {
				paraText.Write(t)
			}

		case xml.EndElement:
			depth--
			if t.Name.Local != "p" || !inParagraph {
				continue
			}
			inParagraph = false
			text := strings.TrimSpace(paraText.String())

			if !hasImage {
				if text != "" {
					textBuf = append(textBuf, text)
				}
				continue
			}

			flushText()
			imgPath, ok, positional := media.resolve(paraRIDs)
			if !ok {
				e.logger.Warn("image paragraph with no resolvable media", "rids", paraRIDs)
			} else {
				if positional {
					e.logger.Warn("relationship lookup failed, using archive-order media", "path", imgPath)
				}
				seq = append(seq, ImageBlock(imgPath))
			}
			if text != "" {
				textBuf = append(textBuf, text)
			}
		}
	}

	flushText()
	return seq, nil
}

// materializeMedia copies word/media entries into scratchDir under
// sanitized sequential names, preserving archive order. Unreadable
// entries are skipped with a warning, not fatal.
func (e *Extractor) materializeMedia(zr *zip.Reader, scratchDir string) (*mediaStore, error) {
	store := &mediaStore{byRID: make(map[string]string)}

	var mediaFiles []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/media/") && !strings.HasSuffix(f.Name, "/") {
			mediaFiles = append(mediaFiles, f)
		}
	}
	if len(mediaFiles) == 0 {
		return store, nil
	}
	sort.Slice(mediaFiles, func(i, j int) bool { return mediaFiles[i].Name < mediaFiles[j].Name })

	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("extract: scratch dir: %w", err)
	}

	// baseName → materialized path, for relationship resolution.
	byName := make(map[string]string)

	for i, f := range mediaFiles {
		ext := path.Ext(f.Name)
		name := Sanitize(fmt.Sprintf("img_%03d%s", i, ext), DefaultMaxNameLen)
		dst := filepath.Join(scratchDir, name)

		if err := copyZipEntry(f, dst); err != nil {
			e.logger.Warn("skipping unreadable media entry", "entry", f.Name, "error", err)
			continue
		}
		store.ordered = append(store.ordered, dst)
		byName[path.Base(f.Name)] = dst
	}

	store.names = byName
	return store, nil
}

// loadRelationships maps relationship IDs from document.xml.rels to the
// materialized media paths. Missing or malformed rels are not fatal: the
// walker falls back to archive order.
func (e *Extractor) loadRelationships(zr *zip.Reader, store *mediaStore) {
	var relFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/_rels/document.xml.rels" {
			relFile = f
			break
		}
	}
	if relFile == nil {
		return
	}

	rc, err := relFile.Open()
	if err != nil {
		e.logger.Warn("cannot open document.xml.rels", "error", err)
		return
	}
	defer rc.Close()

	var rels struct {
		Relationships []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		e.logger.Warn("cannot parse document.xml.rels", "error", err)
		return
	}

	for _, rel := range rels.Relationships {
		if !strings.Contains(rel.Target, "media/") {
			continue
		}
		if p, ok := store.names[path.Base(rel.Target)]; ok {
			store.byRID[rel.ID] = p
		}
	}
}

func copyZipEntry(f *zip.File, dst string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
