package extract

// BlockKind identifies the content carried by a Block.
type BlockKind string

const (
	KindText  BlockKind = "text"
	KindImage BlockKind = "image"
)

// Block is one unit of the ordered upload sequence: either a run of plain
// text or a materialized image file.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text,omitempty"` // KindText: trimmed paragraphs joined by newline
	Path string    `json:"path,omitempty"` // KindImage: file in the run's scratch directory
}

// TextBlock returns a text block.
func TextBlock(s string) Block { return Block{Kind: KindText, Text: s} }

// ImageBlock returns an image block.
func ImageBlock(path string) Block { return Block{Kind: KindImage, Path: path} }

// Sequence is an ordered list of blocks mirroring the source document's
// paragraph order. Adjacent text runs are always collapsed into a single
// block; image blocks are singleton.
type Sequence []Block

// Images returns the image paths in sequence order.
func (s Sequence) Images() []string {
	var out []string
	for _, b := range s {
		if b.Kind == KindImage {
			out = append(out, b.Path)
		}
	}
	return out
}

// JoinedText concatenates all text blocks with newlines, in order.
func (s Sequence) JoinedText() string {
	var out string
	for _, b := range s {
		if b.Kind != KindText {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += b.Text
	}
	return out
}
