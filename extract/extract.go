// Package extract turns a .docx word-processing document into an ordered
// sequence of content blocks (text runs and embedded images), preserving
// the original interleaving so the sequence can be replayed into a
// rich-text editor.
//
// Parsing is pure Go (archive/zip + encoding/xml), CGO_ENABLED=0
// compatible. Embedded images are materialized into a caller-owned scratch
// directory; the scratch directory belongs to one upload run and must not
// be reused across runs.
//
// Usage:
//
//	ex := extract.New(extract.Config{})
//	seq, err := ex.Extract(ctx, "/path/post_001.docx", scratchDir)
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Config configures the extractor.
type Config struct {
	// MaxFileSize is the maximum document size to process (default: 100 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// Logger for debug/warn messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extractor parses documents into block sequences.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor with the given configuration.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg, logger: cfg.Logger}
}

// Extract parses the document at path and returns its block sequence.
// Images are written into scratchDir with sanitized sequential names.
func (e *Extractor) Extract(ctx context.Context, path, scratchDir string) (Sequence, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("extract: stat %s: %w", path, err)
	}
	if info.Size() > e.cfg.MaxFileSize {
		return nil, fmt.Errorf("extract: file too large: %d bytes (max %d)", info.Size(), e.cfg.MaxFileSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("extracting document", "path", path, "scratch", scratchDir)
	return e.extractDocx(ctx, path, scratchDir)
}
