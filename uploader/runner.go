// Package uploader runs the batch: acquire post records from the
// workbook, extract each record's document into a block sequence, drive
// one editor session through login, replay, and publish, and record
// per-post outcomes in the run ledger.
//
// Failure scoping follows three levels. Batch-level failures (workbook
// unreadable, login unrecoverable) abort the run. Post-level failures
// (composer unreachable, title field missing, publish not confirmed)
// abort that post only. Block-level failures are handled inside the
// replayer and surface as counts on an otherwise successful post.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dhkang/blogpress/editor"
	"github.com/dhkang/blogpress/extract"
	"github.com/dhkang/blogpress/replay"
	"github.com/dhkang/blogpress/runlog"
	"github.com/dhkang/blogpress/sheet"
)

// session is the editor capability surface the runner drives. Satisfied
// by *editor.Session; faked in tests.
type session interface {
	Start(ctx context.Context) error
	Authenticate(ctx context.Context, creds editor.Credentials) error
	WaitForManualLogin(ctx context.Context, timeout time.Duration) error
	OpenComposer(ctx context.Context) error
	SetTitle(ctx context.Context, title string) error
	InsertText(ctx context.Context, text string) error
	InsertImage(ctx context.Context, path string) error
	ExitFrame()
	Finalize(ctx context.Context, category string, at *time.Time) error
	Close()
}

// post is one unit of work: a record joined with its content sequence.
type post struct {
	rec sheet.Record
	seq extract.Sequence
}

// Runner executes one batch.
type Runner struct {
	cfg       Config
	log       *slog.Logger
	ledger    *runlog.Ledger
	extractor *extract.Extractor
	replayer  *replay.Replayer

	// newSession is replaceable in tests.
	newSession func() session
}

// NewRunner creates a Runner. The ledger may be nil for dry runs.
func NewRunner(cfg Config, logger *slog.Logger, ledger *runlog.Ledger) *Runner {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	ecfg := cfg.Editor
	ecfg.Logger = logger
	xcfg := cfg.Extract
	xcfg.Logger = logger

	return &Runner{
		cfg:       cfg,
		log:       logger,
		ledger:    ledger,
		extractor: extract.New(xcfg),
		replayer:  replay.New(replay.Config{InterBlock: ecfg.Pacing.InterBlock, Logger: logger}),
		newSession: func() session {
			return editor.New(ecfg)
		},
	}
}

// Run executes the batch and returns the run ID. Per-post failures do not
// fail the run; they are recorded and the batch continues.
func (r *Runner) Run(ctx context.Context) (string, error) {
	runID := "run_" + time.Now().Format("20060102T150405")

	posts, scratch, err := r.acquire(ctx, runID)
	if err != nil {
		return runID, err
	}
	defer os.RemoveAll(scratch)

	if len(posts) == 0 {
		r.log.Info("no posts to upload", "run", runID)
		return runID, nil
	}
	r.log.Info("batch acquired", "run", runID, "posts", len(posts))

	sess := r.newSession()
	if err := sess.Start(ctx); err != nil {
		return runID, fmt.Errorf("uploader: start session: %w", err)
	}
	defer sess.Close()

	if err := r.login(ctx, sess); err != nil {
		return runID, err
	}

	for _, p := range posts {
		res := r.uploadPost(ctx, sess, p)
		res.RunID = runID
		r.record(ctx, res)
		if err := ctx.Err(); err != nil {
			return runID, err
		}
	}

	r.summarize(ctx, runID)
	return runID, nil
}

// acquire loads records and resolves each into a block sequence. Rows
// that cannot be resolved are recorded as failed and skipped; an
// unreadable workbook is fatal to the whole run.
func (r *Runner) acquire(ctx context.Context, runID string) ([]post, string, error) {
	workbook := r.cfg.Workbook
	if workbook == "" {
		var err error
		workbook, err = sheet.FindWorkbook(r.cfg.WorkDir)
		if err != nil {
			return nil, "", err
		}
	}
	r.log.Info("using workbook", "path", workbook)

	records, err := sheet.Load(workbook, r.log)
	if err != nil {
		return nil, "", err
	}

	// Native clipboard and file-input automation cannot address
	// non-ASCII paths reliably; normalize asset names up front.
	for _, dir := range []string{r.cfg.OutputDir, r.cfg.ImagesDir} {
		if renamed, err := extract.EnsureASCIINames(dir); err != nil {
			r.log.Warn("filename normalization incomplete", "dir", dir, "error", err)
		} else if len(renamed) > 0 {
			r.log.Info("normalized asset filenames", "dir", dir, "count", len(renamed))
		}
	}

	scratch, err := os.MkdirTemp("", "blogpress-")
	if err != nil {
		return nil, "", fmt.Errorf("uploader: scratch dir: %w", err)
	}

	var posts []post
	for _, rec := range records {
		seq, err := r.resolveSequence(ctx, rec, scratch)
		if err != nil {
			r.log.Warn("row acquisition failed, skipping", "row", rec.Row, "error", err)
			r.record(ctx, runlog.Result{
				RunID:  runID,
				Row:    rec.Row,
				Title:  rec.Title,
				Status: runlog.StatusFailed,
				Reason: err.Error(),
			})
			continue
		}
		posts = append(posts, post{rec: rec, seq: seq})
	}
	return posts, scratch, nil
}

// resolveSequence produces the block sequence for a record: structured
// document when one is associated, otherwise the legacy flat body plus
// image list synthesized in document order (text first, then images).
// Each row extracts into its own scratch subdirectory; materialized image
// names are sequential per document, so a shared directory would let a
// later row overwrite an earlier row's images before upload.
func (r *Runner) resolveSequence(ctx context.Context, rec sheet.Record, scratch string) (extract.Sequence, error) {
	if doc := sheet.FindDoc(r.cfg.OutputDir, rec.Title, rec.Row); doc != "" {
		r.log.Info("structured document found", "row", rec.Row, "doc", doc)
		seq, err := r.extractor.Extract(ctx, doc, filepath.Join(scratch, fmt.Sprintf("row_%d", rec.Row)))
		if err != nil {
			return nil, err
		}
		if len(seq) == 0 {
			return nil, fmt.Errorf("uploader: document %s has no content", doc)
		}
		return seq, nil
	}

	var seq extract.Sequence
	if rec.Body != "" {
		seq = append(seq, extract.TextBlock(rec.Body))
	}
	images := rec.ImagePaths
	if len(images) == 0 {
		images = sheet.SectionImages(r.cfg.ImagesDir, rec.Row)
	}
	for _, img := range images {
		seq = append(seq, extract.ImageBlock(img))
	}
	if len(seq) == 0 {
		return nil, errors.New("uploader: row has neither document nor body")
	}
	return seq, nil
}

// login authenticates the session, degrading to an interactive pause when
// the automated submit does not leave the login surface.
func (r *Runner) login(ctx context.Context, sess session) error {
	creds, err := r.cfg.credentials()
	if err != nil {
		return err
	}

	err = sess.Authenticate(ctx, creds)
	if err == nil {
		return nil
	}
	if !errors.Is(err, editor.ErrAuthentication) {
		return fmt.Errorf("uploader: login: %w", err)
	}

	r.log.Warn("automated login blocked, complete it in the browser window")
	if err := sess.WaitForManualLogin(ctx, r.cfg.ManualLoginWait); err != nil {
		return fmt.Errorf("uploader: login: %w", err)
	}
	return nil
}

// uploadPost writes one post through the session. The frame is always
// exited afterwards, on success and failure alike.
func (r *Runner) uploadPost(ctx context.Context, sess session, p post) runlog.Result {
	res := runlog.Result{
		Row:         p.rec.Row,
		Title:       p.rec.Title,
		BlocksTotal: len(p.seq),
	}
	r.log.Info("uploading post", "row", p.rec.Row, "title", p.rec.Title,
		"blocks", len(p.seq), "category", p.rec.Category,
		"scheduled", p.rec.ScheduledAt != nil)

	defer sess.ExitFrame()

	if err := sess.OpenComposer(ctx); err != nil {
		res.Status = runlog.StatusFailed
		res.Reason = fmt.Sprintf("open composer: %v", err)
		return res
	}
	if err := sess.SetTitle(ctx, p.rec.Title); err != nil {
		res.Status = runlog.StatusFailed
		res.Reason = fmt.Sprintf("set title: %v", err)
		return res
	}

	outcomes := r.replayer.Replay(ctx, sess, p.seq)
	res.BlocksFailed = len(outcomes.Failed())

	if err := sess.Finalize(ctx, p.rec.Category, p.rec.ScheduledAt); err != nil {
		res.Status = runlog.StatusFailed
		res.Reason = fmt.Sprintf("finalize: %v", err)
		return res
	}

	res.Status = runlog.StatusSuccess
	r.log.Info("post uploaded", "row", p.rec.Row,
		"blocks_failed", res.BlocksFailed)
	return res
}

func (r *Runner) record(ctx context.Context, res runlog.Result) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.Record(ctx, res); err != nil {
		// The ledger must never take the batch down with it.
		r.log.Error("ledger write failed", "row", res.Row, "error", err)
	}
}

func (r *Runner) summarize(ctx context.Context, runID string) {
	if r.ledger == nil {
		return
	}
	results, err := r.ledger.Results(ctx, runID)
	if err != nil {
		r.log.Warn("run summary unavailable", "error", err)
		return
	}
	failed := 0
	for _, res := range results {
		if res.Status == runlog.StatusFailed {
			failed++
		}
	}
	r.log.Info("batch finished", "run", runID,
		"posts", len(results), "failed", failed)
}
