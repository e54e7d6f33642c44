package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/ncparse/internal/filing"
	"github.com/dgallion1/ncparse/internal/render"
)

// Worker processes a single filing job.
type Worker struct {
	opts       filing.Options
	renderOpts render.Options
	log        *slog.Logger
}

func NewWorker(opts filing.Options, renderOpts render.Options, log *slog.Logger) *Worker {
	return &Worker{
		opts:       opts,
		renderOpts: renderOpts,
		log:        log,
	}
}

// Process parses the job's file, then digests and renders every document.
func (w *Worker) Process(ctx context.Context, job *Job) {
	defer job.finish()
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	data, err := DecodeInput(job.FileData())
	if err != nil {
		log.Error("decode failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "decoding")
		return
	}
	job.SetContentHash(ContentHashHex(data))

	f, err := filing.ParseWith(data, w.opts)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetFiling(f)
	job.SetFileData(nil)
	log.Info("parsed filing", "documents", len(f.Documents), "anomalies", len(f.Anomalies))

	// Phase 2: Render documents in source order.
	job.SetStatus(StatusRendering, "rendering")
	hadErrors := false
	for i, d := range f.Documents {
		if err := ctx.Err(); err != nil {
			job.AddError(fmt.Sprintf("document %d: %s", i, err))
			job.SetStatus(StatusFailed, "rendering")
			return
		}
		res := w.document(i, d)
		if res.RenderError != "" {
			log.Warn("render failed", "document", i, "error", res.RenderError)
			job.AddError(fmt.Sprintf("document %d: %s", i, res.RenderError))
			hadErrors = true
		}
		job.AddDocument(res)
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("filing processed", "status", job.Snapshot().Status)
}

func (w *Worker) document(i int, d filing.Document) DocumentResult {
	body := d.Payload.Bytes()
	res := DocumentResult{
		Index:       i,
		Type:        d.Type,
		Filename:    d.Filename,
		Description: d.Description,
		Kind:        d.Payload.Kind,
		Encoding:    d.Payload.Encoding,
		Size:        len(body),
		SHA256:      ContentHashHex(body),
		BLAKE3:      Blake3Hex(body),
	}

	tree, err := render.Document(d, w.renderOpts)
	if err != nil {
		// Images and other opaque attachments have no text form.
		if !errors.Is(err, render.ErrUnsupported) {
			res.RenderError = err.Error()
		}
		return res
	}
	stats, err := render.Measure(tree)
	if err != nil {
		res.RenderError = err.Error()
		return res
	}
	res.Stats = &stats
	res.text = tree.PlainText()
	return res
}
