// Command ncparse parses EDGAR .nc submission files from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/ncparse/internal/config"
	"github.com/dgallion1/ncparse/internal/filing"
	"github.com/dgallion1/ncparse/internal/grammar"
	"github.com/dgallion1/ncparse/internal/pipeline"
	"github.com/dgallion1/ncparse/internal/render"
	"github.com/dgallion1/ncparse/internal/report"
)

// Globals are flags shared by every command.
type Globals struct {
	GrammarFile string `name:"grammar" help:"YAML tag table merged over the built-in one" type:"existingfile"`
	StrictDates bool   `help:"Treat every unreadable date as fatal"`
}

// CLI defines the command-line interface for ncparse.
var CLI struct {
	Globals

	Describe DescribeCmd `cmd:"" help:"Print a summary report of a filing"`
	JSON     JSONCmd     `cmd:"" name:"json" help:"Print the parsed filing as JSON"`
	Extract  ExtractCmd  `cmd:"" help:"Write every document body to a directory"`
	Batch    BatchCmd    `cmd:"" help:"Parse every filing under a directory"`
	Grammar  GrammarCmd  `cmd:"" help:"Print the effective tag table as YAML"`
}

func (g *Globals) table() (*grammar.Table, error) {
	if g.GrammarFile == "" {
		return grammar.Default(), nil
	}
	override, err := grammar.LoadFile(g.GrammarFile)
	if err != nil {
		return nil, err
	}
	return grammar.Default().With(override), nil
}

func (g *Globals) options() (filing.Options, error) {
	t, err := g.table()
	if err != nil {
		return filing.Options{}, err
	}
	return filing.Options{Grammar: t, StrictDates: g.StrictDates}, nil
}

func (g *Globals) parse(path string) (*filing.Filing, error) {
	opts, err := g.options()
	if err != nil {
		return nil, err
	}
	data, err := pipeline.ReadInput(path)
	if err != nil {
		return nil, err
	}
	f, err := filing.ParseWith(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// DescribeCmd prints the report for one filing.
type DescribeCmd struct {
	File string `arg:"" help:"Filing to read (.nc, optionally .xz compressed)" type:"existingfile"`
	HTML bool   `name:"html" help:"Render the report as HTML"`
}

func (c *DescribeCmd) Run(g *Globals, out io.Writer) error {
	f, err := g.parse(c.File)
	if err != nil {
		return err
	}
	if !c.HTML {
		_, err = io.WriteString(out, report.Markdown(f))
		return err
	}
	html, err := report.HTML(f)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, html)
	return err
}

// JSONCmd prints the filing model.
type JSONCmd struct {
	File     string `arg:"" help:"Filing to read" type:"existingfile"`
	Payloads bool   `help:"Include document bodies"`
	Indent   bool   `short:"i" help:"Indent the output"`
}

func (c *JSONCmd) Run(g *Globals, out io.Writer) error {
	f, err := g.parse(c.File)
	if err != nil {
		return err
	}
	if !c.Payloads {
		f = f.WithoutBodies()
	}
	enc := json.NewEncoder(out)
	if c.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(f)
}

// ExtractCmd writes each document body, decoded, to a directory.
type ExtractCmd struct {
	File string `arg:"" help:"Filing to read" type:"existingfile"`
	Out  string `required:"" short:"o" help:"Output directory" type:"path"`
	Text bool   `help:"Also write the rendered plain text of each document as NAME.txt"`
	PDF  bool   `name:"pdftotext" help:"Fall back to pdftotext for PDFs the Go reader cannot open"`
}

func (c *ExtractCmd) Run(g *Globals, out io.Writer) error {
	f, err := g.parse(c.File)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return err
	}

	used := make(map[string]bool)
	for i, d := range f.Documents {
		name := documentName(i, d, used)
		path := filepath.Join(c.Out, name)
		body := d.Payload.Bytes()
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\t%d bytes\n", path, d.Payload.Kind, len(body))

		if !c.Text {
			continue
		}
		tree, err := render.Document(d, render.Options{FallbackPdftotext: c.PDF})
		if errors.Is(err, render.ErrUnsupported) {
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "%s\trender failed: %v\n", path, err)
			continue
		}
		textPath := path + ".txt"
		if err := os.WriteFile(textPath, []byte(tree.PlainText()), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\ttext\n", textPath)
	}
	return nil
}

// documentName picks a unique, path-free file name for document i.
func documentName(i int, d filing.Document, used map[string]bool) string {
	name := filepath.Base(d.Filename)
	if d.Payload.Name != "" && (name == "." || name == "/") {
		name = filepath.Base(d.Payload.Name)
	}
	if name == "." || name == "/" || name == "" {
		name = fmt.Sprintf("document-%d", i+1)
	}
	if used[name] {
		name = fmt.Sprintf("%d-%s", i+1, name)
	}
	used[name] = true
	return name
}

// BatchCmd parses every filing under a directory with a worker pool.
type BatchCmd struct {
	Dir     string `arg:"" help:"Directory of filings" type:"existingdir"`
	Workers int    `default:"4" help:"Parallel workers"`
	JSON    bool   `name:"json" help:"Print one JSON job snapshot per line"`
}

func (c *BatchCmd) Run(g *Globals, out io.Writer) error {
	opts, err := g.options()
	if err != nil {
		return err
	}

	var paths []string
	err = filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isFilingName(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no filings found under %s", c.Dir)
	}

	cfg := config.Config{
		WorkerCount:  max(c.Workers, 1),
		MaxQueueSize: len(paths),
		JobTTL:       time.Hour,
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	orch := pipeline.NewOrchestrator(cfg, opts, log)
	orch.Start(context.Background())
	defer orch.Stop()

	var jobs []*pipeline.Job
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		job := pipeline.NewJob(path, data)
		if err := orch.Submit(job); err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	failed := 0
	enc := json.NewEncoder(out)
	for _, job := range jobs {
		<-job.Done()
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			failed++
		}
		if c.JSON {
			if err := enc.Encode(snap); err != nil {
				return err
			}
			continue
		}
		line := fmt.Sprintf("%s\t%s", snap.Filename, snap.Status)
		if s := snap.Summary; s != nil {
			line += fmt.Sprintf("\t%s\t%s\t%d documents\t%d anomalies",
				s.FormType, s.AccessionNumber, snap.Progress.TotalDocuments, snap.Progress.Anomalies)
		}
		if len(snap.Progress.Errors) > 0 {
			line += "\t" + strings.Join(snap.Progress.Errors, "; ")
		}
		fmt.Fprintln(out, line)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d filings failed", failed, len(jobs))
	}
	return nil
}

func isFilingName(name string) bool {
	name = strings.ToLower(pipeline.InputName(name))
	return strings.HasSuffix(name, ".nc") || strings.HasSuffix(name, ".txt")
}

// GrammarCmd prints the effective tag table.
type GrammarCmd struct{}

func (c *GrammarCmd) Run(g *Globals, out io.Writer) error {
	t, err := g.table()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ncparse"),
		kong.Description("Parse EDGAR .nc submission files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
