package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/developer-hhiotsystems/termbase/internal/logger"
	"github.com/developer-hhiotsystems/termbase/internal/model"
)

// Processor defines the interface for processing one document
type Processor interface {
	ProcessDocument(ctx context.Context, doc model.Document) (model.DocumentSummary, error)
}

// DocumentSource locates one document on disk with its provenance.
type DocumentSource struct {
	Path     string
	Language string
	Class    model.ProvenanceClass
}

// DocumentJob processes one document through the pipeline
type DocumentJob struct {
	Source    DocumentSource
	Processor Processor
}

// Execute executes the document job. Jobs log through the context-carried
// logger so pool workers need no logger plumbing of their own.
func (j *DocumentJob) Execute(ctx context.Context) Result {
	log := logger.FromContext(ctx).With(zap.String("path", j.Source.Path))

	doc, err := LoadDocument(j.Source)
	if err != nil {
		log.Warn("document load failed", zap.Error(err))
		return &DocumentResult{Source: j.Source, Error: err}
	}
	summary, err := j.Processor.ProcessDocument(ctx, doc)
	if err != nil {
		log.Warn("document processing failed", zap.Error(err))
	}
	return &DocumentResult{Source: j.Source, Summary: summary, Error: err}
}

// DocumentResult represents the outcome of one document job
type DocumentResult struct {
	Source  DocumentSource
	Summary model.DocumentSummary
	Error   error
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple documents concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessSources processes multiple document sources concurrently
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []DocumentSource) []*DocumentResult {
	if len(sources) == 0 {
		return []*DocumentResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for _, src := range sources {
		pool.Submit(&DocumentJob{Source: src, Processor: b.processor})
	}

	results := pool.Wait()

	docResults := make([]*DocumentResult, len(results))
	for i, result := range results {
		docResults[i] = result.(*DocumentResult)
	}

	return docResults
}

// ProcessManifest reads document sources from a manifest file and
// processes them concurrently.
func (b *BatchProcessor) ProcessManifest(ctx context.Context, path, defaultLanguage string, defaultClass model.ProvenanceClass) ([]*DocumentResult, error) {
	sources, err := ReadManifest(path, defaultLanguage, defaultClass)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadManifest reads document sources from a manifest file. Each line
// names a path with optional language and provenance class columns:
//
//	docs/manual.txt
//	docs/handbuch.txt de
//	docs/vendor-spec.txt en vendor
//
// Empty lines and # comments are skipped; duplicate paths keep the first
// entry.
func ReadManifest(path, defaultLanguage string, defaultClass model.ProvenanceClass) ([]DocumentSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []DocumentSource
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		src := DocumentSource{
			Path:     fields[0],
			Language: defaultLanguage,
			Class:    defaultClass,
		}
		if len(fields) > 1 {
			src.Language = fields[1]
		}
		if len(fields) > 2 {
			src.Class = model.ProvenanceClass(fields[2])
		}

		if !seen[src.Path] {
			seen[src.Path] = true
			sources = append(sources, src)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

// LoadDocument reads a document file into pages. Page breaks are form
// feeds, the convention of pdftotext and friends; files without form
// feeds load as a single page.
func LoadDocument(src DocumentSource) (model.Document, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read document: %w", err)
	}

	extractedAt := time.Now().UTC()
	if info, err := os.Stat(src.Path); err == nil {
		extractedAt = info.ModTime().UTC()
	}

	id := documentID(src.Path)
	doc := model.Document{
		Provenance: model.Provenance{
			DocumentID: id,
			Language:   src.Language,
			Class:      src.Class,
		},
	}
	for i, text := range strings.Split(string(data), "\f") {
		doc.Pages = append(doc.Pages, model.RawPage{
			DocumentID:  id,
			Page:        i + 1,
			Text:        text,
			ExtractedAt: extractedAt,
		})
	}
	return doc, nil
}

// documentID derives a stable document identifier from the file name.
func documentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
