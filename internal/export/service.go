package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/legalhold/custodian/internal/audit"
	"github.com/legalhold/custodian/internal/cases"
	"github.com/legalhold/custodian/internal/documents"
	"github.com/legalhold/custodian/pkg/formatting"
	"github.com/legalhold/custodian/pkg/storage"
)

// Options bounds per-request resource usage for the pipeline.
type Options struct {
	// MaxWorkers caps the stamping pool. Zero means one worker per core.
	MaxWorkers int

	// MaxArchiveBytes rejects archives larger than this size. Zero
	// disables the check.
	MaxArchiveBytes int64

	// ReserveSkipped consumes one Bates number for every document that
	// receives no range, keeping a stable document-to-number mapping at
	// the cost of gaps in the produced set.
	ReserveSkipped bool
}

// Service wires the case catalog, document catalog, blob store, and
// audit recorder into the pipeline. It holds no per-request state.
type Service struct {
	cases     cases.System
	documents documents.System
	storage   storage.System
	audit     audit.System
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
}

// NewService creates the export pipeline service.
func NewService(
	caseSys cases.System,
	docSys documents.System,
	store storage.System,
	recorder audit.System,
	logger *slog.Logger,
	opts Options,
) *Service {
	return &Service{
		cases:     caseSys,
		documents: docSys,
		storage:   store,
		audit:     recorder,
		logger:    logger.With("system", "export"),
		opts:      opts,
		now:       time.Now,
	}
}

// Handler creates an HTTP handler bound to this service.
func (s *Service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Preview computes selection statistics without producing output. The
// lookup still lands in the chain-of-custody trail: who sized up a
// selection is part of the record.
func (s *Service) Preview(ctx context.Context, caseID uuid.UUID, documentIDs []uuid.UUID, actor string) (*PreviewResult, error) {
	c, err := s.findCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	req, err := ExportRequest{DocumentIDs: documentIDs}.Validate("")
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.FindMany(ctx, req.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve documents: %w", err)
	}

	result := &PreviewResult{
		DocumentCount: len(req.DocumentIDs),
		MissingFiles:  []uuid.UUID{},
	}

	for _, id := range req.DocumentIDs {
		doc, ok := docs[id]
		if !ok {
			result.MissingFiles = append(result.MissingFiles, id)
			continue
		}

		exists, err := s.storage.Exists(ctx, doc.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", doc.StorageKey, err)
		}
		if !exists {
			result.MissingFiles = append(result.MissingFiles, id)
			continue
		}

		result.TotalSizeBytes += doc.SizeBytes
	}

	result.TotalSizeMB = megabytes(result.TotalSizeBytes)

	s.recordPreviewAudit(ctx, c, actor, result)
	return result, nil
}

// Export runs the full pipeline and returns the finished archive.
func (s *Service) Export(ctx context.Context, caseID uuid.UUID, req ExportRequest, actor string) (*ExportResult, error) {
	return s.run(ctx, caseID, req, actor, false)
}

// ExportBates runs the pipeline for the numbering-focused variant.
func (s *Service) ExportBates(ctx context.Context, caseID uuid.UUID, req BatesRequest, actor string) (*ExportResult, error) {
	return s.run(ctx, caseID, req.ExportRequest(), actor, true)
}

func (s *Service) run(ctx context.Context, caseID uuid.UUID, req ExportRequest, actor string, batesNamed bool) (*ExportResult, error) {
	c, err := s.findCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	req, err = req.Validate(prefixFallback(c))
	if err != nil {
		return nil, err
	}

	startedAt := s.now()

	docs, err := s.documents.FindMany(ctx, req.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve documents: %w", err)
	}

	items, err := s.collect(ctx, req, docs)
	if err != nil {
		return nil, err
	}

	if err := s.render(ctx, req, items, startedAt, actor); err != nil {
		return nil, err
	}

	// A cancelled request delivers nothing rather than a partial archive.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.assemble(c, req, items, docs, startedAt, actor, batesNamed)
	if err != nil {
		s.recordAudit(ctx, c, req, actor, nil, err, batesNamed)
		return nil, err
	}

	s.logger.Info("export complete",
		"case_id", c.ID,
		"filename", result.Filename,
		"selected", len(result.Manifest),
		"included", result.Included(),
		"archive_size", formatting.FormatBytes(int64(len(result.Archive)), 1),
	)

	s.recordAudit(ctx, c, req, actor, result, nil, batesNamed)
	return result, nil
}

func (s *Service) findCase(ctx context.Context, caseID uuid.UUID) (*cases.Case, error) {
	if caseID == uuid.Nil {
		return nil, invalidField("caseId", ErrMissingCaseID)
	}

	c, err := s.cases.Find(ctx, caseID)
	if err != nil {
		if errors.Is(err, cases.ErrNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("find case: %w", err)
	}
	return c, nil
}

// prefixFallback is substituted when the configured Bates prefix
// normalizes to empty: the case number when present, else the case id.
func prefixFallback(c *cases.Case) string {
	if c.CaseNumber != "" {
		return c.CaseNumber
	}
	return c.ID.String()
}

// workItem tracks one selected document through the pipeline. Each item
// is an index-addressed slot, so concurrent renders never contend on
// shared state.
type workItem struct {
	doc     documents.Document
	data    []byte
	rng     *BatesRange
	outcome string
	reason  string
	stamp   bool
}

// collect runs the sequential pass: resolve each selected document,
// fetch its bytes, and allocate Bates ranges in selection order. Range
// allocation cannot be parallelized because each document's start
// depends on the cumulative page count of everything before it.
func (s *Service) collect(
	ctx context.Context,
	req ExportRequest,
	docs map[uuid.UUID]documents.Document,
) ([]*workItem, error) {
	seq := newSequencer(req.Bates.StartNumber, s.opts.ReserveSkipped)
	items := make([]*workItem, 0, len(req.DocumentIDs))

	for _, id := range req.DocumentIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := &workItem{outcome: OutcomeIncluded}
		items = append(items, item)

		doc, ok := docs[id]
		if !ok {
			item.doc = documents.Document{ID: id}
			item.outcome = OutcomeSkippedMissing
			item.reason = "document record not found"
			seq.skip()
			continue
		}
		item.doc = doc

		data, err := s.download(ctx, doc.StorageKey)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			if errors.Is(err, storage.ErrNotFound) {
				item.outcome = OutcomeSkippedMissing
				item.reason = "stored file missing"
			} else {
				item.outcome = OutcomeSkippedError
				item.reason = "stored file unreadable"
				s.logger.Warn("document read failed", "id", id, "key", doc.StorageKey, "error", err)
			}
			seq.skip()
			continue
		}
		item.data = data

		if !supportsStamping(doc.ContentType) {
			seq.skip()
			continue
		}
		item.stamp = true

		if !req.Bates.Enabled {
			continue
		}

		pages, err := pageCount(data)
		if err != nil {
			item.outcome = OutcomeSkippedError
			item.reason = "page count extraction failed"
			item.stamp = false
			seq.skip()
			s.logger.Warn("page count failed", "id", id, "error", err)
			continue
		}

		rng := seq.assign(id, pages)
		item.rng = &rng
	}

	return items, nil
}

func (s *Service) download(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// render fans stamping out across the worker pool. Ranges are already
// fixed, so workers write only into their own slots; a per-document
// failure downgrades that document, never the job. Only cancellation
// aborts the pass.
func (s *Service) render(ctx context.Context, req ExportRequest, items []*workItem, at time.Time, actor string) error {
	if !req.Bates.Enabled && !req.Watermark.enabled() {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderWorkerCount(s.opts.MaxWorkers, len(items)))

	for _, item := range items {
		if item.outcome != OutcomeIncluded || !item.stamp {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			stamped, err := renderStamps(item.data, item.rng, req.Bates, req.Watermark, at, actor)
			if err != nil {
				item.outcome = OutcomeSkippedError
				item.reason = "stamp rendering failed"
				item.data = nil
				s.logger.Warn("stamp rendering failed", "id", item.doc.ID, "error", err)
				return nil
			}

			item.data = stamped
			return nil
		})
	}

	return g.Wait()
}

// assemble builds the manifest, cover, and archive in selection order.
func (s *Service) assemble(
	c *cases.Case,
	req ExportRequest,
	items []*workItem,
	docs map[uuid.UUID]documents.Document,
	at time.Time,
	actor string,
	batesNamed bool,
) (*ExportResult, error) {
	entries := make([]ManifestEntry, 0, len(items))
	ranges := make([]BatesRange, 0, len(items))
	included := 0

	for _, item := range items {
		entry := ManifestEntry{
			DocumentID:   item.doc.ID,
			OriginalName: item.doc.Filename,
			Outcome:      item.outcome,
			Bates:        item.rng,
			SizeBytes:    item.doc.SizeBytes,
			Reason:       item.reason,
			ExportedAt:   at,
			ExportedBy:   actor,
		}

		if item.outcome == OutcomeIncluded {
			entry.SizeBytes = int64(len(item.data))
			entry.SHA256 = digest(item.data)
			included++
		}

		if item.rng != nil {
			ranges = append(ranges, *item.rng)
		}

		entries = append(entries, entry)
	}

	if included == 0 {
		return nil, ErrNothingExported
	}

	span := batesSpan(req.Bates, ranges)
	cover, err := buildCoverPDF(c, actor, at, entries, req.Bates.Prefix, span)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveWriter, err)
	}

	archiveEntries := make([]archiveEntry, 0, len(items)+3)
	archiveEntries = append(archiveEntries, archiveEntry{Name: archiveIndexName, Data: cover})

	for i, item := range items {
		if item.outcome != OutcomeIncluded {
			continue
		}
		archiveEntries = append(archiveEntries, archiveEntry{
			Name: documentEntryName(i+1, item.doc.Filename),
			Data: item.data,
		})
	}

	if req.IncludeMetadata {
		meta, err := buildMetadataJSON(c, actor, at, entries, docs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchiveWriter, err)
		}

		load, err := buildManifestCSV(entries, docs, req.Bates.Prefix)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchiveWriter, err)
		}

		archiveEntries = append(archiveEntries,
			archiveEntry{Name: archiveMetadataName, Data: meta},
			archiveEntry{Name: archiveManifestName, Data: load},
		)
	}

	var buf bytes.Buffer
	if err := writeArchive(&buf, archiveEntries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveWriter, err)
	}

	if s.opts.MaxArchiveBytes > 0 && int64(buf.Len()) > s.opts.MaxArchiveBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrArchiveTooLarge, buf.Len())
	}

	return &ExportResult{
		Filename: exportFilename(c, at, batesNamed),
		Archive:  buf.Bytes(),
		Manifest: entries,
		Ranges:   ranges,
		Success:  true,
	}, nil
}

// recordPreviewAudit persists the trail event for a completed preview.
func (s *Service) recordPreviewAudit(ctx context.Context, c *cases.Case, actor string, result *PreviewResult) {
	ctx = context.WithoutCancel(ctx)

	cmd := audit.RecordCommand{
		Actor:        actor,
		Action:       audit.ActionExportPreview,
		ResourceType: "case",
		ResourceID:   c.ID.String(),
		Status:       audit.StatusSuccess,
		Details: map[string]any{
			"document_count":   result.DocumentCount,
			"missing_files":    len(result.MissingFiles),
			"total_size_bytes": result.TotalSizeBytes,
		},
	}

	if _, err := s.audit.Record(ctx, cmd); err != nil {
		s.logger.Warn("audit record failed", "case_id", c.ID, "action", cmd.Action, "error", err)
	}
}

// recordAudit persists the chain-of-custody event. Recording failures
// are logged, never surfaced; the deliverable has already left the
// pipeline by the time this runs.
func (s *Service) recordAudit(
	ctx context.Context,
	c *cases.Case,
	req ExportRequest,
	actor string,
	result *ExportResult,
	runErr error,
	batesNamed bool,
) {
	ctx = context.WithoutCancel(ctx)

	action := audit.ActionExportDocuments
	if batesNamed {
		action = audit.ActionExportBates
	}

	cmd := audit.RecordCommand{
		Actor:        actor,
		Action:       action,
		ResourceType: "case",
		ResourceID:   c.ID.String(),
		Status:       audit.StatusSuccess,
		Details: map[string]any{
			"document_count": len(req.DocumentIDs),
			"format":         req.Format,
			"bates_enabled":  req.Bates.Enabled,
			"watermarked":    req.Watermark.enabled(),
		},
	}

	if result != nil {
		cmd.Details["filename"] = result.Filename
		cmd.Details["included"] = result.Included()
		cmd.Details["skipped"] = len(result.Manifest) - result.Included()
		cmd.Details["archive_bytes"] = len(result.Archive)
	}

	if runErr != nil {
		cmd.Status = audit.StatusFailure
		cmd.Details["error"] = runErr.Error()
	}

	if _, err := s.audit.Record(ctx, cmd); err != nil {
		s.logger.Warn("audit record failed", "case_id", c.ID, "action", action, "error", err)
	}
}
