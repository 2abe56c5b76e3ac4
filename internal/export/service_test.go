package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/phpdave11/gofpdf"

	"github.com/legalhold/custodian/internal/audit"
	"github.com/legalhold/custodian/internal/cases"
	"github.com/legalhold/custodian/internal/documents"
	"github.com/legalhold/custodian/internal/export"
	"github.com/legalhold/custodian/pkg/lifecycle"
	"github.com/legalhold/custodian/pkg/pagination"
	"github.com/legalhold/custodian/pkg/storage"
)

type mockCases struct {
	findFn func(ctx context.Context, id uuid.UUID) (*cases.Case, error)
}

func (m *mockCases) Handler() *cases.Handler { return nil }

func (m *mockCases) List(ctx context.Context, page pagination.PageRequest, filters cases.Filters) (*pagination.PageResult[cases.Case], error) {
	return nil, errors.New("not implemented")
}

func (m *mockCases) Find(ctx context.Context, id uuid.UUID) (*cases.Case, error) {
	return m.findFn(ctx, id)
}

type mockDocuments struct {
	findManyFn func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]documents.Document, error)
}

func (m *mockDocuments) Handler() *documents.Handler { return nil }

func (m *mockDocuments) List(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return nil, errors.New("not implemented")
}

func (m *mockDocuments) Find(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	return nil, errors.New("not implemented")
}

func (m *mockDocuments) FindMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]documents.Document, error) {
	return m.findManyFn(ctx, ids)
}

type mockStorage struct {
	downloadFn func(ctx context.Context, key string) (io.ReadCloser, error)
	existsFn   func(ctx context.Context, key string) (bool, error)
}

func (m *mockStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (m *mockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return m.downloadFn(ctx, key)
}

func (m *mockStorage) Exists(ctx context.Context, key string) (bool, error) {
	return m.existsFn(ctx, key)
}

type mockAudit struct {
	recorded []audit.RecordCommand
}

func (m *mockAudit) Handler() *audit.Handler { return nil }

func (m *mockAudit) Record(ctx context.Context, cmd audit.RecordCommand) (*audit.Event, error) {
	m.recorded = append(m.recorded, cmd)
	return &audit.Event{ID: uuid.New()}, nil
}

func (m *mockAudit) List(ctx context.Context, page pagination.PageRequest, filters audit.Filters) (*pagination.PageResult[audit.Event], error) {
	return nil, errors.New("not implemented")
}

func (m *mockAudit) Find(ctx context.Context, id uuid.UUID) (*audit.Event, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAudit) Stats(ctx context.Context, window time.Duration) (*audit.Stats, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAudit) Actions(ctx context.Context) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAudit) ResourceTypes(ctx context.Context) ([]string, error) {
	return nil, errors.New("not implemented")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCase() *cases.Case {
	return &cases.Case{
		ID:         uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		Name:       "Acme v. Initech",
		CaseNumber: "2026-CV-0042",
	}
}

func imageDoc(id uuid.UUID, name string, size int64) documents.Document {
	return documents.Document{
		ID:          id,
		Filename:    name,
		ContentType: "image/jpeg",
		SizeBytes:   size,
		StorageKey:  "documents/" + id.String(),
	}
}

func pdfDoc(id uuid.UUID, name string) documents.Document {
	doc := imageDoc(id, name, 512)
	doc.ContentType = "application/pdf"
	return doc
}

// fixture bundles the mocks behind a service wired for one test.
type fixture struct {
	service *export.Service
	audit   *mockAudit
	blobs   map[string][]byte
}

func newFixture(t *testing.T, c *cases.Case, docs map[uuid.UUID]documents.Document, opts export.Options) *fixture {
	t.Helper()

	blobs := make(map[string][]byte)

	caseSys := &mockCases{
		findFn: func(_ context.Context, id uuid.UUID) (*cases.Case, error) {
			if c == nil || id != c.ID {
				return nil, cases.ErrNotFound
			}
			return c, nil
		},
	}

	docSys := &mockDocuments{
		findManyFn: func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]documents.Document, error) {
			return docs, nil
		},
	}

	store := &mockStorage{
		downloadFn: func(_ context.Context, key string) (io.ReadCloser, error) {
			data, ok := blobs[key]
			if !ok {
				return nil, storage.ErrNotFound
			}
			return io.NopCloser(bytes.NewReader(data)), nil
		},
		existsFn: func(_ context.Context, key string) (bool, error) {
			_, ok := blobs[key]
			return ok, nil
		},
	}

	recorder := &mockAudit{}

	return &fixture{
		service: export.NewService(caseSys, docSys, store, recorder, testLogger(), opts),
		audit:   recorder,
		blobs:   blobs,
	}
}

func sha(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func readEntries(t *testing.T, archive []byte) map[string][]byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = data
	}
	return out
}

func entryNames(t *testing.T, archive []byte) []string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestPreview(t *testing.T) {
	c := testCase()
	present := uuid.New()
	blobless := uuid.New()
	unresolved := uuid.New()

	docs := map[uuid.UUID]documents.Document{
		present:  imageDoc(present, "a.jpg", 1_000_000),
		blobless: imageDoc(blobless, "b.jpg", 500_000),
	}

	t.Run("counts sizes and missing files", func(t *testing.T) {
		f := newFixture(t, c, docs, export.Options{})
		f.blobs[docs[present].StorageKey] = []byte("image bytes")

		got, err := f.service.Preview(context.Background(), c.ID, []uuid.UUID{present, blobless, unresolved}, "reviewer@firm.example")
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}

		if got.DocumentCount != 3 {
			t.Errorf("document_count = %d, want 3", got.DocumentCount)
		}
		if got.TotalSizeBytes != 1_000_000 {
			t.Errorf("total_size_bytes = %d, want 1000000", got.TotalSizeBytes)
		}
		if got.TotalSizeMB != 1 {
			t.Errorf("total_size_mb = %v, want 1", got.TotalSizeMB)
		}
		if len(got.MissingFiles) != 2 {
			t.Fatalf("missing = %v, want 2 entries", got.MissingFiles)
		}
		if got.MissingFiles[0] != blobless || got.MissingFiles[1] != unresolved {
			t.Errorf("missing = %v, want [%v %v]", got.MissingFiles, blobless, unresolved)
		}

		if len(f.audit.recorded) != 1 {
			t.Fatalf("audit events = %d, want 1", len(f.audit.recorded))
		}
		event := f.audit.recorded[0]
		if event.Action != audit.ActionExportPreview {
			t.Errorf("action = %q, want export_preview", event.Action)
		}
		if event.Actor != "reviewer@firm.example" {
			t.Errorf("actor = %q", event.Actor)
		}
		if event.ResourceID != c.ID.String() {
			t.Errorf("resource_id = %q", event.ResourceID)
		}
		if event.Details["missing_files"] != 2 {
			t.Errorf("details.missing_files = %v", event.Details["missing_files"])
		}
	})

	t.Run("case not found", func(t *testing.T) {
		f := newFixture(t, c, docs, export.Options{})

		_, err := f.service.Preview(context.Background(), uuid.New(), []uuid.UUID{present}, "exporter")
		if !errors.Is(err, export.ErrCaseNotFound) {
			t.Errorf("err = %v, want ErrCaseNotFound", err)
		}
		if len(f.audit.recorded) != 0 {
			t.Errorf("audit events = %d, want none for rejected preview", len(f.audit.recorded))
		}
	})

	t.Run("empty selection rejected", func(t *testing.T) {
		f := newFixture(t, c, docs, export.Options{})

		_, err := f.service.Preview(context.Background(), c.ID, nil, "exporter")
		if !errors.Is(err, export.ErrEmptySelection) {
			t.Errorf("err = %v, want ErrEmptySelection", err)
		}
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		f := newFixture(t, c, docs, export.Options{})

		caseSys := &mockCases{findFn: func(_ context.Context, _ uuid.UUID) (*cases.Case, error) { return c, nil }}
		docSys := &mockDocuments{findManyFn: func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]documents.Document, error) { return docs, nil }}
		store := &mockStorage{
			existsFn: func(_ context.Context, _ string) (bool, error) {
				return false, errors.New("storage unavailable")
			},
		}
		f.service = export.NewService(caseSys, docSys, store, f.audit, testLogger(), export.Options{})

		_, err := f.service.Preview(context.Background(), c.ID, []uuid.UUID{present}, "exporter")
		if err == nil {
			t.Fatal("expected error")
		}
		if export.MapHTTPStatus(err) != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", export.MapHTTPStatus(err))
		}
	})
}

func TestExportArchiveLayout(t *testing.T) {
	c := testCase()
	first := uuid.New()
	second := uuid.New()

	docs := map[uuid.UUID]documents.Document{
		first:  imageDoc(first, "scan-a.jpg", 11),
		second: imageDoc(second, "scan-b.jpg", 12),
	}

	f := newFixture(t, c, docs, export.Options{})
	f.blobs[docs[first].StorageKey] = []byte("alpha-bytes")
	f.blobs[docs[second].StorageKey] = []byte("beta-bytes")

	req := export.ExportRequest{
		DocumentIDs:     []uuid.UUID{first, second},
		IncludeMetadata: true,
	}

	result, err := f.service.Export(context.Background(), c.ID, req, "paralegal@firm.example")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if !result.Success {
		t.Error("success = false")
	}
	if !strings.HasPrefix(result.Filename, "case_export_") || !strings.HasSuffix(result.Filename, ".zip") {
		t.Errorf("filename = %q", result.Filename)
	}
	if len(result.Manifest) != 2 || result.Included() != 2 {
		t.Fatalf("manifest = %d entries, %d included", len(result.Manifest), result.Included())
	}
	if len(result.Ranges) != 0 {
		t.Errorf("ranges = %v, want none without numbering", result.Ranges)
	}

	for i, entry := range result.Manifest {
		if entry.Outcome != "included" {
			t.Errorf("entry[%d] outcome = %q", i, entry.Outcome)
		}
		if entry.ExportedBy != "paralegal@firm.example" {
			t.Errorf("entry[%d] exported_by = %q", i, entry.ExportedBy)
		}
	}
	if result.Manifest[0].SHA256 != sha([]byte("alpha-bytes")) {
		t.Errorf("sha mismatch for first entry")
	}
	if result.Manifest[1].SizeBytes != int64(len("beta-bytes")) {
		t.Errorf("size = %d, want exported byte count", result.Manifest[1].SizeBytes)
	}

	names := entryNames(t, result.Archive)
	want := []string{
		"index.pdf",
		"documents/0001_scan-a.jpg",
		"documents/0002_scan-b.jpg",
		"metadata.json",
		"manifest.csv",
	}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	contents := readEntries(t, result.Archive)
	if !bytes.Equal(contents["documents/0001_scan-a.jpg"], []byte("alpha-bytes")) {
		t.Error("first document bytes changed")
	}
	if !bytes.HasPrefix(contents["index.pdf"], []byte("%PDF")) {
		t.Error("index is not a PDF")
	}

	if len(f.audit.recorded) != 1 {
		t.Fatalf("audit events = %d, want 1", len(f.audit.recorded))
	}
	event := f.audit.recorded[0]
	if event.Action != audit.ActionExportDocuments {
		t.Errorf("action = %q", event.Action)
	}
	if event.Status != audit.StatusSuccess {
		t.Errorf("status = %q", event.Status)
	}
	if event.Actor != "paralegal@firm.example" {
		t.Errorf("actor = %q", event.Actor)
	}
	if event.ResourceID != c.ID.String() {
		t.Errorf("resource_id = %q", event.ResourceID)
	}
	if event.Details["included"] != 2 {
		t.Errorf("details.included = %v", event.Details["included"])
	}
}

func TestExportSkipsKeepSelectionOrdinals(t *testing.T) {
	c := testCase()
	missing := uuid.New()
	kept := uuid.New()

	docs := map[uuid.UUID]documents.Document{
		kept: imageDoc(kept, "kept.jpg", 10),
	}

	f := newFixture(t, c, docs, export.Options{})
	f.blobs[docs[kept].StorageKey] = []byte("kept-bytes")

	req := export.ExportRequest{DocumentIDs: []uuid.UUID{missing, kept}}

	result, err := f.service.Export(context.Background(), c.ID, req, "exporter")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if len(result.Manifest) != 2 {
		t.Fatalf("manifest entries = %d, want one per selected id", len(result.Manifest))
	}

	first := result.Manifest[0]
	if first.DocumentID != missing || first.Outcome != "skipped-missing" {
		t.Errorf("entry[0] = %+v", first)
	}
	if first.Reason != "document record not found" {
		t.Errorf("reason = %q", first.Reason)
	}

	names := entryNames(t, result.Archive)
	if len(names) != 2 {
		t.Fatalf("entries = %v", names)
	}
	if names[1] != "documents/0002_kept.jpg" {
		t.Errorf("entry = %q, want selection ordinal preserved", names[1])
	}
}

func TestExportStoredFileOutcomes(t *testing.T) {
	c := testCase()
	lost := uuid.New()
	unreadable := uuid.New()
	kept := uuid.New()

	docs := map[uuid.UUID]documents.Document{
		lost:       imageDoc(lost, "lost.jpg", 10),
		unreadable: imageDoc(unreadable, "broken.jpg", 10),
		kept:       imageDoc(kept, "kept.jpg", 10),
	}

	f := newFixture(t, c, docs, export.Options{})
	f.blobs[docs[kept].StorageKey] = []byte("kept-bytes")

	caseSys := &mockCases{findFn: func(_ context.Context, _ uuid.UUID) (*cases.Case, error) { return c, nil }}
	docSys := &mockDocuments{findManyFn: func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]documents.Document, error) { return docs, nil }}
	store := &mockStorage{
		downloadFn: func(_ context.Context, key string) (io.ReadCloser, error) {
			switch key {
			case docs[lost].StorageKey:
				return nil, storage.ErrNotFound
			case docs[unreadable].StorageKey:
				return nil, errors.New("connection reset")
			default:
				return io.NopCloser(bytes.NewReader(f.blobs[key])), nil
			}
		},
	}
	f.service = export.NewService(caseSys, docSys, store, f.audit, testLogger(), export.Options{})

	req := export.ExportRequest{DocumentIDs: []uuid.UUID{lost, unreadable, kept}}

	result, err := f.service.Export(context.Background(), c.ID, req, "exporter")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	wantOutcomes := []struct {
		outcome string
		reason  string
	}{
		{"skipped-missing", "stored file missing"},
		{"skipped-error", "stored file unreadable"},
		{"included", ""},
	}

	for i, want := range wantOutcomes {
		entry := result.Manifest[i]
		if entry.Outcome != want.outcome {
			t.Errorf("entry[%d] outcome = %q, want %q", i, entry.Outcome, want.outcome)
		}
		if entry.Reason != want.reason {
			t.Errorf("entry[%d] reason = %q, want %q", i, entry.Reason, want.reason)
		}
	}
	if result.Included() != 1 {
		t.Errorf("included = %d, want 1", result.Included())
	}
}

func TestExportNothingExported(t *testing.T) {
	c := testCase()
	ghost := uuid.New()

	f := newFixture(t, c, map[uuid.UUID]documents.Document{}, export.Options{})

	req := export.ExportRequest{DocumentIDs: []uuid.UUID{ghost}}

	_, err := f.service.Export(context.Background(), c.ID, req, "exporter")
	if !errors.Is(err, export.ErrNothingExported) {
		t.Fatalf("err = %v, want ErrNothingExported", err)
	}

	if len(f.audit.recorded) != 1 {
		t.Fatalf("audit events = %d, want failure recorded", len(f.audit.recorded))
	}
	event := f.audit.recorded[0]
	if event.Status != audit.StatusFailure {
		t.Errorf("status = %q, want failure", event.Status)
	}
	if event.Details["error"] == nil {
		t.Error("failure detail missing error message")
	}
}

func TestExportCaseResolution(t *testing.T) {
	c := testCase()
	id := uuid.New()
	docs := map[uuid.UUID]documents.Document{id: imageDoc(id, "a.jpg", 10)}

	t.Run("unknown case", func(t *testing.T) {
		f := newFixture(t, c, docs, export.Options{})

		_, err := f.service.Export(context.Background(), uuid.New(), export.ExportRequest{DocumentIDs: []uuid.UUID{id}}, "exporter")
		if !errors.Is(err, export.ErrCaseNotFound) {
			t.Errorf("err = %v, want ErrCaseNotFound", err)
		}
	})

	t.Run("nil case id", func(t *testing.T) {
		f := newFixture(t, c, docs, export.Options{})

		_, err := f.service.Export(context.Background(), uuid.Nil, export.ExportRequest{DocumentIDs: []uuid.UUID{id}}, "exporter")
		if !errors.Is(err, export.ErrMissingCaseID) {
			t.Errorf("err = %v, want ErrMissingCaseID", err)
		}

		var vErr *export.ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "caseId" {
			t.Errorf("err = %v, want caseId validation error", err)
		}
	})

	t.Run("no audit event for rejected requests", func(t *testing.T) {
		f := newFixture(t, c, docs, export.Options{})

		f.service.Export(context.Background(), c.ID, export.ExportRequest{}, "exporter")
		if len(f.audit.recorded) != 0 {
			t.Errorf("audit events = %d, want 0 for validation failure", len(f.audit.recorded))
		}
	})
}

func TestExportCancelledContext(t *testing.T) {
	c := testCase()
	id := uuid.New()
	docs := map[uuid.UUID]documents.Document{id: imageDoc(id, "a.jpg", 10)}

	f := newFixture(t, c, docs, export.Options{})
	f.blobs[docs[id].StorageKey] = []byte("bytes")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Export(ctx, c.ID, export.ExportRequest{DocumentIDs: []uuid.UUID{id}}, "exporter")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	if len(f.audit.recorded) != 0 {
		t.Errorf("audit events = %d, want none for cancelled run", len(f.audit.recorded))
	}
}

func TestExportArchiveTooLarge(t *testing.T) {
	c := testCase()
	id := uuid.New()
	docs := map[uuid.UUID]documents.Document{id: imageDoc(id, "a.jpg", 10)}

	f := newFixture(t, c, docs, export.Options{MaxArchiveBytes: 64})
	f.blobs[docs[id].StorageKey] = []byte("payload")

	_, err := f.service.Export(context.Background(), c.ID, export.ExportRequest{DocumentIDs: []uuid.UUID{id}}, "exporter")
	if !errors.Is(err, export.ErrArchiveTooLarge) {
		t.Fatalf("err = %v, want ErrArchiveTooLarge", err)
	}
	if export.MapHTTPStatus(err) != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", export.MapHTTPStatus(err))
	}

	if len(f.audit.recorded) != 1 || f.audit.recorded[0].Status != audit.StatusFailure {
		t.Error("oversized archive should record a failure event")
	}
}

func TestExportBatesVariant(t *testing.T) {
	c := testCase()
	garbage := uuid.New()
	image := uuid.New()

	docs := map[uuid.UUID]documents.Document{
		garbage: pdfDoc(garbage, "corrupt.pdf"),
		image:   imageDoc(image, "photo.jpg", 10),
	}

	f := newFixture(t, c, docs, export.Options{})
	f.blobs[docs[garbage].StorageKey] = []byte("not a real pdf")
	f.blobs[docs[image].StorageKey] = []byte("jpeg-bytes")

	req := export.BatesRequest{
		DocumentIDs:    []uuid.UUID{garbage, image},
		Prefix:         "acme",
		StartingNumber: 100,
	}

	result, err := f.service.ExportBates(context.Background(), c.ID, req, "exporter")
	if err != nil {
		t.Fatalf("ExportBates: %v", err)
	}

	if !strings.HasPrefix(result.Filename, "BATES_2026-CV-0042_") {
		t.Errorf("filename = %q", result.Filename)
	}

	corrupt := result.Manifest[0]
	if corrupt.Outcome != "skipped-error" || corrupt.Reason != "page count extraction failed" {
		t.Errorf("corrupt pdf entry = %+v", corrupt)
	}

	photo := result.Manifest[1]
	if photo.Outcome != "included" {
		t.Errorf("image entry = %+v", photo)
	}
	if photo.Bates != nil {
		t.Error("image document must not receive a range")
	}
	if len(result.Ranges) != 0 {
		t.Errorf("ranges = %v", result.Ranges)
	}

	if len(f.audit.recorded) != 1 || f.audit.recorded[0].Action != audit.ActionExportBates {
		t.Errorf("audit action = %+v, want export_bates", f.audit.recorded)
	}
}

// makePDF renders a minimal document with the given page count.
func makePDF(t *testing.T, pages int) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(0, 10, fmt.Sprintf("Exhibit page %d", i))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func pdfPages(t *testing.T, data []byte) int {
	t.Helper()

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	return pages
}

func TestExportBatesRoundTrip(t *testing.T) {
	c := testCase()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	pageCounts := []int{2, 3, 1}

	docs := map[uuid.UUID]documents.Document{}
	for i, id := range ids {
		docs[id] = pdfDoc(id, fmt.Sprintf("exhibit-%d.pdf", i+1))
	}

	f := newFixture(t, c, docs, export.Options{})
	originals := make(map[uuid.UUID][]byte, len(ids))
	for i, id := range ids {
		data := makePDF(t, pageCounts[i])
		originals[id] = data
		f.blobs[docs[id].StorageKey] = data
	}

	req := export.ExportRequest{
		DocumentIDs: ids,
		Bates:       export.BatesOptions{Enabled: true, Prefix: "case1", StartNumber: 1},
		Watermark:   export.WatermarkOptions{Text: "CONFIDENTIAL"},
	}

	result, err := f.service.Export(context.Background(), c.ID, req, "exporter")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if result.Included() != 3 {
		t.Fatalf("included = %d, want 3", result.Included())
	}

	wantRanges := []export.BatesRange{
		{DocumentID: ids[0], StartNumber: 1, EndNumber: 2, PageCount: 2},
		{DocumentID: ids[1], StartNumber: 3, EndNumber: 5, PageCount: 3},
		{DocumentID: ids[2], StartNumber: 6, EndNumber: 6, PageCount: 1},
	}
	if len(result.Ranges) != len(wantRanges) {
		t.Fatalf("ranges = %+v, want %+v", result.Ranges, wantRanges)
	}
	for i, want := range wantRanges {
		if result.Ranges[i] != want {
			t.Errorf("range[%d] = %+v, want %+v", i, result.Ranges[i], want)
		}
	}

	contents := readEntries(t, result.Archive)
	for i, id := range ids {
		entry := result.Manifest[i]
		if entry.Outcome != "included" {
			t.Fatalf("entry[%d] = %+v", i, entry)
		}

		name := fmt.Sprintf("documents/%04d_exhibit-%d.pdf", i+1, i+1)
		stamped, ok := contents[name]
		if !ok {
			t.Fatalf("archive missing %s", name)
		}
		if bytes.Equal(stamped, originals[id]) {
			t.Errorf("%s identical to input, want stamped bytes", name)
		}

		if pages := pdfPages(t, stamped); pages != pageCounts[i] {
			t.Errorf("%s pages = %d, want %d", name, pages, pageCounts[i])
		}
		if entry.Bates == nil || entry.Bates.PageCount != pageCounts[i] {
			t.Errorf("entry[%d] bates = %+v, want %d pages", i, entry.Bates, pageCounts[i])
		}
	}

	// The same selection without a watermark numbers identically.
	plain := newFixture(t, c, docs, export.Options{})
	for id, data := range originals {
		plain.blobs[docs[id].StorageKey] = data
	}

	rerun, err := plain.service.Export(context.Background(), c.ID, export.ExportRequest{
		DocumentIDs: ids,
		Bates:       export.BatesOptions{Enabled: true, Prefix: "case1", StartNumber: 1},
	}, "exporter")
	if err != nil {
		t.Fatalf("Export without watermark: %v", err)
	}

	if len(rerun.Ranges) != len(wantRanges) {
		t.Fatalf("rerun ranges = %+v", rerun.Ranges)
	}
	for i, want := range wantRanges {
		if rerun.Ranges[i] != want {
			t.Errorf("rerun range[%d] = %+v, want %+v", i, rerun.Ranges[i], want)
		}
	}
}

func TestExportWatermarkOutcomes(t *testing.T) {
	c := testCase()
	image := uuid.New()
	garbage := uuid.New()

	docs := map[uuid.UUID]documents.Document{
		image:   imageDoc(image, "photo.jpg", 10),
		garbage: pdfDoc(garbage, "corrupt.pdf"),
	}

	f := newFixture(t, c, docs, export.Options{})
	f.blobs[docs[image].StorageKey] = []byte("jpeg-bytes")
	f.blobs[docs[garbage].StorageKey] = []byte("not a real pdf")

	req := export.ExportRequest{
		DocumentIDs: []uuid.UUID{image, garbage},
		Watermark:   export.WatermarkOptions{Text: "CONFIDENTIAL"},
	}

	result, err := f.service.Export(context.Background(), c.ID, req, "exporter")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	photo := result.Manifest[0]
	if photo.Outcome != "included" {
		t.Errorf("image entry = %+v", photo)
	}
	if photo.SHA256 != sha([]byte("jpeg-bytes")) {
		t.Error("non-PDF bytes must pass through unmodified")
	}

	corrupt := result.Manifest[1]
	if corrupt.Outcome != "skipped-error" || corrupt.Reason != "stamp rendering failed" {
		t.Errorf("corrupt pdf entry = %+v", corrupt)
	}

	contents := readEntries(t, result.Archive)
	if !bytes.Equal(contents["documents/0001_photo.jpg"], []byte("jpeg-bytes")) {
		t.Error("archived image bytes changed")
	}
}
