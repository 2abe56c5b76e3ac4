package documents_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/internal/documents"
	"github.com/legalhold/custodian/pkg/pagination"
	"github.com/legalhold/custodian/pkg/routes"
)

type mockSystem struct {
	listFn     func(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error)
	findFn     func(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	findManyFn func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]documents.Document, error)
}

func (m *mockSystem) Handler() *documents.Handler { return nil }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) FindMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]documents.Document, error) {
	return m.findManyFn(ctx, ids)
}

func setupMux(sys documents.System) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := documents.NewHandler(sys, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})

	mux := http.NewServeMux()
	for _, group := range []routes.Group{h.Routes(), h.CaseRoutes()} {
		for _, route := range group.Routes {
			mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
		}
	}
	return mux
}

func sampleDocument() *documents.Document {
	return &documents.Document{
		ID:           uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		CaseID:       uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		Filename:     "deposition.pdf",
		ContentType:  "application/pdf",
		SizeBytes:    2048,
		StorageKey:   "documents/11111111-1111-1111-1111-111111111111",
		Custodian:    "J. Smith",
		Category:     "correspondence",
		EvidenceType: "email",
		Tags:         []string{"privileged"},
		UploadedBy:   "collector@firm.example",
		UploadedAt:   time.Date(2026, 2, 3, 14, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 2, 3, 14, 0, 0, 0, time.UTC),
		CaseName:     "Acme v. Initech",
		CaseNumber:   "2026-CV-0042",
	}
}

func singlePage(doc documents.Document, page pagination.PageRequest) *pagination.PageResult[documents.Document] {
	result := pagination.NewPageResult([]documents.Document{doc}, 1, page.Page, page.PageSize)
	return &result
}

func TestHandlerList(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		var gotFilters documents.Filters

		sys := &mockSystem{
			listFn: func(_ context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
				gotFilters = filters
				return singlePage(*sampleDocument(), page), nil
			},
		}
		mux := setupMux(sys)

		req := httptest.NewRequest("GET", "/documents?custodian=J.+Smith&evidence_type=email", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		if gotFilters.Custodian == nil || *gotFilters.Custodian != "J. Smith" {
			t.Errorf("custodian filter = %v", gotFilters.Custodian)
		}
		if gotFilters.EvidenceType == nil || *gotFilters.EvidenceType != "email" {
			t.Errorf("evidence_type filter = %v", gotFilters.EvidenceType)
		}

		var result pagination.PageResult[documents.Document]
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(result.Data) != 1 || result.Data[0].Filename != "deposition.pdf" {
			t.Errorf("data = %+v", result.Data)
		}
	})

	t.Run("system error returns 500", func(t *testing.T) {
		sys := &mockSystem{
			listFn: func(context.Context, pagination.PageRequest, documents.Filters) (*pagination.PageResult[documents.Document], error) {
				return nil, context.DeadlineExceeded
			},
		}
		mux := setupMux(sys)

		req := httptest.NewRequest("GET", "/documents", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}

func TestHandlerListForCase(t *testing.T) {
	t.Run("injects case id from path", func(t *testing.T) {
		caseID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
		var gotFilters documents.Filters

		sys := &mockSystem{
			listFn: func(_ context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
				gotFilters = filters
				return singlePage(*sampleDocument(), page), nil
			},
		}
		mux := setupMux(sys)

		req := httptest.NewRequest("GET", "/cases/"+caseID.String()+"/documents?category=correspondence", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		if gotFilters.CaseID == nil || *gotFilters.CaseID != caseID {
			t.Errorf("case filter = %v, want %s", gotFilters.CaseID, caseID)
		}
		if gotFilters.Category == nil || *gotFilters.Category != "correspondence" {
			t.Errorf("category filter = %v", gotFilters.Category)
		}
	})

	t.Run("invalid case id returns 400", func(t *testing.T) {
		mux := setupMux(&mockSystem{})

		req := httptest.NewRequest("GET", "/cases/not-a-uuid/documents", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	t.Run("returns document by id", func(t *testing.T) {
		want := sampleDocument()
		sys := &mockSystem{
			findFn: func(_ context.Context, id uuid.UUID) (*documents.Document, error) {
				if id != want.ID {
					t.Errorf("id = %s, want %s", id, want.ID)
				}
				return want, nil
			},
		}
		mux := setupMux(sys)

		req := httptest.NewRequest("GET", "/documents/"+want.ID.String(), nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		var got documents.Document
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if got.Filename != want.Filename {
			t.Errorf("Filename = %s, want %s", got.Filename, want.Filename)
		}
		if got.CaseNumber != want.CaseNumber {
			t.Errorf("CaseNumber = %s, want %s", got.CaseNumber, want.CaseNumber)
		}
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		mux := setupMux(&mockSystem{})

		req := httptest.NewRequest("GET", "/documents/not-a-uuid", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("missing document returns 404", func(t *testing.T) {
		sys := &mockSystem{
			findFn: func(context.Context, uuid.UUID) (*documents.Document, error) {
				return nil, documents.ErrNotFound
			},
		}
		mux := setupMux(sys)

		req := httptest.NewRequest("GET", "/documents/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	t.Run("decodes body into page and filters", func(t *testing.T) {
		var gotPage pagination.PageRequest
		var gotFilters documents.Filters

		sys := &mockSystem{
			listFn: func(_ context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
				gotPage = page
				gotFilters = filters
				return singlePage(*sampleDocument(), page), nil
			},
		}
		mux := setupMux(sys)

		body := `{"page": 3, "page_size": 10, "custodian": "J. Smith", "filename": "memo"}`
		req := httptest.NewRequest("POST", "/documents/search", strings.NewReader(body))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		if gotPage.Page != 3 || gotPage.PageSize != 10 {
			t.Errorf("page = %d/%d, want 3/10", gotPage.Page, gotPage.PageSize)
		}
		if gotFilters.Custodian == nil || *gotFilters.Custodian != "J. Smith" {
			t.Errorf("custodian filter = %v", gotFilters.Custodian)
		}
		if gotFilters.Filename == nil || *gotFilters.Filename != "memo" {
			t.Errorf("filename filter = %v", gotFilters.Filename)
		}
	})

	t.Run("normalizes out-of-range page values", func(t *testing.T) {
		var gotPage pagination.PageRequest

		sys := &mockSystem{
			listFn: func(_ context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
				gotPage = page
				return singlePage(*sampleDocument(), page), nil
			},
		}
		mux := setupMux(sys)

		body := `{"page": 0, "page_size": 5000}`
		req := httptest.NewRequest("POST", "/documents/search", strings.NewReader(body))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if gotPage.Page != 1 {
			t.Errorf("page = %d, want 1", gotPage.Page)
		}
		if gotPage.PageSize != 100 {
			t.Errorf("page size = %d, want max 100", gotPage.PageSize)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		mux := setupMux(&mockSystem{})

		req := httptest.NewRequest("POST", "/documents/search", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestHandlerRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := documents.NewHandler(&mockSystem{}, logger, pagination.Config{})

	t.Run("document routes", func(t *testing.T) {
		group := h.Routes()

		if group.Prefix != "/documents" {
			t.Errorf("prefix = %s, want /documents", group.Prefix)
		}

		want := []struct {
			method  string
			pattern string
		}{
			{"GET", ""},
			{"GET", "/{id}"},
			{"POST", "/search"},
		}

		if len(group.Routes) != len(want) {
			t.Fatalf("route count = %d, want %d", len(group.Routes), len(want))
		}

		for i, w := range want {
			if group.Routes[i].Method != w.method || group.Routes[i].Pattern != w.pattern {
				t.Errorf("route %d = %s %s, want %s %s",
					i, group.Routes[i].Method, group.Routes[i].Pattern, w.method, w.pattern)
			}
		}
	})

	t.Run("case routes", func(t *testing.T) {
		group := h.CaseRoutes()

		if group.Prefix != "/cases" {
			t.Errorf("prefix = %s, want /cases", group.Prefix)
		}
		if len(group.Routes) != 1 {
			t.Fatalf("route count = %d, want 1", len(group.Routes))
		}
		if group.Routes[0].Method != "GET" || group.Routes[0].Pattern != "/{caseId}/documents" {
			t.Errorf("route = %s %s", group.Routes[0].Method, group.Routes[0].Pattern)
		}
	})
}
