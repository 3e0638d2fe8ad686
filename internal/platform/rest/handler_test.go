package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/models"
	"github.com/pharmascript/pharmascript/pkg/pagination"
	"github.com/pharmascript/pharmascript/pkg/problem"
)

type mockDrugRepo struct {
	mu     sync.Mutex
	nextID int64
	store  map[int64]models.Drug
	err    error
}

func newMockDrugRepo() *mockDrugRepo {
	return &mockDrugRepo{nextID: 1, store: make(map[int64]models.Drug)}
}

func (m *mockDrugRepo) Create(ctx context.Context, d *models.Drug) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	d.SetID(m.nextID)
	m.nextID++
	m.store[*d.ID] = *d
	return nil
}

func (m *mockDrugRepo) Update(ctx context.Context, d *models.Drug) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[*d.ID]; !ok {
		return crud.ErrNotFound
	}
	m.store[*d.ID] = *d
	return nil
}

func (m *mockDrugRepo) GetByID(ctx context.Context, id int64) (*models.Drug, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.store[id]
	if !ok {
		return nil, crud.ErrNotFound
	}
	return &d, nil
}

func (m *mockDrugRepo) Exists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[id]
	return ok, nil
}

func (m *mockDrugRepo) List(ctx context.Context, params pagination.Params) ([]*models.Drug, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range params.Sort {
		if o.Property != "id" && o.Property != "brandName" {
			return nil, errors.New("unexpected sort reached the repository")
		}
	}
	ids := make([]int64, 0, len(m.store))
	for id := range m.store {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*models.Drug
	for i := params.Offset(); i < len(ids) && len(out) < params.Limit(); i++ {
		d := m.store[ids[i]]
		out = append(out, &d)
	}
	return out, nil
}

func (m *mockDrugRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.store)), nil
}

func (m *mockDrugRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return crud.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func validateDrug(ctx context.Context, d *models.Drug) error {
	c := crud.NewChecker(models.EntityDrug)
	c.NotBlank("maker", d.Maker)
	c.NotBlank("brandName", d.BrandName)
	c.NotBlank("genericName", d.GenericName)
	return c.Err()
}

func mergeDrug(dst, patch *models.Drug) {
	if patch.Maker != nil {
		dst.Maker = patch.Maker
	}
	if patch.BrandName != nil {
		dst.BrandName = patch.BrandName
	}
	if patch.GenericName != nil {
		dst.GenericName = patch.GenericName
	}
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(repo *mockDrugRepo) *echo.Echo {
	svc := crud.NewService[models.Drug](repo, crud.Config[models.Drug, *models.Drug]{
		Entity:   models.EntityDrug,
		Validate: validateDrug,
		Merge:    mergeDrug,
		Now:      func() time.Time { return fixedNow },
	})
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zerolog.Nop())
	NewHandler[models.Drug](svc, "/api/drugs").RegisterRoutes(e)
	return e
}

func seedDrug(t *testing.T, repo *mockDrugRepo) int64 {
	t.Helper()
	d := models.NewSampleDrug()
	d.Stamp(fixedNow.Add(-time.Hour), fixedNow.Add(-time.Hour))
	if err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return *d.ID
}

func do(e *echo.Echo, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem.Problem {
	t.Helper()
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, problem.ContentType) {
		t.Errorf("expected problem content type, got %q", ct)
	}
	var p problem.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode problem: %v (%s)", err, rec.Body.String())
	}
	return p
}

func TestCreate(t *testing.T) {
	repo := newMockDrugRepo()
	e := newTestServer(repo)

	body := `{"id":null,"maker":"Acme","brandName":"Calmex","genericName":"calmium"}`
	rec := do(e, http.MethodPost, "/api/drugs", echo.MIMEApplicationJSON, body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/api/drugs/1" {
		t.Errorf("expected Location /api/drugs/1, got %q", loc)
	}
	if a := rec.Header().Get(AlertHeader); a != "pharmascriptApp.drug.created" {
		t.Errorf("unexpected alert header %q", a)
	}
	if p := rec.Header().Get(ParamsHeader); p != "1" {
		t.Errorf("unexpected params header %q", p)
	}

	var got models.Drug
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == nil || *got.ID != 1 {
		t.Errorf("expected id 1, got %v", got.ID)
	}
	if got.CreatedDate == nil || !got.CreatedDate.Equal(fixedNow) {
		t.Errorf("expected server timestamp, got %v", got.CreatedDate)
	}
}

func TestCreate_WithID(t *testing.T) {
	e := newTestServer(newMockDrugRepo())

	rec := do(e, http.MethodPost, "/api/drugs", echo.MIMEApplicationJSON, `{"id":5,"maker":"a","brandName":"b","genericName":"c"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	if p.Message != "error.idexists" || p.EntityName != "drug" {
		t.Errorf("unexpected problem %+v", p)
	}
	if h := rec.Header().Get(ErrorHeader); h != "error.idexists" {
		t.Errorf("unexpected error header %q", h)
	}
}

func TestCreate_Validation(t *testing.T) {
	e := newTestServer(newMockDrugRepo())

	rec := do(e, http.MethodPost, "/api/drugs", echo.MIMEApplicationJSON, `{"maker":"Acme"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	if p.ErrorKey != problem.KeyValidation {
		t.Errorf("expected validation key, got %q", p.ErrorKey)
	}
	if len(p.FieldErrors) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", p.FieldErrors)
	}
	if p.FieldErrors[0].Field != "brandName" || p.FieldErrors[1].Field != "genericName" {
		t.Errorf("unexpected field errors %+v", p.FieldErrors)
	}
}

func TestCreate_BadBody(t *testing.T) {
	e := newTestServer(newMockDrugRepo())

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"empty body", echo.MIMEApplicationJSON, "", http.StatusBadRequest},
		{"malformed", echo.MIMEApplicationJSON, `{"maker":`, http.StatusBadRequest},
		{"wrong type", echo.MIMEApplicationJSON, `{"maker":12}`, http.StatusBadRequest},
		{"text body", echo.MIMETextPlain, `maker=Acme`, http.StatusUnsupportedMediaType},
		{"merge patch on POST", MergePatchJSON, `{}`, http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/drugs", tt.contentType, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			decodeProblem(t, rec)
		})
	}
}

func TestCreate_RepositoryFailure(t *testing.T) {
	repo := newMockDrugRepo()
	repo.err = errors.New("connection refused")
	e := newTestServer(repo)

	rec := do(e, http.MethodPost, "/api/drugs", echo.MIMEApplicationJSON, `{"maker":"a","brandName":"b","genericName":"c"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("internal error leaked into the response")
	}
	if p.ErrorKey != problem.KeyInternal {
		t.Errorf("expected internal key, got %q", p.ErrorKey)
	}
}

func TestUpdate(t *testing.T) {
	repo := newMockDrugRepo()
	id := seedDrug(t, repo)
	e := newTestServer(repo)

	body := `{"id":1,"maker":"Acme","brandName":"Renamed","genericName":"calmium"}`
	rec := do(e, http.MethodPut, "/api/drugs/1", echo.MIMEApplicationJSON, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if a := rec.Header().Get(AlertHeader); a != "pharmascriptApp.drug.updated" {
		t.Errorf("unexpected alert header %q", a)
	}
	stored := repo.store[id]
	if *stored.BrandName != "Renamed" {
		t.Errorf("expected stored brand name to change, got %q", *stored.BrandName)
	}
	if !stored.CreatedDate.Equal(fixedNow.Add(-time.Hour)) {
		t.Errorf("expected created date to be kept, got %v", stored.CreatedDate)
	}
	if !stored.UpdatedDate.Equal(fixedNow) {
		t.Errorf("expected updated date to be stamped, got %v", stored.UpdatedDate)
	}
}

func TestUpdate_IDChecks(t *testing.T) {
	repo := newMockDrugRepo()
	seedDrug(t, repo)
	e := newTestServer(repo)

	tests := []struct {
		name   string
		target string
		body   string
		key    string
	}{
		{"null id", "/api/drugs/1", `{"id":null,"maker":"a","brandName":"b","genericName":"c"}`, problem.KeyIDNull},
		{"mismatched id", "/api/drugs/1", `{"id":2,"maker":"a","brandName":"b","genericName":"c"}`, problem.KeyIDInvalid},
		{"unknown id", "/api/drugs/9", `{"id":9,"maker":"a","brandName":"b","genericName":"c"}`, problem.KeyIDNotFound},
		{"non numeric path", "/api/drugs/abc", `{"id":1,"maker":"a","brandName":"b","genericName":"c"}`, problem.KeyIDInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPut, tt.target, echo.MIMEApplicationJSON, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if p := decodeProblem(t, rec); p.ErrorKey != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, p.ErrorKey)
			}
		})
	}
}

func TestPartialUpdate(t *testing.T) {
	repo := newMockDrugRepo()
	id := seedDrug(t, repo)
	before := repo.store[id]
	e := newTestServer(repo)

	rec := do(e, http.MethodPatch, "/api/drugs/1", MergePatchJSON, `{"id":1,"brandName":"Patched"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Drug
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *got.BrandName != "Patched" {
		t.Errorf("expected patched brand name, got %q", *got.BrandName)
	}
	if *got.Maker != *before.Maker || *got.GenericName != *before.GenericName {
		t.Errorf("expected untouched fields to be kept, got %+v", got)
	}
	if a := rec.Header().Get(AlertHeader); a != "pharmascriptApp.drug.updated" {
		t.Errorf("unexpected alert header %q", a)
	}
}

func TestPartialUpdate_PlainJSON(t *testing.T) {
	repo := newMockDrugRepo()
	seedDrug(t, repo)
	e := newTestServer(repo)

	rec := do(e, http.MethodPatch, "/api/drugs/1", echo.MIMEApplicationJSON, `{"id":1,"maker":"Other"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPartialUpdate_BlankingRequiredField(t *testing.T) {
	repo := newMockDrugRepo()
	seedDrug(t, repo)
	e := newTestServer(repo)

	rec := do(e, http.MethodPatch, "/api/drugs/1", MergePatchJSON, `{"id":1,"maker":"  "}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if p := decodeProblem(t, rec); p.ErrorKey != problem.KeyValidation {
		t.Errorf("expected validation key, got %q", p.ErrorKey)
	}
}

func TestGet(t *testing.T) {
	repo := newMockDrugRepo()
	seedDrug(t, repo)
	e := newTestServer(repo)

	rec := do(e, http.MethodGet, "/api/drugs/1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/drugs/2", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	if p.ErrorKey != problem.KeyNotFound || p.Type != problem.TypeEntityNotFound {
		t.Errorf("unexpected problem %+v", p)
	}
	if p.Path != "/api/drugs/2" {
		t.Errorf("expected request path in problem, got %q", p.Path)
	}
}

func TestList(t *testing.T) {
	repo := newMockDrugRepo()
	for i := 0; i < 5; i++ {
		seedDrug(t, repo)
	}
	e := newTestServer(repo)

	rec := do(e, http.MethodGet, "/api/drugs?page=1&size=2&sort=id,asc", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if total := rec.Header().Get(pagination.TotalCountHeader); total != "5" {
		t.Errorf("expected total 5, got %q", total)
	}
	link := rec.Header().Get("Link")
	for _, rel := range []string{`rel="next"`, `rel="prev"`, `rel="last"`, `rel="first"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("expected %s in Link header %q", rel, link)
		}
	}
	if !strings.Contains(link, "http://example.com/api/drugs?") {
		t.Errorf("expected absolute links, got %q", link)
	}

	var items []models.Drug
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || *items[0].ID != 3 || *items[1].ID != 4 {
		t.Errorf("unexpected page %+v", items)
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	e := newTestServer(newMockDrugRepo())

	rec := do(e, http.MethodGet, "/api/drugs", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}
}

func TestList_PageOutOfRange(t *testing.T) {
	repo := newMockDrugRepo()
	seedDrug(t, repo)
	e := newTestServer(repo)

	rec := do(e, http.MethodGet, "/api/drugs?page=461168601842738791&size=20", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty page, got %s", body)
	}
	if total := rec.Header().Get(pagination.TotalCountHeader); total != "1" {
		t.Errorf("expected total 1, got %q", total)
	}
}

func TestList_BadSort(t *testing.T) {
	repo := newMockDrugRepo()
	seedDrug(t, repo)
	e := newTestServer(repo)

	rec := do(e, http.MethodGet, "/api/drugs?sort=id,sideways", "", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if p := decodeProblem(t, rec); p.ErrorKey != problem.KeyBadRequest {
		t.Errorf("expected badrequest key, got %q", p.ErrorKey)
	}
}

func TestDelete(t *testing.T) {
	repo := newMockDrugRepo()
	id := seedDrug(t, repo)
	e := newTestServer(repo)

	rec := do(e, http.MethodDelete, "/api/drugs/1", "", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if a := rec.Header().Get(AlertHeader); a != "pharmascriptApp.drug.deleted" {
		t.Errorf("unexpected alert header %q", a)
	}
	if _, ok := repo.store[id]; ok {
		t.Error("expected drug to be removed")
	}

	rec = do(e, http.MethodDelete, "/api/drugs/1", "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected repeated delete to be 204, got %d", rec.Code)
	}
}

func TestRegisterRoutes_Middleware(t *testing.T) {
	repo := newMockDrugRepo()
	svc := crud.NewService[models.Drug](repo, crud.Config[models.Drug, *models.Drug]{Entity: models.EntityDrug})
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(zerolog.Nop())

	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
	NewHandler[models.Drug](svc, "api/drugs/").RegisterRoutes(e, deny)

	rec := do(e, http.MethodGet, "/api/drugs", "", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	p := decodeProblem(t, rec)
	if p.ErrorKey != problem.KeyForbidden || p.Detail != "insufficient permissions" {
		t.Errorf("unexpected problem %+v", p)
	}
}
