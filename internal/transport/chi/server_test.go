package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/teammaker/internal/db/memory"
	tablerepo "github.com/kailas-cloud/teammaker/internal/repository/table"
	"github.com/kailas-cloud/teammaker/internal/transport/api"
	generateuc "github.com/kailas-cloud/teammaker/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/teammaker/internal/usecase/health"
	searchuc "github.com/kailas-cloud/teammaker/internal/usecase/search"
	tableuc "github.com/kailas-cloud/teammaker/internal/usecase/table"
)

const roster = "name,skill,role\n" +
	"Ann,A,dev\nBob,A,dev\nCid,A,qa\nDee,A,qa\nEve,A,dev\n" +
	"Fay,B,qa\nGus,B,dev\nHal,B,qa\nIda,B,dev\n"

type testEnv struct {
	handler http.Handler
	store   *memory.Store
}

func newTestEnv(t *testing.T, maxBody int64) *testEnv {
	t.Helper()
	store := memory.NewStore(time.Minute)
	t.Cleanup(store.Close)

	logger := zap.NewNop()
	repo := tablerepo.New(store, tablerepo.Config{})
	gen := generateuc.NewGenerator(generateuc.DefaultSwapEvery)
	opt := searchuc.NewOptimizer(gen, searchuc.Score, 2, 50)

	srv := NewServer(
		tableuc.New(repo, 100, logger),
		generateuc.New(repo, gen, 7, logger),
		searchuc.New(repo, opt, 7, logger),
		healthuc.New(store),
		maxBody,
		logger,
	)
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	srv.Routes(r)
	return &testEnv{handler: r, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) upload(t *testing.T, data string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/upload", "text/csv", []byte(data))
	if rr.Code != http.StatusOK {
		t.Fatalf("upload: got %d: %s", rr.Code, rr.Body.String())
	}
	var resp api.TableResponse
	decodeBody(t, rr, &resp)
	return resp.TableID
}

func (e *testEnv) postJSON(t *testing.T, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return e.do(t, http.MethodPost, path, "application/json", body)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, kind api.ErrorKind) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, status, rr.Body.String())
	}
	var resp api.ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Kind != kind {
		t.Errorf("kind: got %s, want %s (%s)", resp.Kind, kind, resp.Message)
	}
	if resp.Message == "" {
		t.Error("empty error message")
	}
}

func intPtr(i int) *int { return &i }

func TestUpload_RawBody(t *testing.T) {
	env := newTestEnv(t, 0)
	rr := env.do(t, http.MethodPost, "/upload", "text/csv", []byte(roster))
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp api.TableResponse
	decodeBody(t, rr, &resp)
	if resp.RowCount != 9 || strings.Join(resp.Headers, ",") != "name,skill,role" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if _, err := uuid.Parse(resp.TableID); err != nil {
		t.Errorf("tableId %q is not a uuid", resp.TableID)
	}
}

func TestUpload_Multipart(t *testing.T) {
	env := newTestEnv(t, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", "ignored")
	fw, err := mw.CreateFormFile("file", "roster.csv")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("name;skill\nAnn;A\nBob;B\n"))
	_ = mw.Close()

	rr := env.do(t, http.MethodPost, "/upload?delimiter=%3B", mw.FormDataContentType(), buf.Bytes())
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp api.TableResponse
	decodeBody(t, rr, &resp)
	if resp.RowCount != 2 {
		t.Errorf("rowCount = %d, want 2", resp.RowCount)
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		kind   api.ErrorKind
	}{
		{"malformed", "/upload", "name\nAnn\n", http.StatusBadRequest, api.KindMalformedInput},
		{"encoding", "/upload", "name,skill\nJos\xe9,A\n", http.StatusBadRequest, api.KindEncoding},
		{"unknown charset", "/upload?charset=klingon", roster, http.StatusBadRequest, api.KindEncoding},
		{"bad delimiter", "/upload?delimiter=ab", roster, http.StatusBadRequest, api.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 0)
			rr := env.do(t, http.MethodPost, tt.path, "text/csv", []byte(tt.body))
			expectError(t, rr, tt.status, tt.kind)
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnv(t, 16)
	rr := env.do(t, http.MethodPost, "/upload", "text/csv", []byte(roster))
	expectError(t, rr, http.StatusRequestEntityTooLarge, api.KindPayloadTooLarge)
}

func TestUpload_Latin1(t *testing.T) {
	env := newTestEnv(t, 0)
	rr := env.do(t, http.MethodPost, "/upload?charset=ISO-8859-1", "text/csv", []byte("name,skill\nJos\xe9,A\n"))
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestGenerate_Categorical(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.upload(t, roster)

	rr := env.postJSON(t, "/generate", api.GenerateRequest{
		TableID:    id,
		NumTeams:   2,
		Strategy:   "categorical",
		Categories: []api.Category{{Index: intPtr(1)}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp api.GenerateResponse
	decodeBody(t, rr, &resp)

	if len(resp.Teams) != 2 || len(resp.Members) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	seen := make(map[int]bool)
	for i, team := range resp.Teams {
		if len(team) != len(resp.Members[i]) {
			t.Errorf("team %d: %d rows but %d members", i, len(team), len(resp.Members[i]))
		}
		as := 0
		for _, row := range team {
			seen[row] = true
			if row < 5 {
				as++
			}
		}
		if as < 2 || as > 3 {
			t.Errorf("team %d has %d A members, want 2 or 3", i, as)
		}
	}
	if len(seen) != 9 {
		t.Errorf("covered %d rows, want 9", len(seen))
	}
}

func TestGenerate_Errors(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.upload(t, roster)

	tests := []struct {
		name   string
		req    any
		status int
		kind   api.ErrorKind
	}{
		{"zero teams", api.GenerateRequest{TableID: id, NumTeams: 0, Strategy: "random"},
			http.StatusBadRequest, api.KindInvalidTeamCount},
		{"too many teams", api.GenerateRequest{TableID: id, NumTeams: 10, Strategy: "random"},
			http.StatusBadRequest, api.KindInvalidTeamCount},
		{"missing category", api.GenerateRequest{TableID: id, NumTeams: 2, Strategy: "categorical"},
			http.StatusBadRequest, api.KindMissingCategory},
		{"unknown strategy", api.GenerateRequest{TableID: id, NumTeams: 2, Strategy: "alphabetical"},
			http.StatusBadRequest, api.KindUnknownStrategy},
		{"unknown column", api.GenerateRequest{TableID: id, NumTeams: 2, Strategy: "categorical",
			Categories: []api.Category{{Index: intPtr(7)}}},
			http.StatusBadRequest, api.KindUnknownColumn},
		{"label column", api.GenerateRequest{TableID: id, NumTeams: 2, Strategy: "categorical",
			Categories: []api.Category{{Index: intPtr(0)}}},
			http.StatusBadRequest, api.KindUnknownColumn},
		{"duplicate category", api.GenerateRequest{TableID: id, NumTeams: 2, Strategy: "categorical",
			Categories: []api.Category{{Index: intPtr(1)}, {Index: intPtr(1)}}},
			http.StatusBadRequest, api.KindDuplicateCategory},
		{"negative weight", api.GenerateRequest{TableID: id, NumTeams: 2, Strategy: "categorical",
			Categories: []api.Category{{Index: intPtr(1), Values: []api.CategoryValue{{ValueIndex: intPtr(0), Weight: -1}}}}},
			http.StatusBadRequest, api.KindInvalidWeight},
		{"missing index", api.GenerateRequest{TableID: id, NumTeams: 2, Strategy: "categorical",
			Categories: []api.Category{{}}},
			http.StatusBadRequest, api.KindValidation},
		{"bad table id", api.GenerateRequest{TableID: "nope", NumTeams: 2, Strategy: "random"},
			http.StatusBadRequest, api.KindValidation},
		{"unknown table", api.GenerateRequest{TableID: uuid.NewString(), NumTeams: 2, Strategy: "random"},
			http.StatusNotFound, api.KindTableNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, env.postJSON(t, "/generate", tt.req), tt.status, tt.kind)
		})
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, 0)
	rr := env.do(t, http.MethodPost, "/generate", "application/json", []byte("{"))
	expectError(t, rr, http.StatusBadRequest, api.KindValidation)

	rr = env.do(t, http.MethodPost, "/generate", "application/json", nil)
	expectError(t, rr, http.StatusBadRequest, api.KindValidation)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.upload(t, roster)

	rr := env.postJSON(t, "/search", api.SearchRequest{
		TableID:             id,
		NumTeams:            2,
		Strategy:            "random",
		Categories:          []api.Category{{Index: intPtr(2)}, {Index: intPtr(1)}},
		TargetCategoryIndex: 1,
		TrialBudget:         20,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp api.SearchResponse
	decodeBody(t, rr, &resp)

	if resp.Trials != 20 {
		t.Errorf("trials = %d, want 20", resp.Trials)
	}
	if resp.BestTrial < 0 || resp.BestTrial >= 20 {
		t.Errorf("bestTrial = %d out of range", resp.BestTrial)
	}
	if len(resp.Distribution) != 2 {
		t.Fatalf("distribution has %d teams, want 2", len(resp.Distribution))
	}
	if _, ok := resp.Distribution[0]["A"]; !ok {
		t.Errorf("distribution not keyed by skill values: %v", resp.Distribution)
	}
}

func TestSearch_Errors(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.upload(t, roster)
	cats := []api.Category{{Index: intPtr(1)}}

	tests := []struct {
		name string
		req  api.SearchRequest
		kind api.ErrorKind
	}{
		{"zero budget", api.SearchRequest{TableID: id, NumTeams: 2, Strategy: "random", Categories: cats},
			api.KindInvalidTrialBudget},
		{"budget above max", api.SearchRequest{TableID: id, NumTeams: 2, Strategy: "random", Categories: cats,
			TrialBudget: 51}, api.KindInvalidTrialBudget},
		{"no categories", api.SearchRequest{TableID: id, NumTeams: 2, Strategy: "random", TrialBudget: 5},
			api.KindMissingCategory},
		{"target out of range", api.SearchRequest{TableID: id, NumTeams: 2, Strategy: "random", Categories: cats,
			TargetCategoryIndex: 1, TrialBudget: 5}, api.KindMissingCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, env.postJSON(t, "/search", tt.req), http.StatusBadRequest, tt.kind)
		})
	}
}

func TestSearch_BudgetAboveMaxNamesLimit(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.upload(t, roster)

	rr := env.postJSON(t, "/search", api.SearchRequest{
		TableID: id, NumTeams: 2, Strategy: "random",
		Categories: []api.Category{{Index: intPtr(1)}}, TrialBudget: 51,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp api.ErrorResponse
	decodeBody(t, rr, &resp)
	if !strings.Contains(resp.Message, "maximum of 50") {
		t.Errorf("message = %q, want the configured maximum", resp.Message)
	}
}

func TestTables_GetAndDelete(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.upload(t, roster)

	rr := env.do(t, http.MethodGet, "/tables/"+id, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d: %s", rr.Code, rr.Body.String())
	}
	var resp api.TableResponse
	decodeBody(t, rr, &resp)
	if resp.TableID != id || resp.RowCount != 9 {
		t.Errorf("unexpected response: %+v", resp)
	}

	rr = env.do(t, http.MethodDelete, "/tables/"+id, "", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}
	if env.store.Len() != 0 {
		t.Errorf("store still holds %d keys", env.store.Len())
	}

	expectError(t, env.do(t, http.MethodGet, "/tables/"+id, "", nil), http.StatusNotFound, api.KindTableNotFound)
	expectError(t, env.do(t, http.MethodDelete, "/tables/"+id, "", nil), http.StatusNotFound, api.KindTableNotFound)
	expectError(t, env.do(t, http.MethodGet, "/tables/not-a-uuid", "", nil), http.StatusBadRequest, api.KindValidation)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, 0)
	rr := env.do(t, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var resp api.HealthResponse
	decodeBody(t, rr, &resp)
	if resp.Status != "ok" || resp.Checks["storage"] != "ok" {
		t.Errorf("unexpected response: %+v", resp)
	}

	env.store.Close()
	rr = env.do(t, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("closed store: got %d, want 503", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, 0)
	rr := env.do(t, http.MethodGet, "/metrics", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("got %d", rr.Code)
	}
}

func TestHandleDomainError_Internal(t *testing.T) {
	srv := NewServer(nil, nil, nil, nil, 0, zap.NewNop())
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	srv.handleDomainError(rr, req, errors.New("redis: connection refused"))
	expectError(t, rr, http.StatusInternalServerError, api.KindInternal)
	if strings.Contains(rr.Body.String(), "redis") {
		t.Error("internal detail leaked")
	}
}

func TestHandleDomainError_Context(t *testing.T) {
	srv := NewServer(nil, nil, nil, nil, 0, zap.NewNop())
	tests := []struct {
		name   string
		err    error
		status int
		kind   api.ErrorKind
	}{
		{"deadline", fmt.Errorf("search: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, api.KindTimeout},
		{"canceled", context.Canceled, statusClientClosedRequest, api.KindCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.handleDomainError(rr, httptest.NewRequest(http.MethodPost, "/search", http.NoBody), tt.err)
			expectError(t, rr, tt.status, tt.kind)
		})
	}
}

func TestSearch_CanceledRequest(t *testing.T) {
	env := newTestEnv(t, 0)
	id := env.upload(t, roster)

	body, err := json.Marshal(api.SearchRequest{
		TableID:     id,
		NumTeams:    2,
		Strategy:    "random",
		Categories:  []api.Category{{Index: intPtr(1)}},
		TrialBudget: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	expectError(t, rr, statusClientClosedRequest, api.KindCanceled)
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody).WithContext(context.Background()))
	expectError(t, rr, http.StatusInternalServerError, api.KindInternal)
}
