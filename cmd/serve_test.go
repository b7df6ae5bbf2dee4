package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/founder-resolve/internal/config"
	"github.com/sells-group/founder-resolve/internal/founder"
	"github.com/sells-group/founder-resolve/internal/importer"
	"github.com/sells-group/founder-resolve/internal/resolve"
	"github.com/sells-group/founder-resolve/internal/testsupport"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{Port: 8080, RateLimit: 100, RateBurst: 100, CORSOrigins: []string{"*"}}
}

func newTestRouter(t *testing.T, seed ...*founder.Founder) (http.Handler, *testsupport.FounderStore) {
	t.Helper()
	store := testsupport.NewFounderStore(seed...)
	im := importer.New(store, testsupport.NewDirectory("Acme"), importer.DefaultOptions())
	return buildRouter(im, testServerConfig()), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := doJSON(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Import(t *testing.T) {
	h, store := newTestRouter(t)
	rr := doJSON(t, h, http.MethodPost, "/founders/import", map[string]any{
		"records": []map[string]any{
			{"name": "Amy Lee", "email": "amy@x.com", "company_name": "Acme"},
			{"name": ""},
			{"name": "Bob Chen"},
		},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var out importer.Outcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 2, out.Created)
	assert.Equal(t, 1, out.CompanyLinks)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, 1, out.Errors[0].Row)
	assert.Len(t, store.All(), 2)
}

func TestRouter_ImportWithDecisions(t *testing.T) {
	existing := founder.NewFounder(founder.Record{Name: "Amy Lee", Email: "amy@x.com"}, "")
	h, store := newTestRouter(t, existing)

	req := httptest.NewRequest(http.MethodPost, "/founders/import",
		bytes.NewBufferString(`{"records":[{"name":"Amy Lee","email":"amy@x.com"}],"decisions":{"0":"SKIP"}}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out importer.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, 0, store.Updates)
}

func TestRouter_ImportBadDecision(t *testing.T) {
	h, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/founders/import",
		bytes.NewBufferString(`{"records":[{"name":"Amy Lee"}],"decisions":{"0":"maybe"}}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown decision")
}

func TestRouter_ImportRequiresRecords(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := doJSON(t, h, http.MethodPost, "/founders/import", map[string]any{"records": []any{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_Preview(t *testing.T) {
	existing := founder.NewFounder(founder.Record{Name: "Jon Smith"}, "")
	h, store := newTestRouter(t, existing)

	rr := doJSON(t, h, http.MethodPost, "/founders/preview", map[string]any{
		"records": []map[string]any{{"name": "John Smith"}, {"name": "Zed Zulu"}},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var res importer.PreviewResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, resolve.MatchName, res.Candidates[0].MatchType)
	assert.Equal(t, existing.ID, res.Candidates[0].Founder.ID)
	assert.Equal(t, resolve.MatchNone, res.Candidates[1].MatchType)
	assert.Equal(t, 0, store.Creates)
}

func TestRouter_Search(t *testing.T) {
	h, _ := newTestRouter(t,
		founder.NewFounder(founder.Record{Name: "Jon Smith"}, ""),
		founder.NewFounder(founder.Record{Name: "Jane Doe"}, ""),
	)

	rr := doJSON(t, h, http.MethodGet, "/founders/search?name=John+Smith", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var results []resolve.ScoredFounder
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Jon Smith", results[0].Founder.Name)
	assert.Equal(t, 90, results[0].Similarity)

	rr = doJSON(t, h, http.MethodGet, "/founders/search?name=Nobody", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestRouter_SearchValidation(t *testing.T) {
	h, _ := newTestRouter(t)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodGet, "/founders/search", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodGet, "/founders/search?name=x&threshold=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, h, http.MethodGet, "/founders/search?name=x&threshold=101", nil).Code)
}

func TestRouter_RateLimited(t *testing.T) {
	store := testsupport.NewFounderStore()
	im := importer.New(store, nil, importer.DefaultOptions())
	sc := testServerConfig()
	sc.RateLimit, sc.RateBurst = 0.001, 1
	h := buildRouter(im, sc)

	first := doJSON(t, h, http.MethodGet, "/founders/search?name=x", nil)
	second := doJSON(t, h, http.MethodGet, "/founders/search?name=x", nil)
	health := doJSON(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, health.Code, "health is not rate limited")
}

func TestRouter_CORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/founders/import", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
