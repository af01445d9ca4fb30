package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"goldendash/adapters/memory"
	"goldendash/app"
	"goldendash/domain/catalog"
	"goldendash/domain/columns"
	"goldendash/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "s3cret"

type testEnv struct {
	server   *Server
	examples *app.ExampleService
	quality  *memory.QualityRepository
	cookie   *http.Cookie
}

func fltPtr(v float64) *float64 { return &v }
func strPtr(v string) *string   { return &v }

func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	registry := columns.Default()

	examples, err := app.NewExampleService(memory.NewExampleRepository(), registry, time.Hour, log)
	require.NoError(t, err)

	_, err = examples.BulkUpsert(context.Background(), []catalog.Example{
		{Name: "Outbox", Status: catalog.StatusCompleted, Score: fltPtr(10), Description: strPtr("Relay events with **at-least-once** delivery.")},
		{Name: "Saga", Status: catalog.StatusCompleted, Score: fltPtr(20)},
		{Name: "Bulkhead", Status: catalog.StatusNew, Score: fltPtr(30)},
		{Name: "Retry", Status: catalog.StatusInProgress, Score: fltPtr(40)},
	})
	require.NoError(t, err)

	qualityRepo := memory.NewQualityRepository()
	server, err := NewServer(Deps{
		Examples:     examples,
		Scans:        app.NewScanService(qualityRepo, nil, 1, log),
		Registry:     registry,
		StateStorage: memory.NewStateStorage(),
		APIToken:     token,
		AppsDir:      t.TempDir(),
		GinMode:      gin.TestMode,
	}, log)
	require.NoError(t, err)

	return &testEnv{server: server, examples: examples, quality: qualityRepo}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) gesture(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return e.do(t, req)
}

func (e *testEnv) api(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t, testToken)
	req := httptest.NewRequest(http.MethodGet, "/api/examples", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := env.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	unconfigured := newTestEnv(t, "")
	rec = unconfigured.api(t, http.MethodGet, "/api/examples", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API not configured", decode(t, rec)["error"])
}

func TestAPIListExamples(t *testing.T) {
	env := newTestEnv(t, testToken)

	rec := env.api(t, http.MethodGet, "/api/examples", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 4, body["count"])

	first := body["examples"].([]any)[0].(map[string]any)
	assert.Contains(t, first, "average_metrics")
	assert.Contains(t, first, "created_at")

	rec = env.api(t, http.MethodGet, "/api/examples?status=completed&limit=1", "")
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = env.api(t, http.MethodGet, "/api/examples?limit=0", "")
	assert.EqualValues(t, 0, decode(t, rec)["count"])
}

func TestAPIBulkUpsert(t *testing.T) {
	env := newTestEnv(t, testToken)

	rec := env.api(t, http.MethodPost, "/api/examples/bulk_upsert", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.api(t, http.MethodPost, "/api/examples/bulk_upsert", `{"examples":[
		{"name":"Saga","status":"archived"},
		{"name":"Sharding","status":"new","score":55}
	]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["created_count"])
	assert.EqualValues(t, 1, body["updated_count"])
	assert.Equal(t, "Sharding", body["created"].([]any)[0].(map[string]any)["name"])

	rec = env.api(t, http.MethodPost, "/api/examples/bulk_upsert", `{"examples":[
		{"name":"Cache aside","status":"new"},
		{"name":"Broken","status":"unknown"}
	]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, false, body["success"])
	failure := body["errors"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 1, failure["index"])
	assert.Equal(t, "Broken", failure["name"])

	examples, err := env.examples.Repository().List(context.Background(), ports.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, examples, 5, "a rejected batch writes nothing")
}

func TestExamplesPageIssuesSession(t *testing.T) {
	env := newTestEnv(t, testToken)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/examples", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Showing 4 of 4 examples")
	assert.Contains(t, rec.Body.String(), "Leaderboard")
	require.NotNil(t, env.cookie)
	_, err := uuid.Parse(env.cookie.Value)
	assert.NoError(t, err)
	assert.Equal(t, 1, env.server.boards.len())
}

func TestFilterGestures(t *testing.T) {
	env := newTestEnv(t, testToken)
	env.do(t, httptest.NewRequest(http.MethodGet, "/examples", nil))

	rec := env.gesture(t, "/examples/filters/move", url.Values{"key": {"score"}, "to": {"featured"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Active Filters (1)")

	rec = env.gesture(t, "/examples/filters/slider", url.Values{"key": {"score"}, "handle": {"min"}, "value": {"50"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Showing 3 of 4 examples")
	assert.Contains(t, rec.Body.String(), "50th-100th percentile")
	assert.NotContains(t, rec.Body.String(), "<html", "gestures answer with the fragment only")

	// a fresh page load restores the persisted filters
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/examples", nil))
	assert.Contains(t, rec.Body.String(), "Showing 3 of 4 examples")

	rec = env.gesture(t, "/examples/filters/slider", url.Values{"key": {"score"}, "handle": {"side"}, "value": {"50"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSearchEchoesTypedTerm(t *testing.T) {
	env := newTestEnv(t, testToken)
	env.do(t, httptest.NewRequest(http.MethodGet, "/examples", nil))

	rec := env.gesture(t, "/examples/filters/search", url.Values{"q": {"Retry "}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Retry "`)
	assert.Contains(t, rec.Body.String(), "Showing 1 of 4 examples")
	assert.Contains(t, rec.Body.String(), "hx-preserve", "inputs survive the fragment swap")
}

func TestNameCellLinksToExample(t *testing.T) {
	env := newTestEnv(t, testToken)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/examples", nil))
	assert.Contains(t, rec.Body.String(), `">Outbox</a>`)

	env.gesture(t, "/examples/filters/move", url.Values{"key": {"name"}, "to": {"hidden"}})
	rec = env.gesture(t, "/examples/filters/move", url.Values{"key": {"category"}, "to": {"hidden"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `">Outbox</a>`)
	assert.NotContains(t, rec.Body.String(), `">Completed</a>`)
	assert.Contains(t, rec.Body.String(), `<span class="badge bg-green-100 text-green-700">Completed</span>`)
}

func TestFilterGestureWithoutHTMXRedirects(t *testing.T) {
	env := newTestEnv(t, testToken)

	req := httptest.NewRequest(http.MethodPost, "/examples/filters/search", strings.NewReader("q=saga"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(t, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/examples", rec.Header().Get("Location"))
}

func TestResetConfiguration(t *testing.T) {
	env := newTestEnv(t, testToken)
	env.do(t, httptest.NewRequest(http.MethodGet, "/examples", nil))
	env.gesture(t, "/examples/filters/search", url.Values{"q": {"saga"}})

	rec := env.gesture(t, "/examples/filters/reset", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Showing 1 of 4 examples", "unconfirmed reset keeps the state")

	rec = env.gesture(t, "/examples/filters/reset", url.Values{"confirmed": {"true"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/examples", nil))
	assert.Contains(t, rec.Body.String(), "Showing 4 of 4 examples")
}

func TestExamplePage(t *testing.T) {
	env := newTestEnv(t, testToken)
	examples, err := env.examples.Repository().List(context.Background(), ports.ListFilter{})
	require.NoError(t, err)

	var outbox catalog.Example
	for _, e := range examples {
		if e.Name == "Outbox" {
			outbox = e
		}
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/examples/"+strconv.FormatInt(outbox.ID, 10), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>at-least-once</strong>")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/examples/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/examples/abc", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExportWorkbook(t *testing.T) {
	env := newTestEnv(t, testToken)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/examples/export.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx files are zip archives")
}

func TestQualityPages(t *testing.T) {
	env := newTestEnv(t, testToken)
	a, err := env.quality.UpsertApp(context.Background(), "billing", "/srv/billing")
	require.NoError(t, err)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Quality Dashboard")
	assert.Contains(t, rec.Body.String(), "billing")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/apps/"+strconv.FormatInt(a.ID, 10), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/srv/billing")

	rec = env.do(t, httptest.NewRequest(http.MethodPost, "/apps/404/scan", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, httptest.NewRequest(http.MethodPost, "/apps/discover", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, testToken)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBoardRegistryEvictsIdleBoards(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := newBoardRegistry(time.Hour)
	reg.now = func() time.Time { return now }

	first, second := uuid.New(), uuid.New()
	reg.put(first, &app.FilterBoard{})

	now = now.Add(2 * time.Hour)
	reg.put(second, &app.FilterBoard{})

	_, ok := reg.get(first)
	assert.False(t, ok)
	_, ok = reg.get(second)
	assert.True(t, ok)
	assert.Equal(t, 1, reg.len())
}
