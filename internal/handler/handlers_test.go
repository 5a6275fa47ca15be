package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bybitsnap/internal/config"
	"bybitsnap/internal/svc"
	"bybitsnap/pkg/snapshot"
	"bybitsnap/pkg/storage"
)

// newTestContext wires a service context against a fake raw-content host
// serving the given snapshot files keyed by store path.
func newTestContext(t *testing.T, proxyToken string, files map[string]string) *svc.ServiceContext {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path // /{owner}/{name}/{branch}/{dir}/{file}
		for stored, body := range files {
			if path == "/acme/snapshots/main/"+stored {
				fmt.Fprint(w, body)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(backend.Close)

	storageCfg := &storage.Config{
		Repo:    "acme/snapshots",
		RawBase: backend.URL,
		APIBase: backend.URL + "/api",
	}
	require.NoError(t, storageCfg.Normalise())

	snapCfg := snapshot.Config{Timezone: "UTC"}
	require.NoError(t, snapCfg.Normalise())

	cfg := config.Config{ProxyToken: proxyToken, Snapshot: snapCfg}
	return &svc.ServiceContext{Config: cfg, Store: storage.NewGateway(storageCfg)}
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func TestSnapshotHandlerServesStoredFile(t *testing.T) {
	svcCtx := newTestContext(t, "", map[string]string{
		"snapshots/2025-06-01_forecast.json": `{"mode":"forecast"}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/snapshot?date=2025-06-01&type=forecast", nil)
	rec := httptest.NewRecorder()
	snapshotHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"mode":"forecast"}`, rec.Body.String())
}

func TestSnapshotHandlerTokenGate(t *testing.T) {
	svcCtx := newTestContext(t, "sekrit", map[string]string{
		"snapshots/2025-06-01_forecast.json": `{"mode":"forecast"}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/snapshot?date=2025-06-01&type=forecast", nil)
	rec := httptest.NewRecorder()
	snapshotHandler(svcCtx)(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", detail(t, rec))

	req = httptest.NewRequest(http.MethodGet, "/snapshot?date=2025-06-01&type=forecast&token=sekrit", nil)
	rec = httptest.NewRecorder()
	snapshotHandler(svcCtx)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSnapshotHandlerRejectsBadType(t *testing.T) {
	svcCtx := newTestContext(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/snapshot?date=2025-06-01&type=nightly", nil)
	rec := httptest.NewRecorder()
	snapshotHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "type must be forecast|review", detail(t, rec))
}

func TestSnapshotHandlerNotFound(t *testing.T) {
	svcCtx := newTestContext(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/snapshot?date=2025-06-01&type=review", nil)
	rec := httptest.NewRecorder()
	snapshotHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "snapshot not found", detail(t, rec))
}

func TestTodayHandlerUsesLocalDate(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	svcCtx := newTestContext(t, "", map[string]string{
		"snapshots/" + today + "_review.json": `{"mode":"review"}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/today?type=review", nil)
	rec := httptest.NewRecorder()
	todayHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"mode":"review"}`, rec.Body.String())
}

func TestTodayHandlerRejectsBadType(t *testing.T) {
	svcCtx := newTestContext(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/today?type=daily", nil)
	rec := httptest.NewRecorder()
	todayHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "type must be forecast|review", detail(t, rec))
}

func TestTodayHandlerHasNoTokenGate(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	svcCtx := newTestContext(t, "sekrit", map[string]string{
		"snapshots/" + today + "_forecast.json": `{"mode":"forecast"}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/today?type=forecast", nil)
	rec := httptest.NewRecorder()
	todayHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzHandler(t *testing.T) {
	svcCtx := newTestContext(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	healthzHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		OK   bool   `json:"ok"`
		Time string `json:"time"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	_, err := time.Parse(time.RFC3339, resp.Time)
	assert.NoError(t, err)
}
