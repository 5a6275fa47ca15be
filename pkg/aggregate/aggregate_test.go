package aggregate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bybitsnap/pkg/snapshot"
	"bybitsnap/pkg/storage"
)

func ptr(v float64) *float64 { return &v }

func forecastFixture(ethLast float64) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Mode:    snapshot.ModeForecast,
		ETHSpot: &snapshot.SpotReading{Last: ptr(ethLast)},
		BTCSpot: &snapshot.SpotReading{Last: ptr(67000)},
		Calc:    &snapshot.CalcBlock{ATR1d: ptr(16.5), OrderbookImbalancePct: ptr(-1.8)},
		Derivs:  &snapshot.DerivsBlock{FundingETHPct: ptr(0.009), OIETH: ptr(3.42)},
		Levels:  &snapshot.Levels{Support: []float64{4050, 3970}, Resistance: []float64{4250, 4320}},
	}
}

func reviewFixture(ethLast float64) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Mode:    snapshot.ModeReview,
		ETHSpot: &snapshot.SpotReading{Last: ptr(ethLast)},
		BTCSpot: &snapshot.SpotReading{Last: ptr(68000)},
		Calc:    &snapshot.CalcBlock{VWAPToday: ptr(4135.2)},
		Derivs:  &snapshot.DerivsBlock{FundingETHPct: ptr(0.011), OIETH: ptr(3.5)},
	}
}

func TestChangePct(t *testing.T) {
	v := changePct(ptr(100), ptr(105))
	require.NotNil(t, v)
	assert.InDelta(t, 5.0, *v, 1e-9)

	assert.Nil(t, changePct(nil, ptr(105)), "absent forecast is blank, not an error")
	assert.Nil(t, changePct(ptr(100), nil), "absent review is blank, not an error")
	assert.Nil(t, changePct(ptr(0), ptr(105)))
}

func TestRenderCSV(t *testing.T) {
	pairs := []DayPair{
		{Date: "2025-06-01", Forecast: forecastFixture(100), Review: reviewFixture(105)},
		{Date: "2025-06-02", Forecast: forecastFixture(4100)},
	}
	body, err := RenderCSV(pairs)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(csvHeaders, ","), lines[0])

	first := strings.Split(lines[1], ",")
	require.Len(t, first, len(csvHeaders))
	assert.Equal(t, "2025-06-01", first[0])
	assert.Equal(t, "100", first[1])
	assert.Equal(t, "105", first[2])
	assert.Equal(t, "5", first[3])

	second := strings.Split(lines[2], ",")
	assert.Equal(t, "4100", second[1])
	assert.Equal(t, "", second[2], "missing review leaves blanks")
	assert.Equal(t, "", second[3])
	assert.Equal(t, "4050", second[14])
	assert.Equal(t, "4320", second[17])
}

func TestRenderMarkdown(t *testing.T) {
	pairs := []DayPair{
		{Date: "2025-06-01", Forecast: forecastFixture(100), Review: reviewFixture(105)},
		{Date: "2025-06-02", Forecast: forecastFixture(4100)},
	}
	md := RenderMarkdown(pairs, "snapshots")

	assert.Contains(t, md, "[forecast](snapshots/2025-06-01_forecast.json)")
	assert.Contains(t, md, "[review](snapshots/2025-06-01_review.json)")
	assert.Contains(t, md, "5.00%")
	assert.Contains(t, md, "S: 4050/3970 • R: 4250/4320")

	for _, line := range strings.Split(md, "\n") {
		if strings.Contains(line, "2025-06-02") {
			assert.Contains(t, line, "—", "missing review renders a dash link")
		}
	}
}

func TestParseName(t *testing.T) {
	date, mode, ok := parseName("2025-06-01_forecast.json")
	require.True(t, ok)
	assert.Equal(t, "2025-06-01", date)
	assert.Equal(t, snapshot.ModeForecast, mode)

	_, mode, ok = parseName("2025-06-01_review.json")
	require.True(t, ok)
	assert.Equal(t, snapshot.ModeReview, mode)

	for _, bad := range []string{"README.md", "noseparator.json", "_forecast.json", "2025-06-01_other.json"} {
		_, _, ok := parseName(bad)
		assert.False(t, ok, bad)
	}
}

// TestAggregatorRun drives the whole pipeline against a fake contents
// API and checks both artifacts are written as full overwrites.
func TestAggregatorRun(t *testing.T) {
	files := map[string][]byte{}
	encode := func(v interface{}) []byte {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		return raw
	}
	files["snapshots/2025-06-01_forecast.json"] = encode(forecastFixture(100))
	files["snapshots/2025-06-01_review.json"] = encode(reviewFixture(105))
	files["snapshots/2025-06-02_review.json"] = encode(reviewFixture(4000)) // orphan review, no row

	written := map[string][]byte{}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/repos/tester/snapshots/contents/")
		switch r.Method {
		case http.MethodGet:
			if path == "snapshots" {
				var listing []map[string]string
				for name := range files {
					listing = append(listing, map[string]string{
						"name": strings.TrimPrefix(name, "snapshots/"),
						"type": "file",
					})
				}
				_ = json.NewEncoder(w).Encode(listing)
				return
			}
			body, ok := files[path]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"sha":      "sha-" + path,
				"encoding": "base64",
				"content":  base64.StdEncoding.EncodeToString(body),
			})
		case http.MethodPut:
			raw, _ := io.ReadAll(r.Body)
			var payload struct {
				Content string `json:"content"`
			}
			require.NoError(t, json.Unmarshal(raw, &payload))
			decoded, err := base64.StdEncoding.DecodeString(payload.Content)
			require.NoError(t, err)
			written[path] = decoded
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer api.Close()

	cfg := &storage.Config{Repo: "tester/snapshots", Token: "tok", APIBase: api.URL, RawBase: api.URL + "/raw-disabled"}
	require.NoError(t, cfg.Normalise())
	gw := storage.NewGateway(cfg)

	agg := New(gw, WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, agg.Run(context.Background()))

	csvBody, ok := written["analytics/daily_summary.csv"]
	require.True(t, ok)
	assert.Contains(t, string(csvBody), "2025-06-01,100,105,5")
	assert.NotContains(t, string(csvBody), "2025-06-02", "orphan review must not produce a row")

	mdBody, ok := written["analytics/README.md"]
	require.True(t, ok)
	assert.Contains(t, string(mdBody), "| 2025-06-01 |")
}
