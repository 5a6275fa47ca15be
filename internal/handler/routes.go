package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"bybitsnap/internal/logic"
	"bybitsnap/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/snapshot",
				Handler: snapshotHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/today",
				Handler: todayHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/healthz",
				Handler: healthzHandler(serverCtx),
			},
		},
	)
}

// writeRawJSON serves a stored snapshot verbatim. Snapshot responses must
// never be cached: the review file for a date overwrites the day's state.
func writeRawJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	var herr *logic.HTTPError
	if errors.As(err, &herr) {
		writeDetail(w, herr.Status, herr.Detail)
		return
	}
	writeDetail(w, http.StatusInternalServerError, "internal error")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
