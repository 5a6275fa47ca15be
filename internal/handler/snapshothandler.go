package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"bybitsnap/internal/logic"
	"bybitsnap/internal/svc"
	"bybitsnap/internal/types"
)

func snapshotHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SnapshotReq
		if err := httpx.Parse(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}

		l := logic.NewSnapshotLogic(r.Context(), svcCtx)
		body, err := l.Snapshot(&req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeRawJSON(w, body)
	}
}
