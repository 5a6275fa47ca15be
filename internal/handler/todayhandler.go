package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"bybitsnap/internal/logic"
	"bybitsnap/internal/svc"
	"bybitsnap/internal/types"
)

func todayHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TodayReq
		if err := httpx.Parse(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}

		l := logic.NewTodayLogic(r.Context(), svcCtx)
		body, err := l.Today(&req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeRawJSON(w, body)
	}
}
