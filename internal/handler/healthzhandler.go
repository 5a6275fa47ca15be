package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"bybitsnap/internal/logic"
	"bybitsnap/internal/svc"
)

func healthzHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewHealthzLogic(r.Context(), svcCtx)
		resp, err := l.Healthz()
		if err != nil {
			writeError(w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
