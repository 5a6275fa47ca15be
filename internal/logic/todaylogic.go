package logic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"bybitsnap/internal/svc"
	"bybitsnap/internal/types"
	"bybitsnap/pkg/snapshot"
	"bybitsnap/pkg/storage"
)

type TodayLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
	now    func() time.Time
}

func NewTodayLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TodayLogic {
	return &TodayLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
		now:    time.Now,
	}
}

// Today serves the snapshot for the current local date.
func (l *TodayLogic) Today(req *types.TodayReq) (json.RawMessage, error) {
	if !snapshot.Mode(req.Type).Valid() {
		return nil, newHTTPError(http.StatusBadRequest, "type must be forecast|review")
	}

	date := l.svcCtx.Config.Snapshot.DateStr(l.now())
	path := l.svcCtx.Store.SnapshotPath(date, req.Type)
	body, err := l.svcCtx.Store.Read(l.ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newHTTPError(http.StatusNotFound, "snapshot not found")
		}
		l.Errorf("read %s: %v", path, err)
		return nil, newHTTPError(http.StatusInternalServerError, "internal error")
	}
	return body, nil
}
