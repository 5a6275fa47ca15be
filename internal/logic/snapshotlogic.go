package logic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	"bybitsnap/internal/svc"
	"bybitsnap/internal/types"
	"bybitsnap/pkg/snapshot"
	"bybitsnap/pkg/storage"
)

type SnapshotLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSnapshotLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SnapshotLogic {
	return &SnapshotLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Snapshot serves a stored snapshot file verbatim. When a proxy token is
// configured the request must carry a matching token.
func (l *SnapshotLogic) Snapshot(req *types.SnapshotReq) (json.RawMessage, error) {
	if tok := l.svcCtx.Config.ProxyToken; tok != "" && req.Token != tok {
		return nil, newHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !snapshot.Mode(req.Type).Valid() {
		return nil, newHTTPError(http.StatusBadRequest, "type must be forecast|review")
	}

	path := l.svcCtx.Store.SnapshotPath(req.Date, req.Type)
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
