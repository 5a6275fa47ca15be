package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"bybitsnap/internal/svc"
	"bybitsnap/internal/types"
)

type HealthzLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
	now    func() time.Time
}

func NewHealthzLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthzLogic {
	return &HealthzLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
		now:    time.Now,
	}
}

func (l *HealthzLogic) Healthz() (*types.HealthzResp, error) {
	loc := l.svcCtx.Config.Snapshot.Location()
	return &types.HealthzResp{
		OK:   true,
		Time: l.now().In(loc).Format(time.RFC3339),
	}, nil
}
