package types

// SnapshotReq selects a stored snapshot by date and type.
type SnapshotReq struct {
	Date  string `form:"date"`
	Type  string `form:"type"`
	Token string `form:"token,optional"`
}

// TodayReq selects today's snapshot by type.
type TodayReq struct {
	Type string `form:"type,optional"`
}

// HealthzResp is the liveness probe payload.
type HealthzResp struct {
	OK   bool   `json:"ok"`
	Time string `json:"time"`
}
