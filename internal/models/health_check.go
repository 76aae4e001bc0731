package models

// StatName identifies a vital sign the classifier knows about.
type StatName string

const (
	StatHeartbeat       StatName = "heartbeat"
	StatRespirationRate StatName = "respiration rate"
	StatMood            StatName = "mood"
)

// HealthCheckRequest 单项体征分类请求
type HealthCheckRequest struct {
	Sex        string   `json:"sex"`
	Age        int      `json:"age"`
	Weight     string   `json:"weight"`
	Height     string   `json:"height"`
	Conditions string   `json:"conditions"`
	StatValue  float64  `json:"statValue"`
	StatName   StatName `json:"statName"`
	Unit       string   `json:"unit"`
}

// Where a classification came from.
const (
	SourceCache     = "cache"
	SourceRemote    = "remote"
	SourceThreshold = "threshold"
)

// HealthCheckResponse 分类结果
type HealthCheckResponse struct {
	IsTypical bool     `json:"isTypical"`
	StatName  StatName `json:"statName"`
	Source    string   `json:"source"`
}
