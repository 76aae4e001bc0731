package models

import "time"

// Session statuses reported by the sensor client.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// SessionMetadata 会话元数据
type SessionMetadata struct {
	Status    string `json:"status"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// SessionRecord is a session as written by the sensor client: metadata plus a
// map of reading key to loosely typed fields. Values are kept as decoded JSON
// so that non-numeric pulse/breathing entries can be skipped during aggregation.
type SessionRecord struct {
	Metadata SessionMetadata           `json:"metadata"`
	Readings map[string]map[string]any `json:"readings,omitempty"`
}

// StatBlock summary statistics for one vital sign
type StatBlock struct {
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// SessionInfo 会话信息
type SessionInfo struct {
	StartedAt       string `json:"startedAt"`
	EndedAt         string `json:"endedAt"`
	DataPoints      int    `json:"dataPoints"`
	// 呼吸样本数；0 表示本次会话没有呼吸数据
	BreathingPoints int    `json:"breathingPoints"`
}

// AnalyticsSession is the per-session summary written once a session completes.
type AnalyticsSession struct {
	SessionID   string      `json:"sessionId"`
	UserID      string      `json:"userId"`
	Pulse       StatBlock   `json:"pulse"`
	Breathing   StatBlock   `json:"breathing"`
	SessionInfo SessionInfo `json:"sessionInfo"`
	ProcessedAt time.Time   `json:"processedAt"`
}

// SessionCompletedEvent is published on the session event stream when a
// session transitions to completed.
type SessionCompletedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

const EventTypeSessionCompleted = "session.completed"
