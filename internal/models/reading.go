package models

import "time"

// HealthReading a single vital-sign snapshot for a user
type HealthReading struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	HeartRate float64   `json:"heartRate"`
	Breathing float64   `json:"breathing"`
	Mood      *float64  `json:"mood,omitempty"`
}
