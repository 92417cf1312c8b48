package domain

import "time"

type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	QwenConfigured bool      `json:"qwen_configured"`
	Database       string    `json:"database"`
}
