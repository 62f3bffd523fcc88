// Package events defines the messages pushed to browsers over /ws.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Sent once to every client after it connects
	MessageTypeConnect MessageType = "connect"

	// Sent when a pipeline run replaces report.json
	MessageTypeReportUpdated MessageType = "report:updated"
)

// Message is the envelope of every WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ConnectData is the payload of a connect message
type ConnectData struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

// ReportUpdated is the payload of a report:updated message
type ReportUpdated struct {
	Team        string         `json:"team"`
	Year        int            `json:"year"`
	GeneratedAt time.Time      `json:"generated_at"`
	RowCounts   map[string]int `json:"row_counts"`
}
