package main

import (
	"Hauler/pkg/engine"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ConsoleReporter outputs human-readable progress to the terminal
type ConsoleReporter struct{}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

func (r *ConsoleReporter) ReportProgress(update engine.ProgressUpdate) {
	fmt.Printf("\r%s (%s / %s)        ",
		update.Percent(), formatBytes(update.BytesDone), formatBytes(update.TotalBytes))
}

func (r *ConsoleReporter) ReportLog(level, message string) {
	fmt.Printf("\n[%s] %s\n", level, message)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// JSONEvent is the structured event format for machine-readable output
type JSONEvent struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// JSONProgressData contains progress information in structured form
type JSONProgressData struct {
	Fraction   float64 `json:"fraction"`
	BytesDone  int64   `json:"bytesDone"`
	TotalBytes int64   `json:"totalBytes"`
}

// JSONLogData contains log information in structured form
type JSONLogData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// JSONReporter outputs machine-readable JSON lines for scripting/automation
type JSONReporter struct {
	encoder *json.Encoder
}

func NewJSONReporter() *JSONReporter {
	return &JSONReporter{
		encoder: json.NewEncoder(os.Stdout),
	}
}

func (r *JSONReporter) emit(eventType string, data interface{}) {
	event := JSONEvent{
		Type:      eventType,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Data:      data,
	}
	r.encoder.Encode(event)
}

func (r *JSONReporter) ReportProgress(update engine.ProgressUpdate) {
	r.emit("progress", JSONProgressData{
		Fraction:   update.Fraction,
		BytesDone:  update.BytesDone,
		TotalBytes: update.TotalBytes,
	})
}

func (r *JSONReporter) ReportLog(level, message string) {
	r.emit("log", JSONLogData{Level: level, Message: message})
}

// EmitComplete emits a terminal event with the run's outcome
func (r *JSONReporter) EmitComplete(result engine.Result) {
	r.emit("complete", map[string]interface{}{
		"outcome":     string(result.Outcome),
		"message":     result.Message,
		"failures":    result.Failures,
		"errorLog":    result.ErrorLog,
		"bytesCopied": result.BytesCopied,
	})
}
