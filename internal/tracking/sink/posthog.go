package sink

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/architect/checklist-lab/pkg/logger"
	"go.uber.org/zap"
)

// PostHogSink posts events to the PostHog capture API. Failures are logged
// and dropped; callers never observe them.
type PostHogSink struct {
	apiKey string
	host   string
	client *http.Client
}

func NewPostHogSink(apiKey, host string) *PostHogSink {
	return &PostHogSink{
		apiKey: apiKey,
		host:   host,
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

type captureRequest struct {
	APIKey     string                 `json:"api_key"`
	Event      string                 `json:"event"`
	DistinctID string                 `json:"distinct_id"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Timestamp  string                 `json:"timestamp"`
}

func (s *PostHogSink) Capture(distinctID, event string, properties map[string]interface{}) {
	props := make(map[string]interface{}, len(properties)+1)
	for k, v := range properties {
		props[k] = v
	}
	props["$lib"] = "checklist-lab-server"

	body, err := json.Marshal(captureRequest{
		APIKey:     s.apiKey,
		Event:      event,
		DistinctID: distinctID,
		Properties: props,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Warn("sink: marshal failed", zap.Error(err))
		return
	}

	resp, err := s.client.Post(s.host+"/capture/", "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Warn("sink: capture failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.Warn("sink: capture rejected", zap.Int("status", resp.StatusCode))
	}
}
