package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexadark/ffmpeg-api-service/internal/domain"
	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
	"github.com/alexadark/ffmpeg-api-service/internal/metrics"
)

// Notification is the payload POSTed to a job's callback URL when the job
// reaches a terminal state. Exactly one of Result and Error is set.
type Notification struct {
	JobID  string                 `json:"jobId"`
	Status domain.JobStatus       `json:"status"`
	Result *domain.AssemblyResult `json:"result,omitempty"`
	Error  *NotificationErr       `json:"error,omitempty"`
}

type NotificationErr struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

func notificationError(kind domain.Kind, message string) *NotificationErr {
	if kind == "" {
		return nil
	}
	return &NotificationErr{Kind: kind, Message: message}
}

// WebhookNotifier delivers completion callbacks. Delivery is best effort:
// one attempt, no retries, and a failed delivery never changes the job's
// stored outcome.
type WebhookNotifier struct {
	client *http.Client
}

func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		client: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Notify(callbackURL string, payload Notification) {
	if err := n.send(callbackURL, payload); err != nil {
		metrics.WebhooksTotal.WithLabelValues("error").Inc()
		logger.Warn.Printf("webhook delivery to %s failed for job %s: %v",
			logger.SanitizeForLog(callbackURL), payload.JobID, err)
		return
	}
	metrics.WebhooksTotal.WithLabelValues("ok").Inc()
	logger.Debug.Printf("webhook delivered for job %s", payload.JobID)
}

func (n *WebhookNotifier) send(callbackURL string, payload Notification) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := n.client.Post(callbackURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
