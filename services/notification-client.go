package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"planner-project/backend/schedule-service/models"

	"github.com/sony/gobreaker"
)

// NotificationClient posts reminder candidates to the notifications service
// over HTTP, going through a circuit breaker so a dead downstream does not
// hold sweep goroutines hostage.
type NotificationClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewNotificationClient(baseURL string, breaker *gobreaker.CircuitBreaker) *NotificationClient {
	return &NotificationClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		breaker: breaker,
	}
}

type notificationPayload struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Notify implements NotificationSink.
func (c *NotificationClient) Notify(ctx context.Context, task *models.Task) error {
	payload := notificationPayload{
		UserID:  task.OwnerID,
		Message: fmt.Sprintf("Reminder: task %q is due at %s", task.Title, task.Deadline.Format(time.RFC3339)),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/notifications", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("notifications service returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	return nil
}
