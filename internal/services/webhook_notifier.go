package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dash-ai/backend/internal/models"
	"go.uber.org/zap"
)

// WebhookNotifier reports approval decisions to the external automation
// endpoint. One POST per call: no retries, no dedup by draft id. Any HTTP
// response counts as acknowledged; only a transport failure is an error.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewWebhookNotifier(url string, log *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

func (n *WebhookNotifier) NotifyApproval(ctx context.Context, sess *models.Session, draft *models.Draft) error {
	record := models.NewApprovalRecord(sess, draft)

	body, err := json.Marshal(record)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("approval webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	n.log.Info("approval webhook sent",
		zap.String("draft_id", record.DraftID),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
