package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dash-ai/backend/internal/models"
	"go.uber.org/zap"
)

// GeneratorClient asks the external generation service for draft content.
// Generation happens entirely outside this service; a draft that comes back
// empty is still valid and renders the review's empty state.
type GeneratorClient struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewGeneratorClient(url string, log *zap.Logger) *GeneratorClient {
	return &GeneratorClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

// Enabled reports whether a generation endpoint is configured.
func (g *GeneratorClient) Enabled() bool {
	return g.url != ""
}

type generateRequest struct {
	DraftID       string   `json:"draft_id"`
	CampaignName  string   `json:"campaign_name"`
	ContentIdea   string   `json:"content_idea"`
	ReferenceFile string   `json:"reference_file,omitempty"`
	Platforms     []string `json:"platforms"`
	Format        string   `json:"format"`
}

type GenerateResult struct {
	ContentText string `json:"content_text"`
	ImageURL    string `json:"image_url"`
}

func (g *GeneratorClient) Generate(ctx context.Context, draft *models.Draft) (*GenerateResult, error) {
	platforms := make([]string, len(draft.Platforms))
	for i, p := range draft.Platforms {
		platforms[i] = string(p)
	}

	body, err := json.Marshal(generateRequest{
		DraftID:       draft.ID.String(),
		CampaignName:  draft.CampaignName,
		ContentIdea:   draft.ContentIdea,
		ReferenceFile: draft.ReferenceFile,
		Platforms:     platforms,
		Format:        string(draft.Format),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generator unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generator returned %d: %s", resp.StatusCode, string(b))
	}

	var result GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
