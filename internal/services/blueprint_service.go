package services

import (
	"context"
	"time"

	"github.com/dash-ai/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlueprintService validates composer input and hands the resulting draft
// to the review gate. No partial draft is ever handed forward: a failed
// constraint returns a ValidationError and nothing else happens.
type BlueprintService struct {
	generator *GeneratorClient
	reviews   *ReviewService
	log       *zap.Logger
}

func NewBlueprintService(generator *GeneratorClient, reviews *ReviewService, log *zap.Logger) *BlueprintService {
	return &BlueprintService{
		generator: generator,
		reviews:   reviews,
		log:       log,
	}
}

// Submit validates the input, builds the draft, requests generated content
// when a generator is configured, and opens the review. Generation is best
// effort: a failure is logged and the draft proceeds without content, which
// the review renders as its empty state.
func (s *BlueprintService) Submit(ctx context.Context, sess *models.Session, in models.BlueprintInput) (*models.Draft, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	draft := models.Draft{
		ID:            uuid.New(),
		CampaignName:  in.CampaignName,
		ContentIdea:   in.ContentIdea,
		ReferenceFile: in.ReferenceFile,
		Platforms:     in.Platforms.Slice(),
		Format:        in.Format,
		CreatedAt:     time.Now(),
	}

	if s.generator.Enabled() {
		result, err := s.generator.Generate(ctx, &draft)
		if err != nil {
			s.log.Warn("content generation failed",
				zap.String("draft_id", draft.ID.String()),
				zap.Error(err),
			)
		} else {
			draft.ContentText = result.ContentText
			draft.ImageURL = result.ImageURL
		}
	}

	s.reviews.Open(sess, draft)

	s.log.Info("draft submitted for review",
		zap.String("draft_id", draft.ID.String()),
		zap.String("campaign", draft.CampaignName),
		zap.Bool("has_content", draft.Reviewable()),
	)
	return &draft, nil
}
