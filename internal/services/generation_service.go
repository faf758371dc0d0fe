// internal/services/generation_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flypig-ai/flypig-backend/internal/config"
	"github.com/flypig-ai/flypig-backend/internal/gamma"
	"github.com/flypig-ai/flypig-backend/internal/models"
)

// GammaClient is the slice of the Gamma API the generation flow needs.
type GammaClient interface {
	CreateGeneration(ctx context.Context, req gamma.GenerationRequest) (string, error)
	GetGeneration(ctx context.Context, id string) (*gamma.Generation, error)
}

type GenerationService struct {
	client GammaClient
	poller *gamma.Poller

	// lifecycle bounds the background watch loops; Close cancels it so no
	// poll outlives server shutdown.
	lifecycle context.Context
	stop      context.CancelFunc
}

func NewGenerationService(client GammaClient, cfg *config.Config) *GenerationService {
	interval := time.Duration(cfg.Gamma.PollInterval) * time.Second
	lifecycle, stop := context.WithCancel(context.Background())
	return &GenerationService{
		client:    client,
		poller:    gamma.NewPoller(client, interval, cfg.Gamma.MaxAttempts),
		lifecycle: lifecycle,
		stop:      stop,
	}
}

// Close stops all background polling loops. In-flight jobs are abandoned, not
// cancelled remotely.
func (s *GenerationService) Close() {
	s.stop()
}

// Start submits a generation job for one content topic and begins driving it
// to completion in the background. It returns the job identifier.
func (s *GenerationService) Start(ctx context.Context, info *models.ProductInfo, analysis *models.AnalysisResult, topic *models.ContentTopic) (string, error) {
	req := gamma.GenerationRequest{
		InputText: DocumentText(info, analysis, topic),
		TextMode:  "generate",
		Format:    "document",
		Model:     "pro",
		Language:  "zh-TW",
		Layout:    "professional",
		Style:     "default",
	}

	id, err := s.client.CreateGeneration(ctx, req)
	if err != nil {
		return "", err
	}

	go s.watch(id)
	return id, nil
}

// watch drives one job to a terminal state. Each job gets its own loop; the
// loops share no state beyond the poller's flag and outcome maps.
func (s *GenerationService) watch(id string) {
	gen, err := s.poller.Wait(s.lifecycle, id)
	switch {
	case err == nil:
		logrus.WithFields(logrus.Fields{"generation_id": id, "url": gen.GammaURL}).Info("Generation completed")
	case errors.Is(err, gamma.ErrCancelled), errors.Is(err, context.Canceled):
		// Cancelled jobs and shutdown stop silently.
	case errors.Is(err, gamma.ErrTimeout):
		logrus.WithField("generation_id", id).Warn("Generation timed out")
	default:
		logrus.WithError(err).WithField("generation_id", id).Error("Generation polling failed")
	}
}

// CheckStatus reports the state of a job. A locally recorded terminal
// outcome wins over the remote view, so a job that timed out here is never
// reported completed afterward.
func (s *GenerationService) CheckStatus(ctx context.Context, id string) (*gamma.Generation, error) {
	if out, ok := s.poller.Outcome(id); ok {
		if out.Err != nil && out.Generation == nil {
			return nil, out.Err
		}
		return out.Generation, nil
	}
	return s.client.GetGeneration(ctx, id)
}

// Cancel marks a job so no further polls are issued for it.
func (s *GenerationService) Cancel(id string) {
	s.poller.Cancel(id)
}

// DocumentText assembles the document body sent to the generation service.
func DocumentText(info *models.ProductInfo, analysis *models.AnalysisResult, topic *models.ContentTopic) string {
	return fmt.Sprintf("# %s\n## 產品: %s\n%s\n%s\n",
		topic.Topic,
		info.Name,
		strings.Join(analysis.ProductCoreValue.MainFeatures, " "),
		topic.Description,
	)
}
