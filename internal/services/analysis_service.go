// internal/services/analysis_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/flypig-ai/flypig-backend/internal/config"
	"github.com/flypig-ai/flypig-backend/internal/gemini"
	"github.com/flypig-ai/flypig-backend/internal/models"
)

// ModelClient is the slice of the Gemini client the analysis flow needs.
type ModelClient interface {
	GenerateText(ctx context.Context, prompt string, image *gemini.Image) (string, error)
	GenerateJSON(ctx context.Context, prompt string, schema *gemini.Schema, out interface{}) error
}

type AnalysisService struct {
	model ModelClient
	users UserStore
	cfg   *config.Config
}

func NewAnalysisService(model ModelClient, users UserStore, cfg *config.Config) *AnalysisService {
	return &AnalysisService{
		model: model,
		users: users,
		cfg:   cfg,
	}
}

// AnalyzeMarket runs the two-step analysis: an optional image-description
// pass, then the schema-constrained analysis call. The usage counter is
// incremented only after a successful analysis. userID may be empty for
// anonymous callers.
func (s *AnalysisService) AnalyzeMarket(ctx context.Context, userID string, info *models.ProductInfo) (*models.AnalysisResult, error) {
	if userID != "" {
		if err := s.checkQuota(userID); err != nil {
			return nil, err
		}
	}

	imageDescription := "No image provided."
	if info.Image != nil {
		description, err := s.model.GenerateText(ctx,
			"Describe the key visual features of the product in this image for a marketing analysis. Respond in Traditional Chinese.",
			&gemini.Image{MimeType: info.Image.MimeType, Base64: info.Image.Base64})
		if err != nil {
			// The image pass is best-effort; the analysis proceeds without it.
			logrus.WithError(err).Warn("Image description failed")
			imageDescription = "無法分析提供的圖片。"
		} else {
			imageDescription = description
		}
	}

	var result models.AnalysisResult
	if err := s.model.GenerateJSON(ctx, analysisPrompt(info, imageDescription), gemini.AnalysisSchema(), &result); err != nil {
		return nil, err
	}

	if userID != "" {
		if err := s.users.IncrementAnalysisCount(userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to increment analysis count")
		}
	}

	return &result, nil
}

// GenerateContentStrategy derives a content strategy from a prior analysis.
func (s *AnalysisService) GenerateContentStrategy(ctx context.Context, analysis *models.AnalysisResult) (*models.ContentStrategy, error) {
	var strategy models.ContentStrategy
	if err := s.model.GenerateJSON(ctx, strategyPrompt(analysis), gemini.ContentStrategySchema(), &strategy); err != nil {
		return nil, err
	}
	return &strategy, nil
}

func (s *AnalysisService) checkQuota(userID string) error {
	if s.cfg.Admin.AnalysisLimit <= 0 {
		return nil
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user.IsPaid || user.IsAdmin {
		return nil
	}
	if user.AnalysisCount >= s.cfg.Admin.AnalysisLimit {
		return ErrQuotaExceeded
	}
	return nil
}

func analysisPrompt(info *models.ProductInfo, imageDescription string) string {
	url := info.URL
	if url == "" {
		url = "Not provided."
	}

	return fmt.Sprintf(`
    You are a professional market analyst for an e-commerce agency. Your task is to conduct a comprehensive market analysis based on the provided product information and target market.
    **Product Information:**
    - Name: %s
    - URL: %s
    - Description & Features: %s
    - Visual Analysis from Image: %s
    **Target Market:** %s
    Return the entire analysis in a single, valid JSON object that strictly adheres to the provided schema. Analyze deeply and provide insightful, actionable results. The content within the JSON MUST be in Traditional Chinese (繁體中文).
  `, info.Name, url, info.Description, imageDescription, info.Market)
}

func strategyPrompt(analysis *models.AnalysisResult) string {
	personas := make([]string, 0, len(analysis.BuyerPersonas))
	for _, p := range analysis.BuyerPersonas {
		personas = append(personas, p.PersonaName)
	}

	core := analysis.ProductCoreValue
	return fmt.Sprintf(`
        You are a senior content strategist and SEO expert. Based on the detailed market analysis provided, create a comprehensive content and interaction strategy for the product.
        **Market Analysis Context:**
        - Product Core Value: Features: %s, Advantages: %s, Pain Points Solved: %s
        - Buyer Personas: %s
        - Target Market: %s
        Return the entire strategy in a single, valid JSON object that strictly adheres to the provided schema. The strategy should be creative, actionable, and tailored to the analysis. The content within the JSON MUST be in Traditional Chinese (繁體中文).
    `,
		strings.Join(core.MainFeatures, ", "),
		strings.Join(core.CoreAdvantages, ", "),
		strings.Join(core.PainPointsSolved, ", "),
		strings.Join(personas, ", "),
		analysis.MarketPositioning.CulturalInsights,
	)
}
