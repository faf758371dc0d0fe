// internal/models/analysis.go
package models

// ProductInfo is the user-submitted product description an analysis runs on.
// Immutable once submitted; consumed once per analysis request.
type ProductInfo struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description" validate:"required"`
	URL         string        `json:"url,omitempty"`
	Image       *ProductImage `json:"image,omitempty"`
	Market      string        `json:"market" validate:"required"`
}

type ProductImage struct {
	Base64   string `json:"base64" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
}

type ProductCoreValue struct {
	MainFeatures     []string `json:"mainFeatures"`
	CoreAdvantages   []string `json:"coreAdvantages"`
	PainPointsSolved []string `json:"painPointsSolved"`
}

type MarketPositioning struct {
	CulturalInsights string   `json:"culturalInsights"`
	ConsumerHabits   string   `json:"consumerHabits"`
	LanguageNuances  string   `json:"languageNuances"`
	SearchTrends     []string `json:"searchTrends"`
}

type Competitor struct {
	BrandName         string   `json:"brandName"`
	MarketingStrategy string   `json:"marketingStrategy"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
}

type BuyerPersona struct {
	PersonaName  string   `json:"personaName"`
	Demographics string   `json:"demographics"`
	Interests    []string `json:"interests"`
	PainPoints   []string `json:"painPoints"`
	Keywords     []string `json:"keywords"`
}

// AnalysisResult is the structured market analysis produced by the model.
// Treated as an opaque value when passed forward into strategy generation.
type AnalysisResult struct {
	ProductCoreValue   ProductCoreValue  `json:"productCoreValue"`
	MarketPositioning  MarketPositioning `json:"marketPositioning"`
	CompetitorAnalysis []Competitor      `json:"competitorAnalysis"`
	BuyerPersonas      []BuyerPersona    `json:"buyerPersonas"`
}

type SeoGuidance struct {
	KeywordDensity   string          `json:"keywordDensity"`
	SemanticKeywords []string        `json:"semanticKeywords"`
	LinkingStrategy  LinkingStrategy `json:"linkingStrategy"`
}

type LinkingStrategy struct {
	Internal string `json:"internal"`
	External string `json:"external"`
}

type ContentTopic struct {
	Topic            string      `json:"topic"`
	Description      string      `json:"description"`
	FocusKeyword     string      `json:"focusKeyword"`
	LongTailKeywords []string    `json:"longTailKeywords"`
	SeoGuidance      SeoGuidance `json:"seoGuidance"`
}

type InteractiveElement struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ContentStrategy is derived from an AnalysisResult by a second model call.
type ContentStrategy struct {
	ContentTopics       []ContentTopic       `json:"contentTopics"`
	InteractiveElements []InteractiveElement `json:"interactiveElements"`
	CtaSuggestions      []string             `json:"ctaSuggestions"`
}
