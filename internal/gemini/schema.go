// internal/gemini/schema.go
package gemini

import "fmt"

// Schema mirrors the subset of the Gemini responseSchema format this service
// uses. Every list-bearing field is marked required so the model cannot omit
// sections; descriptions guide the model only and are not enforced.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// checkRequired walks decoded model output against the schema's required
// lists. The schema is advisory upstream, so a missing required key anywhere
// in the tree means the model ignored it and the whole result is unusable.
func checkRequired(s *Schema, v interface{}) error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return fmt.Errorf("expected object, got %T", v)
		}
		for _, key := range s.Required {
			child, present := obj[key]
			if !present || child == nil {
				return fmt.Errorf("missing required field %q", key)
			}
			if err := checkRequired(s.Properties[key], child); err != nil {
				return fmt.Errorf("%q: %w", key, err)
			}
		}
	case TypeArray:
		items, ok := v.([]interface{})
		if !ok {
			return fmt.Errorf("expected array, got %T", v)
		}
		for i, item := range items {
			if err := checkRequired(s.Items, item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

const (
	TypeObject = "OBJECT"
	TypeArray  = "ARRAY"
	TypeString = "STRING"
)

func stringSchema() *Schema {
	return &Schema{Type: TypeString}
}

func stringListSchema() *Schema {
	return &Schema{Type: TypeArray, Items: stringSchema()}
}

// AnalysisSchema constrains the market-analysis call.
func AnalysisSchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"productCoreValue": {
				Type: TypeObject,
				Properties: map[string]*Schema{
					"mainFeatures":     stringListSchema(),
					"coreAdvantages":   stringListSchema(),
					"painPointsSolved": stringListSchema(),
				},
				Required: []string{"mainFeatures", "coreAdvantages", "painPointsSolved"},
			},
			"marketPositioning": {
				Type: TypeObject,
				Properties: map[string]*Schema{
					"culturalInsights": stringSchema(),
					"consumerHabits":   stringSchema(),
					"languageNuances":  stringSchema(),
					"searchTrends":     stringListSchema(),
				},
				Required: []string{"culturalInsights", "consumerHabits", "languageNuances", "searchTrends"},
			},
			"competitorAnalysis": {
				Type: TypeArray,
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						"brandName":         stringSchema(),
						"marketingStrategy": stringSchema(),
						"strengths":         stringListSchema(),
						"weaknesses":        stringListSchema(),
					},
					Required: []string{"brandName", "marketingStrategy", "strengths", "weaknesses"},
				},
			},
			"buyerPersonas": {
				Type: TypeArray,
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						"personaName":  stringSchema(),
						"demographics": stringSchema(),
						"interests":    stringListSchema(),
						"painPoints":   stringListSchema(),
						"keywords":     stringListSchema(),
					},
					Required: []string{"personaName", "demographics", "interests", "painPoints", "keywords"},
				},
			},
		},
		Required: []string{"productCoreValue", "marketPositioning", "competitorAnalysis", "buyerPersonas"},
	}
}

// ContentStrategySchema constrains the content-strategy call.
func ContentStrategySchema() *Schema {
	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"contentTopics": {
				Type: TypeArray,
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						"topic":            stringSchema(),
						"description":      stringSchema(),
						"focusKeyword":     stringSchema(),
						"longTailKeywords": stringListSchema(),
						"seoGuidance": {
							Type: TypeObject,
							Properties: map[string]*Schema{
								"keywordDensity":   stringSchema(),
								"semanticKeywords": stringListSchema(),
								"linkingStrategy": {
									Type: TypeObject,
									Properties: map[string]*Schema{
										"internal": stringSchema(),
										"external": stringSchema(),
									},
									Required: []string{"internal", "external"},
								},
							},
							Required: []string{"keywordDensity", "semanticKeywords", "linkingStrategy"},
						},
					},
					Required: []string{"topic", "description", "focusKeyword", "longTailKeywords", "seoGuidance"},
				},
			},
			"interactiveElements": {
				Type: TypeArray,
				Items: &Schema{
					Type: TypeObject,
					Properties: map[string]*Schema{
						"type":        stringSchema(),
						"description": stringSchema(),
					},
					Required: []string{"type", "description"},
				},
			},
			"ctaSuggestions": stringListSchema(),
		},
		Required: []string{"contentTopics", "interactiveElements", "ctaSuggestions"},
	}
}
