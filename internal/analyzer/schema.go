package analyzer

import (
	"cloud.google.com/go/vertexai/genai"
)

// resultSchema is the structured-output contract demanded from the model.
// Both the Vertex and REST clients constrain generation with it, and
// ParseResult validates decoded responses against the same required fields
// and enum domains.
func resultSchema() *genai.Schema {
	skinRatings := []string{"Great", "Good", "Average", "Poor", "Avoid"}

	skinRating := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Enum: skinRatings}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"productName": {
				Type:        genai.TypeString,
				Description: "Identify the exact commercial product name. STRICT MATCHING LOGIC: 1. Search for products containing these exact ingredients. 2. CRITICAL: The FIRST 10 INGREDIENTS must appear in the EXACT SAME ORDER as the input list. 3. Cross-reference with INCI Decoder, Sephora, Ulta, Nykaa, and Amazon. If unsure, provide a descriptive generic name.",
			},
			"overallScore": {
				Type:        genai.TypeNumber,
				Description: "A safety score from 0 (toxic) to 100 (very clean/safe).",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "A concise summary of the product's safety profile and key functions.",
			},
			"skinSuitability": {
				Type:        genai.TypeObject,
				Description: "Assessment of how well this product suits different skin types.",
				Properties: map[string]*genai.Schema{
					"oily":        skinRating(),
					"dry":         skinRating(),
					"sensitive":   skinRating(),
					"combination": skinRating(),
					"reasoning": {
						Type:        genai.TypeString,
						Description: "A one-sentence explanation of why it fits/doesn't fit these skin types.",
					},
				},
				Required: []string{"oily", "dry", "sensitive", "combination", "reasoning"},
			},
			"ingredients": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": {
							Type:        genai.TypeString,
							Description: "INCI Name. CRITICAL: If text says 'Water and Glycerin', create two separate objects: 'Water' and 'Glycerin'.",
						},
						"functions": {
							Type:        genai.TypeArray,
							Items:       &genai.Schema{Type: genai.TypeString},
							Description: "List of functions (e.g., Preservative, Emollient)",
						},
						"safetyLevel": {
							Type:        genai.TypeString,
							Enum:        []string{"Safe", "Moderate", "Avoid", "Unknown"},
							Description: "Safety assessment category.",
						},
						"confidence": {
							Type:        genai.TypeString,
							Enum:        []string{"High", "Medium", "Low"},
							Description: "Confidence in the assessment based on amount of scientific data available. High = well studied, Low = ambiguous or lack of data.",
						},
						"ewgScore": {
							Type:        genai.TypeInteger,
							Description: "The specific EWG Skin Deep score (1-10). If the ingredient has a range (e.g., 3-6), use the MAXIMUM/WORST score. Return 0 if completely unknown.",
						},
						"restrictionFlags": {
							Type:        genai.TypeArray,
							Items:       &genai.Schema{Type: genai.TypeString},
							Description: "List names of major clean standards that ban/restrict this ingredient (e.g., 'Credo Dirty List', 'Sephora Clean', 'Beauty Heroes', 'Made Safe'). Empty if none.",
						},
						"description": {
							Type:        genai.TypeString,
							Description: "A detailed 2-3 sentence explanation of the ingredient's function, mechanism of action, and specific safety concerns or benefits.",
						},
						"sources": {
							Type:        genai.TypeArray,
							Description: "List of 1-3 specific scientific references. Prioritize CIR Final Reports and SCCS Opinions.",
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"title": {
										Type:        genai.TypeString,
										Description: "The exact title of the scientific paper, CIR report, or SCCS opinion.",
									},
								},
								Required: []string{"title"},
							},
						},
					},
					Required: []string{"name", "functions", "safetyLevel", "confidence", "description", "ewgScore", "restrictionFlags"},
				},
			},
		},
		Required: []string{"overallScore", "summary", "ingredients", "skinSuitability", "productName"},
	}
}

var schemaTypeNames = map[genai.Type]string{
	genai.TypeString:  "STRING",
	genai.TypeNumber:  "NUMBER",
	genai.TypeInteger: "INTEGER",
	genai.TypeBoolean: "BOOLEAN",
	genai.TypeArray:   "ARRAY",
	genai.TypeObject:  "OBJECT",
}

// schemaJSON renders a genai schema in the OpenAPI-style JSON form the
// generativelanguage REST API expects, so the REST client reuses the same
// schema definition as the Vertex client.
func schemaJSON(s *genai.Schema) map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": schemaTypeNames[s.Type]}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = schemaJSON(s.Items)
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = schemaJSON(p)
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}
