package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/franckalain/dermscan/internal/models"
)

// extractJSON strips a markdown code fence if the model wrapped its JSON in
// one despite the JSON response mime type.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ParseResult decodes and validates a raw model response body against the
// result schema. Any failure wraps ErrMalformedResponse.
func ParseResult(text string) (*models.AnalysisResult, error) {
	text = extractJSON(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response body", ErrMalformedResponse)
	}

	// Check required top-level keys on a raw map first; a zero value after
	// unmarshal is indistinguishable from an absent field.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, field := range []string{"overallScore", "summary", "ingredients"} {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: missing required field %q", ErrMalformedResponse, field)
		}
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if err := validateResult(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &result, nil
}

// validateResult enforces the schema constraints the decoder cannot:
// enum domains and numeric ranges.
func validateResult(r *models.AnalysisResult) error {
	if r.OverallScore < 0 || r.OverallScore > 100 {
		return fmt.Errorf("overallScore %v outside 0-100", r.OverallScore)
	}
	for i, ing := range r.Ingredients {
		if ing.Name == "" {
			return fmt.Errorf("ingredient %d has an empty name", i)
		}
		if !ing.SafetyLevel.Valid() {
			return fmt.Errorf("ingredient %q has invalid safetyLevel %q", ing.Name, ing.SafetyLevel)
		}
		if !ing.Confidence.Valid() {
			return fmt.Errorf("ingredient %q has invalid confidence %q", ing.Name, ing.Confidence)
		}
		if ing.EWGScore < 0 || ing.EWGScore > 10 {
			return fmt.Errorf("ingredient %q has ewgScore %d outside 0-10", ing.Name, ing.EWGScore)
		}
	}
	if ss := r.SkinSuitability; ss != nil {
		for skinType, rating := range map[string]models.SkinRating{
			"oily":        ss.Oily,
			"dry":         ss.Dry,
			"sensitive":   ss.Sensitive,
			"combination": ss.Combination,
		} {
			if !rating.Valid() {
				return fmt.Errorf("skinSuitability.%s has invalid rating %q", skinType, rating)
			}
		}
		if ss.Reasoning == "" {
			return fmt.Errorf("skinSuitability is missing reasoning")
		}
	}
	return nil
}
