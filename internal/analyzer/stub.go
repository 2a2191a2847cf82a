package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/franckalain/dermscan/internal/models"
)

// StubAnalyzer is a deterministic, no-network Analyzer for tests and local
// end-to-end runs. It returns schema-valid JSON so parsing, validation and
// history writes exercise the full pipeline.
type StubAnalyzer struct{}

// NewStubAnalyzer creates a stub analyzer.
func NewStubAnalyzer() *StubAnalyzer { return &StubAnalyzer{} }

func (a *StubAnalyzer) Name() string { return "stub" }

func (a *StubAnalyzer) Load(ctx context.Context) error { return nil }

// Analyze fabricates a stable assessment from the input. Text inputs are
// split on commas and the "and"/"&"/"with" separators, mirroring the
// splitting rule the real prompt demands of the model.
func (a *StubAnalyzer) Analyze(ctx context.Context, text, image string) (*models.AnalysisResult, error) {
	if _, err := BuildParts(text, image); err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(text + image))
	short := hex.EncodeToString(sum[:4])

	names := splitIngredients(text)
	if len(names) == 0 && image != "" {
		names = []string{"Aqua", "Glycerin"}
	}

	levels := []models.SafetyLevel{models.SafetySafe, models.SafetyModerate, models.SafetyAvoid, models.SafetyUnknown}
	ingredients := make([]models.Ingredient, 0, len(names))
	for i, name := range names {
		level := levels[(int(sum[0])+i)%len(levels)]
		ingredients = append(ingredients, models.Ingredient{
			Name:             name,
			Functions:        []string{"Emollient"},
			SafetyLevel:      level,
			Confidence:       models.ConfidenceMedium,
			Description:      fmt.Sprintf("Stubbed assessment of %s.", name),
			EWGScore:         (int(sum[1]) + i) % 11,
			RestrictionFlags: []string{},
			Sources:          []models.IngredientSource{{Title: "CIR Final Report (stub)"}},
		})
	}

	result := models.AnalysisResult{
		ProductName:  fmt.Sprintf("Stub Product %s", short),
		OverallScore: float64(int(sum[2]) % 101),
		Summary:      fmt.Sprintf("Stubbed analysis of %d ingredients.", len(ingredients)),
		SkinSuitability: &models.SkinSuitability{
			Oily:        models.SkinGood,
			Dry:         models.SkinAverage,
			Sensitive:   models.SkinGood,
			Combination: models.SkinGood,
			Reasoning:   "Stubbed suitability reasoning.",
		},
		Ingredients: ingredients,
	}

	// Round-trip through the real parser so the stub exercises the same
	// validation path as the network backends.
	b, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return ParseResult(string(b))
}

// splitIngredients breaks a raw ingredient list into individual names the
// way the prompt instructs the model to: commas first, then the
// "and"/"&"/"with" separators inside each piece.
func splitIngredients(text string) []string {
	var names []string
	for _, piece := range strings.Split(text, ",") {
		pieces := []string{piece}
		for _, sep := range []string{" and ", " & ", " with "} {
			var next []string
			for _, p := range pieces {
				next = append(next, splitFold(p, sep)...)
			}
			pieces = next
		}
		for _, p := range pieces {
			if p = strings.TrimSpace(p); p != "" {
				names = append(names, p)
			}
		}
	}
	return names
}

// splitFold splits on a separator case-insensitively.
func splitFold(s, sep string) []string {
	var parts []string
	lower := strings.ToLower(s)
	lowerSep := strings.ToLower(sep)
	for {
		i := strings.Index(lower, lowerSep)
		if i < 0 {
			parts = append(parts, s)
			return parts
		}
		parts = append(parts, s[:i])
		s = s[i+len(sep):]
		lower = lower[i+len(lowerSep):]
	}
}
