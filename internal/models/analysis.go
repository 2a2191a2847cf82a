package models

import (
	"encoding/json"
	"fmt"
)

// SafetyLevel is the per-ingredient safety assessment category.
type SafetyLevel string

const (
	SafetySafe     SafetyLevel = "Safe"
	SafetyModerate SafetyLevel = "Moderate"
	SafetyAvoid    SafetyLevel = "Avoid"
	SafetyUnknown  SafetyLevel = "Unknown"
)

// Valid reports whether the value is one of the known safety levels.
func (s SafetyLevel) Valid() bool {
	switch s {
	case SafetySafe, SafetyModerate, SafetyAvoid, SafetyUnknown:
		return true
	}
	return false
}

// Confidence reflects how much scientific data backs an assessment.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// SkinRating grades how well a product suits one skin type.
type SkinRating string

const (
	SkinGreat   SkinRating = "Great"
	SkinGood    SkinRating = "Good"
	SkinAverage SkinRating = "Average"
	SkinPoor    SkinRating = "Poor"
	SkinAvoid   SkinRating = "Avoid"
)

func (r SkinRating) Valid() bool {
	switch r {
	case SkinGreat, SkinGood, SkinAverage, SkinPoor, SkinAvoid:
		return true
	}
	return false
}

// IngredientSource is a normalized citation. The model may return either a
// bare title string or a {title, url} object; both decode into this shape.
type IngredientSource struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// UnmarshalJSON accepts either a JSON string or an object with a title field.
func (s *IngredientSource) UnmarshalJSON(data []byte) error {
	var title string
	if err := json.Unmarshal(data, &title); err == nil {
		s.Title = title
		s.URL = ""
		return nil
	}

	type plain IngredientSource
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("source must be a string or an object with a title: %w", err)
	}
	*s = IngredientSource(obj)
	return nil
}

// Ingredient is one cosmetic ingredient extracted from the input.
// EWGScore 0 means the score is unknown and should not be displayed.
type Ingredient struct {
	Name             string             `json:"name"`
	Functions        []string           `json:"functions"`
	SafetyLevel      SafetyLevel        `json:"safetyLevel"`
	Confidence       Confidence         `json:"confidence"`
	Description      string             `json:"description"`
	EWGScore         int                `json:"ewgScore"`
	RestrictionFlags []string           `json:"restrictionFlags"`
	Sources          []IngredientSource `json:"sources,omitempty"`
}

// SkinSuitability rates the product for the four skin types. All four
// ratings and the reasoning come together; a partial object is invalid.
type SkinSuitability struct {
	Oily        SkinRating `json:"oily"`
	Dry         SkinRating `json:"dry"`
	Sensitive   SkinRating `json:"sensitive"`
	Combination SkinRating `json:"combination"`
	Reasoning   string     `json:"reasoning"`
}

// AnalysisResult is the full structured response for one submission.
type AnalysisResult struct {
	ProductName     string           `json:"productName,omitempty"`
	OverallScore    float64          `json:"overallScore"`
	Summary         string           `json:"summary"`
	SkinSuitability *SkinSuitability `json:"skinSuitability,omitempty"`
	Ingredients     []Ingredient     `json:"ingredients"`
}

// Role identifies who produced a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn in a conversation. Messages are created once,
// appended to the log, and never mutated.
type ChatMessage struct {
	ID       string          `json:"id"`
	Role     Role            `json:"role"`
	Content  string          `json:"content,omitempty"`
	Image    string          `json:"image,omitempty"`
	Analysis *AnalysisResult `json:"analysis,omitempty"`
	IsError  bool            `json:"isError,omitempty"`
}

// SavedAnalysis is a named, timestamped snapshot of an AnalysisResult.
// Timestamp is Unix milliseconds.
type SavedAnalysis struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Timestamp int64          `json:"timestamp"`
	Result    AnalysisResult `json:"result"`
}
