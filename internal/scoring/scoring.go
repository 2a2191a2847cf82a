// Package scoring holds the pure presentation functions derived from an
// analysis result: score banding, EWG banding and ingredient sort orders.
// Nothing here mutates its input.
package scoring

import (
	"sort"
	"strings"

	"github.com/franckalain/dermscan/internal/models"
)

// Band classifies an overall score for display.
type Band string

const (
	BandSafe     Band = "safe"
	BandModerate Band = "moderate"
	BandAvoid    Band = "avoid"
)

// ScoreBand maps an overall score (0-100) to its display band.
func ScoreBand(score float64) Band {
	switch {
	case score >= 80:
		return BandSafe
	case score >= 50:
		return BandModerate
	default:
		return BandAvoid
	}
}

// HazardBand classifies an EWG score for display. Suppressed means the
// score is unknown and must not be shown.
type HazardBand string

const (
	HazardSuppressed HazardBand = ""
	HazardLow        HazardBand = "low"
	HazardModerate   HazardBand = "moderate"
	HazardHigh       HazardBand = "high"
)

// EWGBand maps an EWG Skin Deep score to its display band. A score of 0
// means unknown and is suppressed.
func EWGBand(score int) HazardBand {
	switch {
	case score <= 0:
		return HazardSuppressed
	case score <= 2:
		return HazardLow
	case score <= 6:
		return HazardModerate
	default:
		return HazardHigh
	}
}

// SortMode selects an ingredient ordering.
type SortMode string

const (
	SortOriginal SortMode = "original"
	SortName     SortMode = "name"
	SortFunction SortMode = "function"
	SortSafety   SortMode = "safety"
)

var safetyRank = map[models.SafetyLevel]int{
	models.SafetySafe:     0,
	models.SafetyModerate: 1,
	models.SafetyAvoid:    2,
	models.SafetyUnknown:  3,
}

// SortIngredients returns a reordered copy of the ingredients. All modes
// are stable and fall back to ascending name comparison on ties;
// SortOriginal returns the copy unchanged.
func SortIngredients(mode SortMode, ingredients []models.Ingredient) []models.Ingredient {
	items := make([]models.Ingredient, len(ingredients))
	copy(items, ingredients)

	byName := func(i, j int) bool {
		return strings.Compare(items[i].Name, items[j].Name) < 0
	}

	switch mode {
	case SortName:
		sort.SliceStable(items, byName)
	case SortFunction:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := firstFunction(items[i]), firstFunction(items[j])
			// Ingredients with no function sort after everything else.
			if (a == "") != (b == "") {
				return b == ""
			}
			if a != b {
				return a < b
			}
			return byName(i, j)
		})
	case SortSafety:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := safetyRank[items[i].SafetyLevel], safetyRank[items[j].SafetyLevel]
			if a != b {
				return a < b
			}
			return byName(i, j)
		})
	}

	return items
}

func firstFunction(ing models.Ingredient) string {
	if len(ing.Functions) == 0 {
		return ""
	}
	return ing.Functions[0]
}
