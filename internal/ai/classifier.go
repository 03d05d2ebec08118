// Package ai provides the classification oracle used to judge how well a
// user sorted their waste. The contract is fixed; implementations are
// interchangeable (mock by default, Gemini when configured).
package ai

import "context"

// ExpectedItem describes one item the classifier should look for.
type ExpectedItem struct {
	WasteTypeID uint64 `json:"waste_type_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
}

// Prediction is the per-item verdict.
type Prediction struct {
	ItemName     string  `json:"item_name"`
	WasteTypeID  uint64  `json:"waste_type_id"`
	Category     string  `json:"category"`
	PredictedBin string  `json:"predicted_bin"`
	CorrectBin   string  `json:"correct_bin"`
	Confidence   float64 `json:"confidence"`
	IsCorrect    bool    `json:"is_correct"`
}

type Result struct {
	ValidationID           string       `json:"validation_id"`
	OverallConfidence      float64      `json:"overall_confidence"` // 0-1
	AccuracyRate           float64      `json:"accuracy_rate"`      // 0-100
	ItemsProcessed         int          `json:"items_processed"`
	CorrectClassifications int          `json:"correct_classifications"`
	Predictions            []Prediction `json:"predictions"`
	EstimatedWeights       []float64    `json:"estimated_weights"` // kg, positional
	ProcessingTimeSec      float64      `json:"processing_time"`
}

// Classifier judges a recycling photo against the expected items.
// imageData is a base64-encoded photo.
type Classifier interface {
	Classify(ctx context.Context, imageData string, expected []ExpectedItem) (*Result, error)
}

// binColorByCategory maps a waste category to its correct bin color.
var binColorByCategory = map[string]string{
	"plastic":    "yellow",
	"paper":      "blue",
	"glass":      "green",
	"metal":      "gray",
	"organic":    "brown",
	"electronic": "red",
}

// CorrectBin returns the bin color for a category, defaulting to gray.
func CorrectBin(category string) string {
	if c, ok := binColorByCategory[category]; ok {
		return c
	}
	return "gray"
}
