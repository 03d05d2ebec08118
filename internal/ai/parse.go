package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrParseFailed = errors.New("parse_failed")

// Verdict is one element of the model's raw JSON answer.
type Verdict struct {
	PredictedBin      string  `json:"predicted_bin"`
	Confidence        float64 `json:"confidence"`
	IsCorrect         bool    `json:"is_correct"`
	EstimatedWeightKg float64 `json:"estimated_weight_kg"`
}

// ParseVerdicts extracts the JSON array from model output. Models tend to
// wrap answers in code fences or prose despite instructions, so it falls
// back to the outermost [...] slice of the text.
func ParseVerdicts(text string) ([]Verdict, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var verdicts []Verdict
	if err := json.Unmarshal([]byte(trimmed), &verdicts); err == nil {
		return verdicts, nil
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array found", ErrParseFailed)
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &verdicts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return verdicts, nil
}
