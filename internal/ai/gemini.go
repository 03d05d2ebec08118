package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClassifier asks a Gemini vision model for per-item verdicts. It
// satisfies the same contract as the mock, so the lifecycle engine does
// not care which one it talks to.
type GeminiClassifier struct {
	model  string
	logger *zap.Logger
}

func NewGeminiClassifier(model string, logger *zap.Logger) *GeminiClassifier {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClassifier{model: model, logger: logger}
}

const classifyPrompt = `You are a recycling classification checker. The photo shows items placed
into recycling bins. For each expected item below, decide whether it was
placed in the correct bin.
Reply with ONLY a JSON array, one object per expected item, in order:
[{"predicted_bin":"<color>","confidence":<0..1>,"is_correct":<bool>,"estimated_weight_kg":<float>}]
Bin colors: yellow=plastic, blue=paper, green=glass, gray=metal,
brown=organic, red=electronic. No prose, no code fences.`

func (c *GeminiClassifier) Classify(ctx context.Context, imageData string, expected []ExpectedItem) (*Result, error) {
	start := time.Now()

	imageBytes, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Expected items:\n")
	for i, item := range expected {
		fmt.Fprintf(&sb, "%d. %s (category: %s)\n", i+1, item.Name, strings.ToLower(item.Category))
	}

	parts := []*genai.Part{
		genai.NewPartFromText(classifyPrompt),
		genai.NewPartFromText(sb.String()),
		genai.NewPartFromBytes(imageBytes, "image/jpeg"),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	temp := float32(0)
	config := &genai.GenerateContentConfig{Temperature: &temp}

	res, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	verdicts, err := ParseVerdicts(res.Text())
	if err != nil {
		c.logger.Error("classifier output parse failed",
			zap.String("model", c.model),
			zap.Error(err),
		)
		return nil, err
	}
	if len(verdicts) != len(expected) {
		return nil, fmt.Errorf("expected %d verdicts, got %d", len(expected), len(verdicts))
	}

	predictions := make([]Prediction, 0, len(verdicts))
	weights := make([]float64, 0, len(verdicts))
	var confidenceSum float64
	correct := 0
	for i, v := range verdicts {
		item := expected[i]
		category := strings.ToLower(item.Category)
		if v.IsCorrect {
			correct++
		}
		confidenceSum += v.Confidence
		predictions = append(predictions, Prediction{
			ItemName:     item.Name,
			WasteTypeID:  item.WasteTypeID,
			Category:     category,
			PredictedBin: v.PredictedBin,
			CorrectBin:   CorrectBin(category),
			Confidence:   v.Confidence,
			IsCorrect:    v.IsCorrect,
		})
		weights = append(weights, v.EstimatedWeightKg)
	}

	overallConfidence := 0.0
	accuracyRate := 0.0
	if len(predictions) > 0 {
		overallConfidence = confidenceSum / float64(len(predictions))
		accuracyRate = float64(correct) / float64(len(predictions)) * 100
	}

	return &Result{
		ValidationID:           newValidationID(),
		OverallConfidence:      overallConfidence,
		AccuracyRate:           accuracyRate,
		ItemsProcessed:         len(predictions),
		CorrectClassifications: correct,
		Predictions:            predictions,
		EstimatedWeights:       weights,
		ProcessingTimeSec:      time.Since(start).Seconds(),
	}, nil
}
