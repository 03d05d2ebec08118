package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Classification difficulty per category; harder categories miss more.
var accuracyByCategory = map[string]float64{
	"plastic":    0.85,
	"paper":      0.90,
	"glass":      0.92,
	"metal":      0.88,
	"organic":    0.75,
	"electronic": 0.70,
}

const defaultAccuracy = 0.80

// MockClassifier stands in for the real model. It decodes the image only
// to validate it, then fabricates verdicts with category-dependent
// accuracy and a simulated processing delay.
type MockClassifier struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency func() time.Duration
}

// NewMockClassifier uses a time-seeded source and 1-3s simulated latency.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededMockClassifier fixes the random source and removes the
// simulated latency. Intended for tests.
func NewSeededMockClassifier(seed int64) *MockClassifier {
	return &MockClassifier{
		rng:     rand.New(rand.NewSource(seed)),
		latency: func() time.Duration { return 0 },
	}
}

func (m *MockClassifier) Classify(ctx context.Context, imageData string, expected []ExpectedItem) (*Result, error) {
	start := time.Now()

	if _, err := base64.StdEncoding.DecodeString(imageData); err != nil {
		return nil, errors.New("invalid image data")
	}

	delay := m.simulatedLatency()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	predictions := make([]Prediction, 0, len(expected))
	weights := make([]float64, 0, len(expected))
	var confidenceSum float64
	correct := 0

	allBins := []string{"yellow", "blue", "green", "gray", "brown", "red"}

	for _, item := range expected {
		category := strings.ToLower(item.Category)
		baseAccuracy, ok := accuracyByCategory[category]
		if !ok {
			baseAccuracy = defaultAccuracy
		}

		confidence := 0.60 + m.rng.Float64()*0.35
		isCorrect := confidence > (1.0 - baseAccuracy)
		correctBin := CorrectBin(category)

		predictedBin := correctBin
		if !isCorrect {
			others := make([]string, 0, len(allBins)-1)
			for _, b := range allBins {
				if b != correctBin {
					others = append(others, b)
				}
			}
			predictedBin = others[m.rng.Intn(len(others))]
		}

		if isCorrect {
			correct++
		}
		confidenceSum += confidence

		predictions = append(predictions, Prediction{
			ItemName:     item.Name,
			WasteTypeID:  item.WasteTypeID,
			Category:     category,
			PredictedBin: predictedBin,
			CorrectBin:   correctBin,
			Confidence:   confidence,
			IsCorrect:    isCorrect,
		})
		weights = append(weights, 0.05+m.rng.Float64()*0.45)
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

func (m *MockClassifier) simulatedLatency() time.Duration {
	if m.latency != nil {
		return m.latency()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Second + time.Duration(m.rng.Int63n(int64(2*time.Second)))
}

func newValidationID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "AI-" + strings.ToUpper(hex[:12])
}
