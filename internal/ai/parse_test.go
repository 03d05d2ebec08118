package ai

import (
	"errors"
	"testing"
)

func TestParseVerdicts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"bare array", `[{"predicted_bin":"yellow","confidence":0.9,"is_correct":true,"estimated_weight_kg":0.2}]`, 1, false},
		{"code fence", "```json\n[{\"predicted_bin\":\"blue\",\"confidence\":0.8,\"is_correct\":false,\"estimated_weight_kg\":0.1}]\n```", 1, false},
		{"prose wrapped", `Here is the result: [{"predicted_bin":"green","confidence":0.7,"is_correct":true,"estimated_weight_kg":0.3}] hope that helps`, 1, false},
		{"two items", `[{"predicted_bin":"yellow","confidence":0.9,"is_correct":true,"estimated_weight_kg":0.2},{"predicted_bin":"gray","confidence":0.6,"is_correct":false,"estimated_weight_kg":0.1}]`, 2, false},
		{"no array", "the items look fine", 0, true},
		{"broken json", `[{"predicted_bin":}]`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerdicts(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrParseFailed) {
					t.Fatalf("error not ErrParseFailed: %v", err)
				}
				return
			}
			if len(got) != tt.wantLen {
				t.Fatalf("got %d verdicts, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestParseVerdictsFields(t *testing.T) {
	got, err := ParseVerdicts(`[{"predicted_bin":"yellow","confidence":0.85,"is_correct":true,"estimated_weight_kg":0.25}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v := got[0]
	if v.PredictedBin != "yellow" || v.Confidence != 0.85 || !v.IsCorrect || v.EstimatedWeightKg != 0.25 {
		t.Fatalf("verdict fields mismatch: %+v", v)
	}
}
