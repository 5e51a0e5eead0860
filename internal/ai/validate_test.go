package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAnalysis(t *testing.T) {
	valid := []byte(`{"skills": ["Go"], "score": 75, "vibe_coding_score": 30}`)
	assert.NoError(t, ValidateAnalysis(valid))

	minimal := []byte(`{"skills": [], "score": 0}`)
	assert.NoError(t, ValidateAnalysis(minimal))
}

func TestValidateAnalysisErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing skills", `{"score": 50}`},
		{"negative score", `{"skills": [], "score": -1}`},
		{"score over 100", `{"skills": [], "score": 101}`},
		{"non integer score", `{"skills": [], "score": "high"}`},
		{"vibe score out of range", `{"skills": [], "score": 50, "vibe_coding_score": 200}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnalysis([]byte(tt.raw))
			assert.Error(t, err)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Problems)
		})
	}
}
