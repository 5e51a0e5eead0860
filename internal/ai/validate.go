package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// analysisSchema constrains what the AI service may hand back from /analyze
// before it is persisted. Entity arrays stay opaque; only the fields this
// service reads are typed.
const analysisSchema = `{
	"type": "object",
	"required": ["score", "skills"],
	"properties": {
		"name": {"type": "string"},
		"email": {"type": "string"},
		"summary": {"type": "string"},
		"skills": {"type": "array", "items": {"type": "string"}},
		"experience": {"type": "array"},
		"education": {"type": "array"},
		"projects": {"type": "array"},
		"score": {"type": "integer", "minimum": 0, "maximum": 100},
		"vibe_coding_score": {"type": "integer", "minimum": 0, "maximum": 100}
	}
}`

// ValidationError reports why an /analyze payload was rejected.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("analysis payload invalid: %s", strings.Join(e.Problems, "; "))
}

// ValidateAnalysis checks an /analyze response body against the analysis
// schema. A non-nil error means the payload must be treated as unavailable.
func ValidateAnalysis(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(analysisSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate analysis payload: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return &ValidationError{Problems: problems}
	}

	return nil
}
