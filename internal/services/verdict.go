package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Verdict is the structured evaluation returned by the LLM for one resume.
type Verdict struct {
	Score          float64  `json:"score"`
	Summary        string   `json:"summary"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
}

// verdictSchema rejects missing, extra, and mistyped fields. The parser
// fails closed rather than coercing a malformed response.
const verdictSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["score", "summary", "matching_skills", "missing_skills"],
  "properties": {
    "score": {"type": "number", "minimum": 0, "maximum": 100},
    "summary": {"type": "string", "minLength": 1},
    "matching_skills": {"type": "array", "items": {"type": "string"}},
    "missing_skills": {"type": "array", "items": {"type": "string"}}
  }
}`

var verdictSchemaLoader = gojsonschema.NewStringLoader(verdictSchema)

// ParseVerdict validates an LLM response against the verdict schema and
// unmarshals it. Markdown fences around the JSON are stripped first since
// models often wrap their output.
func ParseVerdict(response string) (*Verdict, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrEvaluationParse)
	}

	result, err := gojsonschema.Validate(verdictSchemaLoader, gojsonschema.NewStringLoader(jsonStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluationParse, err)
	}

	if !result.Valid() {
		descs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descs = append(descs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrEvaluationParse, strings.Join(descs, "; "))
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluationParse, err)
	}

	return &verdict, nil
}

// extractJSON strips markdown code fences and slices out the outermost JSON
// object boundaries.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return text[start : end+1]
}
