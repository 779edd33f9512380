package services

import "errors"

// Error kinds surfaced by the screening pipeline. Callers classify with
// errors.Is; per-resume kinds are recorded on the result row while the run
// keeps going, global kinds fail the whole run.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrExtraction        = errors.New("document extraction failed")
	ErrEmbedding         = errors.New("embedding failed")
	ErrEvaluationParse   = errors.New("evaluation response did not match verdict schema")
	ErrInvalidScoreInput = errors.New("score input out of range")
	ErrExternalService   = errors.New("external service failure")
)
