package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
}

func (f *fakeExtractor) ExtractFile(filePath string) (string, error) {
	if err, ok := f.errs[filePath]; ok {
		return "", err
	}
	text, ok := f.texts[filePath]
	if !ok {
		return "", fmt.Errorf("%w: no text content found", ErrExtraction)
	}
	return text, nil
}

func (f *fakeExtractor) Extract(data []byte, format string) (string, error) {
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (f *fakeExtractor) CandidateName(text, filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

type fakeGemini struct {
	embeddings map[string][]float32
	responses  map[string]string
	embedErrs  map[string]error
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if err, ok := f.embedErrs[text]; ok {
		return nil, err
	}
	if v, ok := f.embeddings[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	for needle, response := range f.responses {
		if strings.Contains(prompt, needle) {
			return response, nil
		}
	}
	return "", fmt.Errorf("%w: no canned response", ErrExternalService)
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

type fakeIndex struct {
	upserts map[string][]float32
	sims    map[string]float64
	simErr  error
}

func (f *fakeIndex) InitCollection() error { return nil }

func (f *fakeIndex) UpsertResume(ctx context.Context, screeningID, docID string, vector []float32) error {
	if f.upserts == nil {
		f.upserts = map[string][]float32{}
	}
	f.upserts[docID] = vector
	return nil
}

func (f *fakeIndex) Similarities(ctx context.Context, screeningID string, jdVector []float32, limit int) (map[string]float64, error) {
	if f.simErr != nil {
		return nil, f.simErr
	}
	return f.sims, nil
}

func (f *fakeIndex) DeleteRun(ctx context.Context, screeningID string) error { return nil }

func verdictJSON(score float64, summary string) string {
	return fmt.Sprintf(
		`{"score": %g, "summary": %q, "matching_skills": ["Go"], "missing_skills": []}`,
		score, summary)
}

func newTestPipeline(extractor DocumentExtractor, gemini GeminiService, index SimilarityIndex) *Pipeline {
	return NewPipeline(
		extractor,
		gemini,
		index,
		NewScoreFuser(0.6, 0.4),
		2,
		5*time.Second,
		zap.NewNop(),
	)
}

func TestPipelineRun_RanksAndFusesScores(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{
		"/uploads/a.pdf": "resume text alpha",
		"/uploads/b.pdf": "resume text beta",
	}}
	gemini := &fakeGemini{
		responses: map[string]string{
			"resume text alpha": verdictJSON(88, "strong fit"),
			"resume text beta":  verdictJSON(40, "weak fit"),
		},
	}
	index := &fakeIndex{sims: map[string]float64{
		"doc-a": 0.82,
		"doc-b": 0.31,
	}}

	pipeline := newTestPipeline(extractor, gemini, index)

	outcomes, err := pipeline.Run(context.Background(), "run-1",
		JobSpec{Title: "Backend Engineer", Description: "Go services"},
		[]ResumeFile{
			{DocumentID: "doc-a", Filename: "a.pdf", FilePath: "/uploads/a.pdf"},
			{DocumentID: "doc-b", Filename: "b.pdf", FilePath: "/uploads/b.pdf"},
		})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.NoError(t, outcomes[0].Err)
	assert.Equal(t, 0, outcomes[0].Position)
	assert.Equal(t, 88.0, outcomes[0].LLMScore)
	assert.Equal(t, 0.82, outcomes[0].SimilarityScore)
	assert.InDelta(t, 85.6, outcomes[0].FinalScore, 1e-9)
	assert.Equal(t, "strong fit", outcomes[0].Summary)

	require.NoError(t, outcomes[1].Err)
	assert.Equal(t, 1, outcomes[1].Position)
	assert.InDelta(t, 36.4, outcomes[1].FinalScore, 1e-9)

	// Both resumes were indexed under the run.
	assert.Len(t, index.upserts, 2)
}

func TestPipelineRun_IsolatesPerResumeFailures(t *testing.T) {
	extractor := &fakeExtractor{
		texts: map[string]string{"/uploads/good.pdf": "resume text good"},
		errs:  map[string]error{"/uploads/bad.pdf": fmt.Errorf("%w: no text content found", ErrExtraction)},
	}
	gemini := &fakeGemini{
		responses: map[string]string{"resume text good": verdictJSON(75, "fine")},
	}
	index := &fakeIndex{sims: map[string]float64{"doc-good": 0.5}}

	pipeline := newTestPipeline(extractor, gemini, index)

	outcomes, err := pipeline.Run(context.Background(), "run-2",
		JobSpec{Description: "Go services"},
		[]ResumeFile{
			{DocumentID: "doc-bad", Filename: "bad.pdf", FilePath: "/uploads/bad.pdf"},
			{DocumentID: "doc-good", Filename: "good.pdf", FilePath: "/uploads/good.pdf"},
		})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.ErrorIs(t, outcomes[0].Err, ErrExtraction)
	assert.Equal(t, "bad", outcomes[0].CandidateName)

	require.NoError(t, outcomes[1].Err)
	assert.InDelta(t, 0.6*75+0.4*50, outcomes[1].FinalScore, 1e-9)
}

func TestPipelineRun_EmptyJobDescription(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{}, &fakeGemini{}, &fakeIndex{})

	_, err := pipeline.Run(context.Background(), "run-3", JobSpec{},
		[]ResumeFile{{DocumentID: "d", Filename: "a.pdf", FilePath: "/a.pdf"}})
	assert.Error(t, err)
}

func TestPipelineRun_NoResumes(t *testing.T) {
	pipeline := newTestPipeline(&fakeExtractor{}, &fakeGemini{}, &fakeIndex{})

	_, err := pipeline.Run(context.Background(), "run-4",
		JobSpec{Description: "Go services"}, nil)
	assert.Error(t, err)
}

func TestPipelineRun_JobEmbeddingFailureFailsRun(t *testing.T) {
	gemini := &fakeGemini{
		embedErrs: map[string]error{"Go services": fmt.Errorf("%w: quota", ErrExternalService)},
	}
	pipeline := newTestPipeline(&fakeExtractor{}, gemini, &fakeIndex{})

	_, err := pipeline.Run(context.Background(), "run-5",
		JobSpec{Description: "Go services"},
		[]ResumeFile{{DocumentID: "d", Filename: "a.pdf", FilePath: "/a.pdf"}})
	assert.ErrorIs(t, err, ErrExternalService)
}

func TestPipelineRun_FallsBackToLocalCosine(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{"/uploads/a.pdf": "resume text alpha"}}
	gemini := &fakeGemini{
		embeddings: map[string][]float32{
			"Go services":       {1, 0, 0},
			"resume text alpha": {1, 0, 0},
		},
		responses: map[string]string{"resume text alpha": verdictJSON(50, "ok")},
	}
	// Index knows nothing about the document, similarity comes from the
	// vectors the pipeline already holds.
	index := &fakeIndex{sims: map[string]float64{}}

	pipeline := newTestPipeline(extractor, gemini, index)

	outcomes, err := pipeline.Run(context.Background(), "run-6",
		JobSpec{Description: "Go services"},
		[]ResumeFile{{DocumentID: "doc-a", Filename: "a.pdf", FilePath: "/uploads/a.pdf"}})
	require.NoError(t, err)
	require.NoError(t, outcomes[0].Err)
	assert.InDelta(t, 1.0, outcomes[0].SimilarityScore, 1e-6)
}

func TestPipelineRun_MalformedVerdictFailsResume(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{"/uploads/a.pdf": "resume text alpha"}}
	gemini := &fakeGemini{
		responses: map[string]string{"resume text alpha": "I refuse to answer in JSON."},
	}
	index := &fakeIndex{sims: map[string]float64{"doc-a": 0.5}}

	pipeline := newTestPipeline(extractor, gemini, index)

	outcomes, err := pipeline.Run(context.Background(), "run-7",
		JobSpec{Description: "Go services"},
		[]ResumeFile{{DocumentID: "doc-a", Filename: "a.pdf", FilePath: "/uploads/a.pdf"}})
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[0].Err, ErrEvaluationParse)
}
