package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// JobSpec is the job description a run evaluates against.
type JobSpec struct {
	Title       string
	Description string
}

// ResumeFile is one uploaded resume entering the pipeline. Position is the
// upload order and is preserved through ranking ties.
type ResumeFile struct {
	DocumentID string
	Filename   string
	FilePath   string
}

// CandidateOutcome is the pipeline output for a single resume. Err is set
// when this resume failed; the rest of the run is unaffected.
type CandidateOutcome struct {
	DocumentID      string
	Position        int
	CandidateName   string
	LLMScore        float64
	SimilarityScore float64
	FinalScore      float64
	Summary         string
	MatchingSkills  []string
	MissingSkills   []string
	Err             error
}

// Pipeline runs the screening flow: extract, embed, similarity, LLM verdict,
// score fusion. Resumes are independent, so they fan out over a bounded
// worker pool and land in fixed slots.
type Pipeline struct {
	extractor   DocumentExtractor
	gemini      GeminiService
	index       SimilarityIndex
	prompts     *PromptBuilder
	fuser       *ScoreFuser
	logger      *zap.Logger
	concurrency int
	llmTimeout  time.Duration
}

func NewPipeline(
	extractor DocumentExtractor,
	gemini GeminiService,
	index SimilarityIndex,
	fuser *ScoreFuser,
	concurrency int,
	llmTimeout time.Duration,
	logger *zap.Logger,
) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		extractor:   extractor,
		gemini:      gemini,
		index:       index,
		prompts:     NewPromptBuilder(),
		fuser:       fuser,
		logger:      logger,
		concurrency: concurrency,
		llmTimeout:  llmTimeout,
	}
}

type resumeState struct {
	text   string
	vector []float32
}

// Run evaluates every resume against the job description. A non-nil error
// means the whole run failed (bad job description, embedding outage); any
// per-resume failure is reported inside its outcome instead.
func (p *Pipeline) Run(ctx context.Context, screeningID string, job JobSpec, resumes []ResumeFile) ([]CandidateOutcome, error) {
	if job.Description == "" {
		return nil, fmt.Errorf("job description is empty")
	}
	if len(resumes) == 0 {
		return nil, fmt.Errorf("no resumes to evaluate")
	}

	jdVector, err := p.gemini.GenerateEmbedding(ctx, job.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job description: %w", err)
	}

	outcomes := make([]CandidateOutcome, len(resumes))
	states := make([]resumeState, len(resumes))

	// Phase 1: extract and index every resume.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, resume := range resumes {
		g.Go(func() error {
			outcomes[i] = CandidateOutcome{
				DocumentID:    resume.DocumentID,
				Position:      i,
				CandidateName: stripExt(resume.Filename),
			}

			text, err := p.extractor.ExtractFile(resume.FilePath)
			if err != nil {
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].CandidateName = p.extractor.CandidateName(text, resume.Filename)

			vector, err := p.gemini.GenerateEmbedding(gctx, text)
			if err != nil {
				outcomes[i].Err = err
				return nil
			}

			if err := p.index.UpsertResume(gctx, screeningID, resume.DocumentID, vector); err != nil {
				outcomes[i].Err = err
				return nil
			}

			states[i] = resumeState{text: text, vector: vector}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	similarities, err := p.index.Similarities(ctx, screeningID, jdVector, len(resumes))
	if err != nil {
		p.logger.Warn("similarity query failed, falling back to local cosine", zap.Error(err))
		similarities = map[string]float64{}
	}

	// Phase 2: per-resume LLM verdict and score fusion.
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, resume := range resumes {
		if outcomes[i].Err != nil {
			continue
		}

		g.Go(func() error {
			similarity, ok := similarities[resume.DocumentID]
			if !ok {
				// Freshly upserted points may not be searchable yet.
				similarity = NormalizeSimilarity(CosineSimilarity(jdVector, states[i].vector))
			}
			outcomes[i].SimilarityScore = similarity

			prompt := p.prompts.BuildVerdictPrompt(job.Title, job.Description, states[i].text, similarity)

			llmCtx, cancel := context.WithTimeout(gctx, p.llmTimeout)
			response, err := p.gemini.GenerateTextWithRetry(llmCtx, prompt, 0.3)
			cancel()
			if err != nil {
				outcomes[i].Err = err
				return nil
			}

			verdict, err := ParseVerdict(response)
			if err != nil {
				outcomes[i].Err = err
				return nil
			}

			final, err := p.fuser.Fuse(verdict.Score, similarity)
			if err != nil {
				outcomes[i].Err = err
				return nil
			}

			outcomes[i].LLMScore = verdict.Score
			outcomes[i].FinalScore = final
			outcomes[i].Summary = verdict.Summary
			outcomes[i].MatchingSkills = verdict.MatchingSkills
			outcomes[i].MissingSkills = verdict.MissingSkills

			p.logger.Debug("resume scored",
				zap.String("document_id", resume.DocumentID),
				zap.Float64("llm_score", verdict.Score),
				zap.Float64("similarity", similarity),
				zap.Float64("final_score", final),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

func stripExt(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
