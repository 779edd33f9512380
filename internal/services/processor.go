package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"skillscreen/resume-screener/internal/models"
	"skillscreen/resume-screener/internal/repositories"
)

// ScreeningProcessor drives one queued screening through the pipeline and
// records the outcome.
type ScreeningProcessor interface {
	ProcessScreening(ctx context.Context, screeningID uuid.UUID) error
}

type screeningProcessor struct {
	screeningRepo repositories.ScreeningRepository
	docRepo       repositories.DocumentRepository
	pipeline      *Pipeline
	logger        *zap.Logger
}

func NewScreeningProcessor(
	screeningRepo repositories.ScreeningRepository,
	docRepo repositories.DocumentRepository,
	pipeline *Pipeline,
	logger *zap.Logger,
) ScreeningProcessor {
	return &screeningProcessor{
		screeningRepo: screeningRepo,
		docRepo:       docRepo,
		pipeline:      pipeline,
		logger:        logger,
	}
}

// ProcessScreening implements ScreeningProcessor. A pipeline-level error
// fails the run; per-resume failures become failed result rows and the run
// still completes.
func (p *screeningProcessor) ProcessScreening(ctx context.Context, screeningID uuid.UUID) error {
	if err := p.screeningRepo.UpdateStatus(screeningID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	p.logger.Info("screening started", zap.String("screening_id", screeningID.String()))

	screening, err := p.screeningRepo.FindByID(screeningID)
	if err != nil {
		p.screeningRepo.UpdateError(screeningID, err.Error())
		return fmt.Errorf("failed to load screening: %w", err)
	}

	docIDs := make([]uuid.UUID, 0, len(screening.DocumentIDs))
	for _, raw := range screening.DocumentIDs {
		docID, err := uuid.Parse(raw)
		if err != nil {
			p.screeningRepo.UpdateError(screeningID, fmt.Sprintf("invalid document id %q", raw))
			return fmt.Errorf("invalid document id %q: %w", raw, err)
		}
		docIDs = append(docIDs, docID)
	}

	docs, err := p.docRepo.FindByIDs(docIDs)
	if err != nil {
		p.screeningRepo.UpdateError(screeningID, fmt.Sprintf("resume documents not found: %v", err))
		return fmt.Errorf("failed to load documents: %w", err)
	}

	resumes := make([]ResumeFile, len(docs))
	for i, doc := range docs {
		resumes[i] = ResumeFile{
			DocumentID: doc.ID.String(),
			Filename:   doc.OriginalFileName,
			FilePath:   doc.FilePath,
		}
	}

	outcomes, err := p.pipeline.Run(ctx, screeningID.String(), JobSpec{
		Title:       screening.JobTitle,
		Description: screening.JobDescription,
	}, resumes)
	if err != nil {
		p.screeningRepo.UpdateError(screeningID, err.Error())
		return fmt.Errorf("pipeline failed: %w", err)
	}

	rows := make([]models.ScreeningResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		docID, err := uuid.Parse(outcome.DocumentID)
		if err != nil {
			continue
		}

		row := models.ScreeningResult{
			ID:            uuid.New(),
			ScreeningID:   screeningID,
			DocumentID:    docID,
			Position:      outcome.Position,
			CandidateName: outcome.CandidateName,
		}

		if outcome.Err != nil {
			msg := outcome.Err.Error()
			row.Status = models.ResultFailed
			row.ErrorMessage = &msg
			p.logger.Warn("resume evaluation failed",
				zap.String("screening_id", screeningID.String()),
				zap.String("document_id", outcome.DocumentID),
				zap.Error(outcome.Err),
			)
		} else {
			row.Status = models.ResultScored
			row.LLMScore = outcome.LLMScore
			row.SimilarityScore = outcome.SimilarityScore
			row.FinalScore = outcome.FinalScore
			row.Summary = outcome.Summary
			row.MatchingSkills = datatypes.NewJSONSlice(outcome.MatchingSkills)
			row.MissingSkills = datatypes.NewJSONSlice(outcome.MissingSkills)
		}

		rows = append(rows, row)
	}

	if err := p.screeningRepo.SaveResults(screeningID, rows); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	p.logger.Info("screening completed",
		zap.String("screening_id", screeningID.String()),
		zap.Int("candidates", len(rows)),
	)
	return nil
}
