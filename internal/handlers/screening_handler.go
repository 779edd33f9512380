package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"skillscreen/resume-screener/internal/models"
	"skillscreen/resume-screener/internal/repositories"
	"skillscreen/resume-screener/internal/services"
)

type ScreeningHandler struct {
	screeningRepo repositories.ScreeningRepository
	docRepo       repositories.DocumentRepository
	index         services.SimilarityIndex
	worker        services.Worker
	validate      *validator.Validate
	logger        *zap.Logger
}

func NewScreeningHandler(
	screeningRepo repositories.ScreeningRepository,
	docRepo repositories.DocumentRepository,
	index services.SimilarityIndex,
	worker services.Worker,
	logger *zap.Logger,
) *ScreeningHandler {
	return &ScreeningHandler{
		screeningRepo: screeningRepo,
		docRepo:       docRepo,
		index:         index,
		worker:        worker,
		validate:      validator.New(),
		logger:        logger,
	}
}

// HandleCreate handles POST /api/v1/screenings. The screening is queued
// and processed asynchronously; the response carries the ID to poll.
func (h *ScreeningHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.ScreeningRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Verify documents exist before queueing
	for _, idStr := range req.DocumentIDs {
		docID, err := uuid.Parse(idStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid document ID format: " + idStr,
			})
		}
		if _, err := h.docRepo.FindByID(docID); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found: " + idStr,
			})
		}
	}

	screening := &models.Screening{
		ID:             uuid.New(),
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		DocumentIDs:    datatypes.NewJSONSlice(req.DocumentIDs),
		Status:         models.StatusQueued,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.screeningRepo.Create(screening); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create screening job",
		})
	}

	h.worker.EnqueueJob(screening.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.ScreeningResponse{
		ID:     screening.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleGet handles GET /api/v1/screenings/:id. Completed screenings
// include their ranked results, highest final score first.
func (h *ScreeningHandler) HandleGet(c *fiber.Ctx) error {
	screeningID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening ID format",
		})
	}

	screening, err := h.screeningRepo.FindByID(screeningID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Screening not found",
		})
	}

	services.RankResults(screening.Results)

	response := models.ScreeningDetailResponse{
		ID:             screening.ID.String(),
		JobTitle:       screening.JobTitle,
		JobDescription: screening.JobDescription,
		Status:         string(screening.Status),
		ErrorMessage:   screening.ErrorMessage,
		CreatedAt:      screening.CreatedAt.Format(time.RFC3339),
	}

	for _, result := range screening.Results {
		response.Results = append(response.Results, models.ResultDetail{
			CandidateName:   result.CandidateName,
			Status:          string(result.Status),
			LLMScore:        result.LLMScore,
			SimilarityScore: result.SimilarityScore,
			FinalScore:      result.FinalScore,
			Summary:         result.Summary,
			MatchingSkills:  result.MatchingSkills,
			MissingSkills:   result.MissingSkills,
			ErrorMessage:    result.ErrorMessage,
		})
	}

	return c.JSON(response)
}

// HandleList handles GET /api/v1/screenings, newest first.
func (h *ScreeningHandler) HandleList(c *fiber.Ctx) error {
	screenings, err := h.screeningRepo.FindAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch screenings",
		})
	}

	items := make([]models.ScreeningListItem, 0, len(screenings))
	for _, screening := range screenings {
		items = append(items, models.ScreeningListItem{
			ID:        screening.ID.String(),
			JobTitle:  screening.JobTitle,
			Status:    string(screening.Status),
			CreatedAt: screening.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"screenings": items,
	})
}

// HandleDelete handles DELETE /api/v1/screenings/:id. Removes the
// screening with its results and drops its vectors from the index.
// Uploaded documents stay, they may belong to other screenings.
func (h *ScreeningHandler) HandleDelete(c *fiber.Ctx) error {
	screeningID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid screening ID format",
		})
	}

	if _, err := h.screeningRepo.FindByID(screeningID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Screening not found",
		})
	}

	if err := h.screeningRepo.Delete(screeningID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete screening",
		})
	}

	if err := h.index.DeleteRun(c.Context(), screeningID.String()); err != nil {
		// The DB row is already gone; orphaned vectors are harmless
		// because every query filters on screening_id.
		h.logger.Warn("failed to delete screening vectors",
			zap.String("screening_id", screeningID.String()),
			zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"message": "Screening deleted",
	})
}
