package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"skillscreen/resume-screener/internal/models"
	"skillscreen/resume-screener/internal/repositories"
	"skillscreen/resume-screener/internal/services"
)

type ExportHandler struct {
	screeningRepo repositories.ScreeningRepository
	exportService services.ExportService
}

func NewExportHandler(
	screeningRepo repositories.ScreeningRepository,
	exportService services.ExportService,
) *ExportHandler {
	return &ExportHandler{
		screeningRepo: screeningRepo,
		exportService: exportService,
	}
}

// HandleExport handles GET /api/v1/screenings/:id/export?format=csv|xlsx.
// Only completed screenings can be exported.
func (h *ExportHandler) HandleExport(c *fiber.Ctx) error {
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

	if screening.Status != models.StatusCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("screening is %s, export requires a completed screening", screening.Status),
		})
	}

	services.RankResults(screening.Results)

	format := c.Query("format", "csv")
	switch format {
	case "csv":
		data, err := h.exportService.ToCSV(screening.Results)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate CSV export",
			})
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="screening_%s.csv"`, screeningID))
		return c.Send(data)
	case "xlsx":
		data, err := h.exportService.ToXLSX(screening)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate XLSX export",
			})
		}
		c.Set(fiber.HeaderContentType,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="screening_%s.xlsx"`, screeningID))
		return c.Send(data)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported export format. Use 'csv' or 'xlsx'.",
		})
	}
}
