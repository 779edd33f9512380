package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"skillscreen/resume-screener/internal/models"
	"skillscreen/resume-screener/internal/repositories"
	"skillscreen/resume-screener/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	maxFileSize    int64
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload handles POST /api/v1/upload. It accepts one or more
// resume files under the "resumes" multipart field and registers each
// as a document. Rejecting one file rejects the whole request so the
// client never ends up with a partial batch.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File["resumes"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no files uploaded. Please upload 'resumes' as PDF or DOCX files.",
		})
	}

	for _, file := range files {
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": fmt.Sprintf("file %s too large. Max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}
	}

	var responses []models.UploadResponse
	var saved []string

	for _, file := range files {
		filename, filePath, err := h.storageService.SaveFile(file)
		if err != nil {
			h.cleanup(saved)
			if errors.Is(err, services.ErrUnsupportedFormat) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": fmt.Sprintf("unsupported format for %s. Only PDF and DOCX are accepted.", file.Filename),
				})
			}
			if errors.Is(err, services.ErrFileTooLarge) {
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": fmt.Sprintf("file %s too large. Max size: %d bytes", file.Filename, h.maxFileSize),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save file %s: %v", file.Filename, err),
			})
		}
		saved = append(saved, filename)

		doc := models.Document{
			ID:               uuid.New(),
			Filename:         filename,
			OriginalFileName: file.Filename,
			FileType:         "resume",
			FilePath:         filePath,
			SizeBytes:        file.Size,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}

		if err := h.docRepo.Create(&doc); err != nil {
			h.cleanup(saved)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save document record for %s", file.Filename),
			})
		}

		responses = append(responses, models.UploadResponse{
			ID:           doc.ID.String(),
			Filename:     doc.Filename,
			OriginalName: doc.OriginalFileName,
			FileType:     doc.FileType,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Files uploaded successfully",
		"documents": responses,
	})
}

func (h *UploadHandler) cleanup(filenames []string) {
	for _, filename := range filenames {
		h.storageService.DeleteFile(filename)
	}
}
