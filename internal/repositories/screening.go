package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skillscreen/resume-screener/internal/models"
)

type ScreeningRepository interface {
	Create(screening *models.Screening) error
	FindByID(id uuid.UUID) (*models.Screening, error)
	FindAll() ([]models.Screening, error)
	Delete(id uuid.UUID) error
	UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error
	UpdateError(id uuid.UUID, errorMsg string) error
	SaveResults(id uuid.UUID, results []models.ScreeningResult) error
	FindPendingJobs(limit int) ([]models.Screening, error)
}

type screeningRepository struct {
	db *gorm.DB
}

func NewScreeningRepository(db *gorm.DB) ScreeningRepository {
	return &screeningRepository{db: db}
}

func (r *screeningRepository) Create(screening *models.Screening) error {
	if err := r.db.Create(screening).Error; err != nil {
		return fmt.Errorf("failed to create screening: %w", err)
	}
	return nil
}

func (r *screeningRepository) FindByID(id uuid.UUID) (*models.Screening, error) {
	var screening models.Screening
	err := r.db.
		Preload("Results", func(db *gorm.DB) *gorm.DB {
			return db.Order("final_score DESC, position ASC")
		}).
		Where("id = ?", id).
		First(&screening).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("screening not found")
		}
		return nil, fmt.Errorf("failed to find screening: %w", err)
	}
	return &screening, nil
}

// FindAll returns the screening history, most recent first. Results are not
// preloaded; the list view only needs run metadata.
func (r *screeningRepository) FindAll() ([]models.Screening, error) {
	var screenings []models.Screening
	if err := r.db.Order("created_at DESC").Find(&screenings).Error; err != nil {
		return nil, fmt.Errorf("failed to list screenings: %w", err)
	}
	return screenings, nil
}

func (r *screeningRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("screening_id = ?", id).Delete(&models.ScreeningResult{}).Error; err != nil {
			return fmt.Errorf("failed to delete screening results: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.Screening{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete screening: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("screening not found")
		}
		return nil
	})
}

func (r *screeningRepository) UpdateStatus(id uuid.UUID, status models.ScreeningStatus) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening not found")
	}

	return nil
}

func (r *screeningRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Screening{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("screening not found")
	}

	return nil
}

// SaveResults persists the per-resume verdicts and marks the run completed
// in one transaction.
func (r *screeningRepository) SaveResults(id uuid.UUID, results []models.ScreeningResult) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(results) > 0 {
			if err := tx.Create(&results).Error; err != nil {
				return fmt.Errorf("failed to save results: %w", err)
			}
		}

		result := tx.Model(&models.Screening{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     models.StatusCompleted,
				"updated_at": time.Now(),
			})

		if result.Error != nil {
			return fmt.Errorf("failed to complete screening: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("screening not found")
		}
		return nil
	})
}

func (r *screeningRepository) FindPendingJobs(limit int) ([]models.Screening, error) {
	var screenings []models.Screening
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&screenings).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return screenings, nil
}
