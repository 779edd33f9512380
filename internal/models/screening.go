package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScreeningStatus string

const (
	StatusQueued     ScreeningStatus = "queued"
	StatusProcessing ScreeningStatus = "processing"
	StatusCompleted  ScreeningStatus = "completed"
	StatusFailed     ScreeningStatus = "failed"
)

type ResultStatus string

const (
	ResultScored ResultStatus = "scored"
	ResultFailed ResultStatus = "failed"
)

// Screening is one evaluation run: a job description plus the ranked
// results of every resume submitted against it.
type Screening struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobTitle       string                      `gorm:"type:text" json:"job_title"`
	JobDescription string                      `gorm:"type:text;not null" json:"job_description"`
	DocumentIDs    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"document_ids"`
	Status         ScreeningStatus             `gorm:"not null;default:'queued'" json:"status"`
	ErrorMessage   *string                     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time                   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Results []ScreeningResult `gorm:"foreignKey:ScreeningID;constraint:OnDelete:CASCADE" json:"results,omitempty"`
}

func (Screening) TableName() string {
	return "screenings"
}

// ScreeningResult is the verdict for a single resume within a run.
// Position records upload order and breaks final-score ties.
type ScreeningResult struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ScreeningID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"screening_id"`
	DocumentID      uuid.UUID                   `gorm:"type:uuid;not null" json:"document_id"`
	Position        int                         `gorm:"not null" json:"position"`
	CandidateName   string                      `gorm:"type:text" json:"candidate_name"`
	Status          ResultStatus                `gorm:"not null;default:'scored'" json:"status"`
	LLMScore        float64                     `gorm:"type:decimal(5,2)" json:"llm_score"`
	SimilarityScore float64                     `gorm:"type:decimal(6,5)" json:"similarity_score"`
	FinalScore      float64                     `gorm:"type:decimal(5,2)" json:"final_score"`
	Summary         string                      `gorm:"type:text" json:"summary"`
	MatchingSkills  datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"matching_skills"`
	MissingSkills   datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"missing_skills"`
	ErrorMessage    *string                     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time                   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relations
	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (ScreeningResult) TableName() string {
	return "screening_results"
}
