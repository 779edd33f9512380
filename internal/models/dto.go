package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
}

type ScreeningRequest struct {
	JobTitle       string   `json:"job_title"`
	JobDescription string   `json:"job_description" validate:"required"`
	DocumentIDs    []string `json:"document_ids" validate:"required,min=1,dive,uuid"`
}

type ScreeningResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ScreeningDetailResponse struct {
	ID             string          `json:"id"`
	JobTitle       string          `json:"job_title"`
	JobDescription string          `json:"job_description"`
	Status         string          `json:"status"`
	Results        []ResultDetail  `json:"results,omitempty"`
	ErrorMessage   *string         `json:"error_message,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type ResultDetail struct {
	CandidateName   string   `json:"candidate_name"`
	Status          string   `json:"status"`
	LLMScore        float64  `json:"llm_score"`
	SimilarityScore float64  `json:"similarity_score"`
	FinalScore      float64  `json:"final_score"`
	Summary         string   `json:"summary"`
	MatchingSkills  []string `json:"matching_skills"`
	MissingSkills   []string `json:"missing_skills"`
	ErrorMessage    *string  `json:"error_message,omitempty"`
}

type ScreeningListItem struct {
	ID        string `json:"id"`
	JobTitle  string `json:"job_title"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
