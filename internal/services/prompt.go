package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildVerdictPrompt creates the evaluation prompt for a single resume. The
// embedding similarity is included as supporting signal; the model is asked
// to judge primarily from the texts.
func (pb *PromptBuilder) BuildVerdictPrompt(jobTitle, jobDescription, resumeText string, similarity float64) string {
	title := strings.TrimSpace(jobTitle)
	if title == "" {
		title = "the advertised role"
	}

	return fmt.Sprintf(`You are an expert recruiter assistant evaluating a candidate's resume for %s.

JOB DESCRIPTION:
%s

CANDIDATE RESUME:
%s

EMBEDDING SIMILARITY SCORE: %.2f

Evaluate how well the candidate matches the job description. Use the similarity score to inform your judgement but rely primarily on the resume and job description content.

Return your response as a single JSON object in exactly the following format:
{
  "score": <0-100, overall match score>,
  "summary": "<3-5 sentence summary of the candidate's fit for the role>",
  "matching_skills": ["<skills from the resume that match the job requirements>"],
  "missing_skills": ["<required skills missing from the resume>"]
}

Return ONLY the JSON object with these four fields and no additional text. Be objective and reference specific evidence from the resume.`,
		title, jobDescription, resumeText, similarity)
}
