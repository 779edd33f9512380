package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"skillscreen/resume-screener/internal/config"
	"skillscreen/resume-screener/internal/logger"
	"skillscreen/resume-screener/internal/models"
	"skillscreen/resume-screener/internal/services"
)

// Batch mode: screen a directory of resumes against a job description
// file and write the ranked results as CSV, without the API server or
// the database.
func main() {
	jdPath := flag.String("jd", "", "path to a text file with the job description")
	jobTitle := flag.String("title", "", "job title (optional)")
	resumeDir := flag.String("resumes", "", "directory with PDF/DOCX resumes")
	outPath := flag.String("out", "ranked_candidates.csv", "output CSV path")
	flag.Parse()

	if *jdPath == "" || *resumeDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	jdBytes, err := os.ReadFile(*jdPath)
	if err != nil {
		log.Fatalf("failed to read job description: %v", err)
	}
	jobDescription := strings.TrimSpace(string(jdBytes))
	if jobDescription == "" {
		log.Fatal("job description file is empty")
	}

	resumes, err := collectResumes(*resumeDir)
	if err != nil {
		log.Fatalf("failed to scan resume directory: %v", err)
	}
	if len(resumes) == 0 {
		log.Fatalf("no PDF or DOCX files found in %s", *resumeDir)
	}
	log.Printf("found %d resumes", len(resumes))

	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.EmbedModel,
		cfg.Worker.RetryMaxAttempts,
		cfg.Worker.RetryInitialDelay,
		zlog,
	)
	if err != nil {
		log.Fatalf("failed to initialize Gemini client: %v", err)
	}

	index, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		zlog,
	)
	if err != nil {
		log.Fatalf("failed to initialize Qdrant client: %v", err)
	}
	if err := index.InitCollection(); err != nil {
		log.Fatalf("failed to initialize Qdrant collection: %v", err)
	}

	extractor := services.NewDocumentExtractor(cfg.Storage.MaxFileSize)
	fuser := services.NewScoreFuser(cfg.Scoring.LLMWeight, cfg.Scoring.SimilarityWeight)

	pipeline := services.NewPipeline(
		extractor,
		geminiService,
		index,
		fuser,
		cfg.Worker.Concurrency,
		cfg.Gemini.RequestTimeout,
		zlog,
	)

	ctx := context.Background()
	screeningID := uuid.New().String()

	outcomes, err := pipeline.Run(ctx, screeningID, services.JobSpec{
		Title:       *jobTitle,
		Description: jobDescription,
	}, resumes)
	if err != nil {
		log.Fatalf("screening failed: %v", err)
	}

	results := make([]models.ScreeningResult, 0, len(outcomes))
	failed := 0
	for _, outcome := range outcomes {
		result := models.ScreeningResult{
			CandidateName:   outcome.CandidateName,
			Position:        outcome.Position,
			LLMScore:        outcome.LLMScore,
			SimilarityScore: outcome.SimilarityScore,
			FinalScore:      outcome.FinalScore,
			Summary:         outcome.Summary,
			MatchingSkills:  datatypes.NewJSONSlice(outcome.MatchingSkills),
			MissingSkills:   datatypes.NewJSONSlice(outcome.MissingSkills),
			Status:          models.ResultScored,
		}
		if outcome.Err != nil {
			result.Status = models.ResultFailed
			failed++
			log.Printf("resume %s failed: %v", outcome.CandidateName, outcome.Err)
		}
		results = append(results, result)
	}
	services.RankResults(results)

	data, err := services.NewExportService().ToCSV(results)
	if err != nil {
		log.Fatalf("failed to render CSV: %v", err)
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		log.Fatalf("failed to write %s: %v", *outPath, err)
	}

	// Batch vectors are throwaway, drop them from the index.
	if err := index.DeleteRun(ctx, screeningID); err != nil {
		log.Printf("failed to clean up vectors: %v", err)
	}

	log.Printf("wrote %s: %d scored, %d failed", *outPath, len(results)-failed, failed)
}

func collectResumes(dir string) ([]services.ResumeFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var resumes []services.ResumeFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".pdf" && ext != ".docx" {
			continue
		}
		resumes = append(resumes, services.ResumeFile{
			DocumentID: uuid.New().String(),
			Filename:   entry.Name(),
			FilePath:   filepath.Join(dir, entry.Name()),
		})
	}
	return resumes, nil
}
