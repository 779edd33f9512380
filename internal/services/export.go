package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"skillscreen/resume-screener/internal/models"
)

// skillSeparator joins skill lists into a single cell.
const skillSeparator = "; "

var exportHeader = []string{
	"candidate_name",
	"final_score",
	"llm_score",
	"similarity_score",
	"summary",
	"matching_skills",
	"missing_skills",
}

// ExportService renders ranked screening results for download.
type ExportService interface {
	ToCSV(results []models.ScreeningResult) ([]byte, error)
	ToXLSX(screening *models.Screening) ([]byte, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

// ToCSV implements ExportService. One row per result, in the order given.
func (e *exportService) ToCSV(results []models.ScreeningResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		row := []string{
			result.CandidateName,
			formatScore(result.FinalScore),
			formatScore(result.LLMScore),
			strconv.FormatFloat(result.SimilarityScore, 'f', 4, 64),
			result.Summary,
			strings.Join(result.MatchingSkills, skillSeparator),
			strings.Join(result.MissingSkills, skillSeparator),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// ToXLSX implements ExportService.
func (e *exportService) ToXLSX(screening *models.Screening) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ranked Candidates"
	f.SetSheetName("Sheet1", sheet)

	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "D", 15)
	f.SetColWidth(sheet, "E", "E", 60)
	f.SetColWidth(sheet, "F", "G", 40)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range exportHeader {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, result := range screening.Results {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), result.CandidateName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), result.FinalScore)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), result.LLMScore)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), result.SimilarityScore)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), result.Summary)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), strings.Join(result.MatchingSkills, skillSeparator))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), strings.Join(result.MissingSkills, skillSeparator))
	}

	if len(screening.Results) > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:G%d", len(screening.Results)+1), []excelize.AutoFilterOptions{})
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}
