package excel

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/example/hamprep/pkg/models"
)

// ErrUnsupportedFormat is returned for files that are not xlsx, csv or json.
var ErrUnsupportedFormat = errors.New("unsupported import format")

var questionIDPattern = regexp.MustCompile(`^T[0-9][A-Z][0-9]{2}$`)

// Column layout of spreadsheet and CSV imports.
const (
	colID = iota
	colSubelement
	colQuestion
	colAnswerA
	colAnswerB
	colAnswerC
	colAnswerD
	colCorrect
	colExplanation
	colReferences
)

// QuestionStore persists imported questions.
type QuestionStore interface {
	Upsert(ctx context.Context, questions []models.Question) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath  string // Path to the xlsx, csv or json file
	SheetName string // Sheet to read from an xlsx file; the first sheet when empty
	StartRow  int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		StartRow: 2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int      `json:"totalProcessed"`
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// Importer loads the question pool from files.
type Importer struct {
	store QuestionStore
	log   logrus.FieldLogger
}

// NewImporter creates an importer writing to store.
func NewImporter(store QuestionStore, log logrus.FieldLogger) *Importer {
	return &Importer{store: store, log: log}
}

// ImportFile parses the file named in config, validates every row and
// upserts the valid ones. Invalid rows are reported in the result.
func (im *Importer) ImportFile(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var result *ImportResult
	var questions []models.Question

	switch ext := strings.ToLower(filepath.Ext(config.FilePath)); ext {
	case ".xlsx", ".xlsm":
		questions, result, err = ParseExcel(f, config)
	case ".csv":
		questions, result, err = ParseCSV(f, config)
	case ".json":
		questions, result, err = ParsePoolJSON(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if len(questions) > 0 {
		if err := im.store.Upsert(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
	}
	result.Imported = len(questions)

	im.log.WithFields(logrus.Fields{
		"file":      config.FilePath,
		"processed": result.TotalProcessed,
		"imported":  result.Imported,
		"skipped":   result.Skipped,
	}).Info("questions imported")
	return result, nil
}

// ParseExcel reads questions from a workbook.
func ParseExcel(r io.Reader, config ImportConfig) ([]models.Question, *ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}

	questions, result := collectRows(rows, config.StartRow)
	return questions, result, nil
}

// ParseCSV reads questions from comma separated values.
func ParseCSV(r io.Reader, config ImportConfig) ([]models.Question, *ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading CSV: %w", err)
	}

	questions, result := collectRows(rows, config.StartRow)
	return questions, result, nil
}

// poolEntry is one question of the published NCVEC pool in JSON form.
type poolEntry struct {
	ID       string   `json:"id"`
	Correct  int      `json:"correct"` // index into Answers
	Refs     string   `json:"refs"`
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// ParsePoolJSON reads the published pool format: a JSON array of
// {id, correct, refs, question, answers}.
func ParsePoolJSON(r io.Reader) ([]models.Question, *ImportResult, error) {
	var entries []poolEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, nil, fmt.Errorf("failed to decode question pool: %w", err)
	}

	result := newResult()
	seen := make(map[string]struct{}, len(entries))
	questions := make([]models.Question, 0, len(entries))

	for i, e := range entries {
		result.TotalProcessed++

		correct := ""
		if e.Correct >= 0 && e.Correct < len(models.AnswerLetters) {
			correct = models.AnswerLetters[e.Correct]
		}
		q := models.Question{
			ID:            e.ID,
			QuestionText:  e.Question,
			AnswerA:       answerAt(e.Answers, 0),
			AnswerB:       answerAt(e.Answers, 1),
			AnswerC:       answerAt(e.Answers, 2),
			AnswerD:       answerAt(e.Answers, 3),
			CorrectAnswer: correct,
			References:    strings.NewReplacer("[", "", "]", "").Replace(e.Refs),
		}

		if err := accept(&q, seen); err != nil {
			result.skip(fmt.Sprintf("Entry %d: %v", i+1, err))
			continue
		}
		questions = append(questions, q)
	}
	return questions, result, nil
}

func collectRows(rows [][]string, startRow int) ([]models.Question, *ImportResult) {
	if startRow < 1 {
		startRow = 1
	}

	result := newResult()
	seen := make(map[string]struct{}, len(rows))
	questions := make([]models.Question, 0, len(rows))

	for i, row := range rows {
		// Skip header rows
		if i < startRow-1 || blank(row) {
			continue
		}
		result.TotalProcessed++

		q := models.Question{
			ID:            cell(row, colID),
			Subelement:    cell(row, colSubelement),
			QuestionText:  cell(row, colQuestion),
			AnswerA:       cell(row, colAnswerA),
			AnswerB:       cell(row, colAnswerB),
			AnswerC:       cell(row, colAnswerC),
			AnswerD:       cell(row, colAnswerD),
			CorrectAnswer: cell(row, colCorrect),
			Explanation:   cell(row, colExplanation),
			References:    cell(row, colReferences),
		}

		if err := accept(&q, seen); err != nil {
			result.skip(fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		questions = append(questions, q)
	}
	return questions, result
}

// accept normalizes q in place and validates it.
func accept(q *models.Question, seen map[string]struct{}) error {
	q.ID = strings.ToUpper(strings.TrimSpace(q.ID))
	q.Subelement = strings.ToUpper(strings.TrimSpace(q.Subelement))
	q.QuestionText = strings.TrimSpace(q.QuestionText)
	q.AnswerA = strings.TrimSpace(q.AnswerA)
	q.AnswerB = strings.TrimSpace(q.AnswerB)
	q.AnswerC = strings.TrimSpace(q.AnswerC)
	q.AnswerD = strings.TrimSpace(q.AnswerD)
	q.CorrectAnswer = models.NormalizeAnswer(q.CorrectAnswer)
	q.Explanation = strings.TrimSpace(q.Explanation)
	q.References = strings.TrimSpace(q.References)

	if !questionIDPattern.MatchString(q.ID) {
		return fmt.Errorf("invalid question id %q", q.ID)
	}
	if _, dup := seen[q.ID]; dup {
		return fmt.Errorf("duplicate question id %s", q.ID)
	}
	if q.Subelement == "" {
		q.Subelement = models.SubelementFromQuestionID(q.ID)
	}
	if q.Subelement != models.SubelementFromQuestionID(q.ID) {
		return fmt.Errorf("subelement %s does not match question id %s", q.Subelement, q.ID)
	}
	if q.QuestionText == "" {
		return errors.New("question text cannot be empty")
	}
	for _, letter := range models.AnswerLetters {
		if text, _ := q.Answer(letter); text == "" {
			return fmt.Errorf("answer %s cannot be empty", letter)
		}
	}
	if _, ok := q.Answer(q.CorrectAnswer); !ok {
		return fmt.Errorf("correct answer must be A, B, C or D, got %q", q.CorrectAnswer)
	}
	if q.Explanation == "" {
		q.Explanation = q.DefaultExplanation()
	}

	seen[q.ID] = struct{}{}
	return nil
}

func newResult() *ImportResult {
	return &ImportResult{Errors: make([]string, 0)}
}

func (r *ImportResult) skip(msg string) {
	r.Skipped++
	r.Errors = append(r.Errors, msg)
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func answerAt(answers []string, idx int) string {
	if idx < len(answers) {
		return answers[idx]
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
