package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ImportFailure describes one CSV row that was not imported.
type ImportFailure struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Kind     string          `json:"kind"`
	Imported int             `json:"imported"`
	Failed   []ImportFailure `json:"failed"`
}

// ImportService bulk-creates entries from CSV exports. Each row goes through
// the same Create path as the forms.
type ImportService struct {
	steps   *StepService
	weights *WeightService
}

// NewImportService creates a new ImportService.
func NewImportService(steps *StepService, weights *WeightService) *ImportService {
	return &ImportService{steps: steps, weights: weights}
}

// Kinds lists the entry kinds that can be imported.
func (s *ImportService) Kinds() []string {
	return []string{"steps", "weights"}
}

// ImportCSV reads a header row followed by data rows. Steps need the columns
// date,steps; weights need date,weight and accept measured_at.
func (s *ImportService) ImportCSV(ctx context.Context, userID, kind string, r io.Reader) (*ImportResult, error) {
	var required []string
	switch kind {
	case "steps":
		required = []string{"date", "steps"}
	case "weights":
		required = []string{"date", "weight"}
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("Cannot import %q", kind)}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Message: "CSV file is empty"}
		}
		return nil, &ValidationError{Message: fmt.Sprintf("Invalid CSV: %v", err)}
	}
	// Spreadsheet exports often start with a byte order mark.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, &ValidationError{Message: fmt.Sprintf("CSV header must include %s", strings.Join(required, ","))}
		}
	}
	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	result := &ImportResult{Kind: kind, Failed: []ImportFailure{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			failure := ImportFailure{Error: err.Error()}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				failure.Line = perr.Line
			}
			result.Failed = append(result.Failed, failure)
			continue
		}
		line, _ := reader.FieldPos(0)

		if kind == "steps" {
			err = s.importStep(ctx, userID, field(record, "date"), field(record, "steps"))
		} else {
			err = s.importWeight(ctx, userID, field(record, "date"), field(record, "weight"), field(record, "measured_at"))
		}
		if err != nil {
			result.Failed = append(result.Failed, ImportFailure{Line: line, Error: err.Error()})
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (s *ImportService) importStep(ctx context.Context, userID, date, steps string) error {
	draft := StepDraft{Date: date}
	if steps != "" {
		n, err := strconv.Atoi(steps)
		if err != nil {
			return fmt.Errorf("steps %q is not a whole number", steps)
		}
		draft.Steps = &n
	}
	_, err := s.steps.Create(ctx, userID, draft)
	return err
}

func (s *ImportService) importWeight(ctx context.Context, userID, date, weight, measuredAt string) error {
	draft := WeightDraft{Date: date, MeasuredAt: &measuredAt}
	if weight != "" {
		w, err := strconv.ParseFloat(weight, 64)
		if err != nil {
			return fmt.Errorf("weight %q is not a number", weight)
		}
		draft.Weight = &w
	}
	_, err := s.weights.Create(ctx, userID, draft)
	return err
}
