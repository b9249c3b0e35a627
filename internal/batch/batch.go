// Package batch scores delimited patient panels row by row. A bad row is
// reported and skipped; only a bad header fails the whole batch.
package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Skufu/liverscreen/internal/logging"
	"github.com/Skufu/liverscreen/internal/scoring"
)

var ErrNoRows = errors.New("CSV must contain header and at least one data row")

// MissingColumnsError rejects a batch whose header lacks required lab columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Missing required columns: " + strings.Join(e.Columns, ", ")
}

const (
	genderMale   = "male"
	genderFemale = "female"
)

// Entry is a scored row handed to a Recorder.
type Entry struct {
	Row    int
	Name   string
	Gender string
	Labs   scoring.PatientLabRecord
	Result scoring.PredictionResult
}

// Recorder persists scored rows and returns the stored patient ID.
type Recorder interface {
	Record(ctx context.Context, entry Entry) (int64, error)
}

type RowResult struct {
	Row       int    `json:"row"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	PatientID int64  `json:"patientId,omitempty"`
	scoring.PredictionResult
}

type RowError struct {
	Row   int    `json:"row"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

type Result struct {
	TotalRows    int         `json:"totalRows"`
	SuccessCount int         `json:"successCount"`
	ErrorCount   int         `json:"errorCount"`
	Results      []RowResult `json:"results"`
	Errors       []RowError  `json:"errors,omitempty"`
}

type Adapter struct {
	recorder Recorder
	logger   *log.Logger
}

type Option func(*Adapter)

// WithRecorder persists every successfully scored row.
func WithRecorder(r Recorder) Option {
	return func(a *Adapter) {
		a.recorder = r
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

func New(opts ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.Logger(logging.SourceBatch)
	}
	return a
}

// ScoreBatch scores csvText without persisting anything.
func ScoreBatch(csvText string) (*Result, error) {
	return New().Process(context.Background(), strings.NewReader(csvText))
}

type rawRow struct {
	row    int
	values []string
	err    error
}

// Process reads the header and every data row from r, then scores each row.
func (a *Adapter) Process(ctx context.Context, r io.Reader) (*Result, error) {
	header, rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if header == nil || len(rows) == 0 {
		return nil, ErrNoRows
	}

	idx, missing := mapHeader(header)
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	res := &Result{
		TotalRows: len(rows),
		Results:   []RowResult{},
	}

	for _, raw := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if raw.err != nil {
			res.Errors = append(res.Errors, RowError{Row: raw.row, Error: raw.err.Error()})
			continue
		}

		name, gender := identity(idx, raw.values, raw.row)

		labs, err := parseLabs(idx, raw.values)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: raw.row, Name: name, Error: err.Error()})
			continue
		}

		if err := scoring.Validate(labs).Err(); err != nil {
			var verr *scoring.ValidationError
			msg := err.Error()
			if errors.As(err, &verr) {
				msg = strings.Join(verr.Messages, ", ")
			}
			res.Errors = append(res.Errors, RowError{Row: raw.row, Name: name, Error: msg})
			continue
		}

		result := scoring.Score(labs)
		out := RowResult{
			Row:              raw.row,
			Name:             name,
			Gender:           gender,
			PredictionResult: result,
		}

		if a.recorder != nil {
			id, err := a.recorder.Record(ctx, Entry{
				Row:    raw.row,
				Name:   name,
				Gender: gender,
				Labs:   labs,
				Result: result,
			})
			if err != nil {
				a.logger.Warn("failed to record batch row", "row", raw.row, "error", err)
			} else {
				out.PatientID = id
			}
		}

		res.Results = append(res.Results, out)
	}

	res.SuccessCount = len(res.Results)
	res.ErrorCount = len(res.Errors)
	return res, nil
}

// readRows returns the header and every non-blank data row. Rows the CSV
// reader cannot parse are kept with their error so the row loop reports them.
func readRows(r io.Reader) ([]string, []rawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var header []string
	headerLine := 0
	rows := []rawRow{}

	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var perr *csv.ParseError
		if err != nil && !errors.As(err, &perr) {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}

		if header == nil {
			if err != nil {
				return nil, nil, fmt.Errorf("read csv header: %w", err)
			}
			if blank(values) {
				continue
			}
			header = values
			headerLine, _ = reader.FieldPos(0)
			continue
		}

		if err != nil {
			rows = append(rows, rawRow{row: perr.StartLine - headerLine, err: err})
			continue
		}
		if blank(values) {
			continue
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, rawRow{row: line - headerLine, values: values})
	}

	return header, rows, nil
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func identity(idx columnIndex, values []string, row int) (string, string) {
	name, ok := idx.cell(values, colName)
	if !ok || name == "" {
		name = fmt.Sprintf("Patient %d", row)
	}

	gender := genderMale
	if raw, ok := idx.cell(values, colGender); ok && strings.Contains(strings.ToLower(raw), "f") {
		gender = genderFemale
	}
	return name, gender
}

func parseLabs(idx columnIndex, values []string) (scoring.PatientLabRecord, error) {
	var labs scoring.PatientLabRecord
	for c := colAge; c <= colProthrombinTime; c++ {
		feature := labColumns[c]
		raw, _ := idx.cell(values, c)

		v, err := parseDecimal(raw)
		if err != nil {
			return labs, fmt.Errorf("invalid %s value %q", feature, raw)
		}
		if feature == scoring.Age {
			v = math.Trunc(v)
		}
		labs = labs.With(feature, v)
	}
	return labs, nil
}

// parseDecimal accepts plain decimal text only. ParseFloat on its own also
// takes hex floats, underscores and Inf/NaN spellings.
func parseDecimal(raw string) (float64, error) {
	if raw == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '+', r == '-', r == 'e', r == 'E':
		default:
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseFloat(raw, 64)
}
