package scoring

import (
	"fmt"
	"math"
	"strings"
)

type limit struct {
	feature Feature
	label   string
	unit    string
	min     float64
	max     float64
}

// Acceptance bounds, in the order errors are reported.
var limits = []limit{
	{feature: Albumin, label: "Albumin", unit: "g/dL", min: 0, max: 10},
	{feature: AlkalinePhosphatase, label: "Alkaline Phosphatase", unit: "U/L", min: 0, max: 500},
	{feature: AlamiNotransaminase, label: "ALAT", unit: "U/L", min: 0, max: 500},
	{feature: AspartateAminotransaminase, label: "ASAT", unit: "U/L", min: 0, max: 500},
	{feature: Bilirubin, label: "Bilirubin", unit: "mg/dL", min: 0, max: 20},
	{feature: Cholesterol, label: "Cholesterol", unit: "mg/dL", min: 0, max: 400},
	{feature: AlbuminGlobulinRatio, label: "Albumin/Globulin Ratio", min: 0, max: 5},
	{feature: PlateletsCount, label: "Platelets Count", unit: "K/uL", min: 0, max: 1000},
	{feature: ProthrombinTime, label: "Prothrombin Time", unit: "seconds", min: 0, max: 50},
	{feature: Age, label: "Age", unit: "years", min: 1, max: 150},
}

func (l limit) message() string {
	msg := fmt.Sprintf("%s must be between %g and %g", l.label, l.min, l.max)
	if l.unit != "" {
		msg += " " + l.unit
	}
	return msg
}

func (l limit) accepts(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= l.min && v <= l.max
}

// ValidationResult lists every bound a record violates.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err returns nil for a valid result.
func (v ValidationResult) Err() error {
	if v.Valid {
		return nil
	}
	return &ValidationError{Messages: v.Errors}
}

// ValidationError rejects a record before scoring.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid patient data: " + strings.Join(e.Messages, ", ")
}

// Validate range-checks all ten fields and collects every violation.
func Validate(record PatientLabRecord) ValidationResult {
	errs := []string{}
	for _, l := range limits {
		if !l.accepts(record.Value(l.feature)) {
			errs = append(errs, l.message())
		}
	}
	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}
