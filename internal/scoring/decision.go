package scoring

import "math"

type Prediction string

const (
	Positive Prediction = "positive"
	Negative Prediction = "negative"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	Threshold = 0.5

	mediumFloor = 0.33
	highFloor   = 0.66

	confidenceFloor = 0.95
	confidenceCap   = 0.99
	confidenceSlope = 0.05
)

// PredictionResult is the engine's answer for one record.
type PredictionResult struct {
	Prediction Prediction `json:"prediction"`
	Confidence float64    `json:"confidence"`
	RiskScore  float64    `json:"riskScore"`
	RiskLevel  RiskLevel  `json:"riskLevel"`
}

// Decide thresholds an unrounded risk score. The decision and tier are taken
// from the raw score; only the returned figures are rounded.
//
// Confidence is a floor-plus-distance heuristic, not a calibrated
// probability: it never drops below 0.95.
func Decide(score float64) PredictionResult {
	prediction := Negative
	if score >= Threshold {
		prediction = Positive
	}

	confidence := math.Min(confidenceFloor+math.Abs(score-Threshold)*confidenceSlope, confidenceCap)

	return PredictionResult{
		Prediction: prediction,
		Confidence: round2(confidence),
		RiskScore:  round2(score),
		RiskLevel:  Tier(score),
	}
}

// Tier buckets a risk score into low, medium or high.
func Tier(score float64) RiskLevel {
	switch {
	case score < mediumFloor:
		return RiskLow
	case score < highFloor:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Score runs normalization, scoring and the decision policy. It does not
// validate; callers reject records that fail Validate first.
func Score(record PatientLabRecord) PredictionResult {
	return Decide(RiskScore(Normalize(record)))
}

// Explain returns the result together with the per-feature terms behind it.
func Explain(record PatientLabRecord) (PredictionResult, []Contribution) {
	v := Normalize(record)
	return Decide(RiskScore(v)), Contributions(v)
}
