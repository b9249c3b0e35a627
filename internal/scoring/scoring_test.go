package scoring

import (
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var midpoint = PatientLabRecord{
	Age:                        75.5,
	Albumin:                    5,
	AlkalinePhosphatase:        250,
	AlamiNotransaminase:        250,
	AspartateAminotransaminase: 250,
	Bilirubin:                  10,
	Cholesterol:                200,
	AlbuminGlobulinRatio:       2.5,
	PlateletsCount:             500,
	ProthrombinTime:            25,
}

var healthy = PatientLabRecord{
	Age:                        30,
	Albumin:                    5.0,
	AlkalinePhosphatase:        40,
	AlamiNotransaminase:        15,
	AspartateAminotransaminase: 15,
	Bilirubin:                  0.3,
	Cholesterol:                120,
	AlbuminGlobulinRatio:       1.8,
	PlateletsCount:             350,
	ProthrombinTime:            10,
}

var highRisk = PatientLabRecord{
	Age:                        65,
	Albumin:                    2.8,
	AlkalinePhosphatase:        180,
	AlamiNotransaminase:        150,
	AspartateAminotransaminase: 160,
	Bilirubin:                  2.5,
	Cholesterol:                280,
	AlbuminGlobulinRatio:       0.9,
	PlateletsCount:             120,
	ProthrombinTime:            15,
}

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range ScoringWeights() {
		assert.GreaterOrEqual(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, ScoringWeights(), len(Features()))
}

func TestAgeListedButNotScored(t *testing.T) {
	assert.Equal(t, 0.04, Weights()[Age])
	assert.Equal(t, 0.0, ScoringWeights()[Age])

	young := midpoint.With(Age, 1)
	old := midpoint.With(Age, 150)
	assert.Equal(t, RiskScore(Normalize(young)), RiskScore(Normalize(old)))
}

func TestScoreAtValidatorLimitsStaysBounded(t *testing.T) {
	rec := PatientLabRecord{
		Age:                        150,
		AlkalinePhosphatase:        500,
		AlamiNotransaminase:        500,
		AspartateAminotransaminase: 500,
		Bilirubin:                  20,
		Cholesterol:                400,
		ProthrombinTime:            50,
	}
	require.True(t, Validate(rec).Valid)

	assert.InDelta(t, 1.0, RiskScore(Normalize(rec)), 1e-12)
	res := Score(rec)
	assert.Equal(t, 1.0, res.RiskScore)
	assert.Equal(t, RiskHigh, res.RiskLevel)
	assert.LessOrEqual(t, res.Confidence, 0.99)
}

func TestValidateMidpoint(t *testing.T) {
	res := Validate(midpoint)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidateNegativeAlbumin(t *testing.T) {
	res := Validate(midpoint.With(Albumin, -1))
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	msg := strings.ToLower(res.Errors[0])
	assert.Contains(t, msg, "albumin")
	assert.Contains(t, msg, "between 0 and 10")
	assert.Contains(t, msg, "g/dl")

	var verr *ValidationError
	require.ErrorAs(t, res.Err(), &verr)
	assert.Equal(t, res.Errors, verr.Messages)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	rec := PatientLabRecord{
		Age:                        0,
		Albumin:                    11,
		AlkalinePhosphatase:        501,
		AlamiNotransaminase:        -1,
		AspartateAminotransaminase: 600,
		Bilirubin:                  21,
		Cholesterol:                401,
		AlbuminGlobulinRatio:       6,
		PlateletsCount:             1001,
		ProthrombinTime:            51,
	}
	res := Validate(rec)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"Albumin must be between 0 and 10 g/dL",
		"Alkaline Phosphatase must be between 0 and 500 U/L",
		"ALAT must be between 0 and 500 U/L",
		"ASAT must be between 0 and 500 U/L",
		"Bilirubin must be between 0 and 20 mg/dL",
		"Cholesterol must be between 0 and 400 mg/dL",
		"Albumin/Globulin Ratio must be between 0 and 5",
		"Platelets Count must be between 0 and 1000 K/uL",
		"Prothrombin Time must be between 0 and 50 seconds",
		"Age must be between 1 and 150 years",
	}, res.Errors)
}

func TestValidateInclusiveBounds(t *testing.T) {
	lower := PatientLabRecord{Age: 1}
	assert.True(t, Validate(lower).Valid)

	upper := PatientLabRecord{
		Age:                        150,
		Albumin:                    10,
		AlkalinePhosphatase:        500,
		AlamiNotransaminase:        500,
		AspartateAminotransaminase: 500,
		Bilirubin:                  20,
		Cholesterol:                400,
		AlbuminGlobulinRatio:       5,
		PlateletsCount:             1000,
		ProthrombinTime:            50,
	}
	assert.True(t, Validate(upper).Valid)
}

func TestValidateRejectsNonFinite(t *testing.T) {
	assert.False(t, Validate(midpoint.With(Bilirubin, math.NaN())).Valid)
	assert.False(t, Validate(midpoint.With(Cholesterol, math.Inf(1))).Valid)
}

func TestNormalizeClampsAtOne(t *testing.T) {
	// 7 g/dL passes validation but sits above the 5.5 ceiling.
	rec := midpoint.With(Albumin, 7)
	require.True(t, Validate(rec).Valid)

	v := Normalize(rec)
	assert.Equal(t, 1.0, v.Get(Albumin))
	assert.Equal(t, 0.0, Normalize(PatientLabRecord{}).Get(Bilirubin))
	assert.InDelta(t, 45.0/80, Normalize(PatientLabRecord{Age: 45}).Get(Age), 1e-12)
}

func TestRiskScoreExtremes(t *testing.T) {
	var best NormalizedFeatureVector
	var worst NormalizedFeatureVector
	for _, f := range Features() {
		if LowAdverse(f) {
			best[f] = 1
		} else {
			worst[f] = 1
		}
	}
	assert.InDelta(t, 0.0, RiskScore(best), 1e-12)
	assert.InDelta(t, 1.0, RiskScore(worst), 1e-12)
}

func TestRiskScoreBoundedForValidInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		rec := PatientLabRecord{}
		for _, l := range limits {
			rec = rec.With(l.feature, l.min+rng.Float64()*(l.max-l.min))
		}
		require.True(t, Validate(rec).Valid)

		score := RiskScore(Normalize(rec))
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)

		res := Score(rec)
		require.GreaterOrEqual(t, res.Confidence, 0.95)
		require.LessOrEqual(t, res.Confidence, 0.99)
		require.Equal(t, score >= 0.5, res.Prediction == Positive)
	}
}

func TestDecideThreshold(t *testing.T) {
	assert.Equal(t, Positive, Decide(0.5).Prediction)
	assert.Equal(t, Negative, Decide(0.4999999).Prediction)
	assert.Equal(t, Positive, Decide(1).Prediction)
	assert.Equal(t, Negative, Decide(0).Prediction)
}

func TestDecideTierBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskLow},
		{0.329999, RiskLow},
		{0.33, RiskMedium},
		{0.659999, RiskMedium},
		{0.66, RiskHigh},
		{1, RiskHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Decide(tc.score).RiskLevel, "score %v", tc.score)
	}
}

func TestDecideUsesUnroundedScore(t *testing.T) {
	// 0.3296 rounds to 0.33 but still belongs to the low tier.
	res := Decide(0.3296)
	assert.Equal(t, 0.33, res.RiskScore)
	assert.Equal(t, RiskLow, res.RiskLevel)

	// 0.4996 rounds to 0.5 but is still below the threshold.
	res = Decide(0.4996)
	assert.Equal(t, 0.5, res.RiskScore)
	assert.Equal(t, Negative, res.Prediction)
}

func TestConfidenceRangeAndMonotonic(t *testing.T) {
	prev := 0.0
	for i := 0; i <= 500; i++ {
		d := float64(i) / 1000
		up := Decide(0.5 + d).Confidence
		down := Decide(0.5 - d).Confidence
		assert.InDelta(t, up, down, 0.011)
		assert.GreaterOrEqual(t, up, 0.95)
		assert.LessOrEqual(t, up, 0.99)
		assert.GreaterOrEqual(t, up, prev)
		prev = up
	}
	assert.Equal(t, 0.95, Decide(0.5).Confidence)
	assert.Equal(t, 0.97, Decide(0.9).Confidence)
}

func TestScoreHealthy(t *testing.T) {
	res := Score(healthy)
	assert.Equal(t, Negative, res.Prediction)
	assert.Equal(t, RiskLow, res.RiskLevel)
	assert.Equal(t, 0.24, res.RiskScore)
	assert.Equal(t, 0.96, res.Confidence)
}

func TestScoreHighRisk(t *testing.T) {
	res := Score(highRisk)
	assert.Equal(t, Positive, res.Prediction)
	assert.Equal(t, RiskHigh, res.RiskLevel)
	assert.Equal(t, 0.85, res.RiskScore)
	assert.Equal(t, 0.97, res.Confidence)
}

func TestScoreReferenceHealthyPanel(t *testing.T) {
	// Mid-normal values sit just under the threshold.
	rec := PatientLabRecord{
		Age:                        45,
		Albumin:                    4.0,
		AlkalinePhosphatase:        70,
		AlamiNotransaminase:        30,
		AspartateAminotransaminase: 35,
		Bilirubin:                  0.8,
		Cholesterol:                180,
		AlbuminGlobulinRatio:       1.3,
		PlateletsCount:             280,
		ProthrombinTime:            11,
	}
	assert.InDelta(t, 0.4987, RiskScore(Normalize(rec)), 1e-4)

	res := Score(rec)
	assert.Equal(t, Negative, res.Prediction)
	assert.Equal(t, RiskMedium, res.RiskLevel)
	assert.Equal(t, 0.5, res.RiskScore)
	assert.Equal(t, 0.95, res.Confidence)
}

func TestScoreIdempotent(t *testing.T) {
	first := Score(highRisk)
	second := Score(highRisk)
	assert.Equal(t, math.Float64bits(first.RiskScore), math.Float64bits(second.RiskScore))
	assert.Equal(t, math.Float64bits(first.Confidence), math.Float64bits(second.Confidence))
	assert.Equal(t, first, second)
}

func TestExplainMatchesScore(t *testing.T) {
	res, contribs := Explain(highRisk)
	assert.Equal(t, Score(highRisk), res)
	require.Len(t, contribs, len(Features()))

	sum := 0.0
	for _, c := range contribs {
		sum += c.Value
	}
	assert.InDelta(t, RiskScore(Normalize(highRisk)), sum, 1e-12)
}

func TestFeatureJSONNames(t *testing.T) {
	data, err := json.Marshal(Contribution{Feature: AlbuminGlobulinRatio})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"feature":"albuminGlobulinRatio"`)

	var f Feature
	require.NoError(t, json.Unmarshal([]byte(`"prothrombinTime"`), &f))
	assert.Equal(t, ProthrombinTime, f)
	assert.Error(t, json.Unmarshal([]byte(`"liver"`), &f))
}
