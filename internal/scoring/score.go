package scoring

// Importance table shown on the dashboard. Age is listed at 0.04 but is not
// part of the risk score, so the scored weights alone sum to 1.0.
var weights = [featureCount]float64{
	Albumin:                    0.25,
	AlkalinePhosphatase:        0.18,
	AlamiNotransaminase:        0.16,
	AspartateAminotransaminase: 0.15,
	Bilirubin:                  0.12,
	Cholesterol:                0.06,
	AlbuminGlobulinRatio:       0.04,
	PlateletsCount:             0.02,
	ProthrombinTime:            0.02,
	Age:                        0.04,
}

// Features where a low measurement is the adverse direction.
var lowAdverse = [featureCount]bool{
	Albumin:              true,
	AlbuminGlobulinRatio: true,
	PlateletsCount:       true,
}

// Weights returns a copy of the importance table keyed by feature.
func Weights() map[Feature]float64 {
	out := make(map[Feature]float64, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		out[f] = weights[f]
	}
	return out
}

// ScoringWeights returns the weights that enter the risk score. Age is
// reported with weight 0.
func ScoringWeights() map[Feature]float64 {
	out := make(map[Feature]float64, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		out[f] = scoringWeight(f)
	}
	return out
}

func scoringWeight(f Feature) float64 {
	if f == Age {
		return 0
	}
	return weights[f]
}

// LowAdverse reports whether low values of f indicate disease.
func LowAdverse(f Feature) bool {
	return lowAdverse[f]
}

func directional(f Feature, normalized float64) float64 {
	if lowAdverse[f] {
		return 1 - normalized
	}
	return normalized
}

// Contribution is one feature's term of the risk score.
type Contribution struct {
	Feature    Feature `json:"feature"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"`
	Value      float64 `json:"value"`
}

// Contributions returns the weighted term of every feature in canonical order.
// The values sum to RiskScore(v).
func Contributions(v NormalizedFeatureVector) []Contribution {
	out := make([]Contribution, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		w := scoringWeight(f)
		out = append(out, Contribution{
			Feature:    f,
			Normalized: v[f],
			Weight:     w,
			Value:      w * directional(f, v[f]),
		})
	}
	return out
}

// RiskScore combines the normalized features into an abnormality index in [0, 1].
func RiskScore(v NormalizedFeatureVector) float64 {
	score := 0.0
	for f := Feature(0); f < featureCount; f++ {
		score += scoringWeight(f) * directional(f, v[f])
	}
	return score
}
