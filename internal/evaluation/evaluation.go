package evaluation

import (
	"math"
	"sort"
	"time"

	"github.com/Skufu/liverscreen/internal/scoring"
)

const (
	DefaultModelType   = "XGBoost"
	DefaultDatasetName = "Liver Patient Dataset (LPD)"
)

type ConfusionMatrix struct {
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TP int `json:"tp"`
}

func (m ConfusionMatrix) Total() int {
	return m.TN + m.FP + m.FN + m.TP
}

func (m ConfusionMatrix) Accuracy() float64 {
	return ratio(m.TP+m.TN, m.Total())
}

func (m ConfusionMatrix) Precision() float64 {
	return ratio(m.TP, m.TP+m.FP)
}

func (m ConfusionMatrix) Recall() float64 {
	return ratio(m.TP, m.TP+m.FN)
}

func (m ConfusionMatrix) F1() float64 {
	p, r := m.Precision(), m.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

type ROCPoint struct {
	FPR float64 `json:"fpr"`
	TPR float64 `json:"tpr"`
}

type PRPoint struct {
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
}

type FeatureImportance struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

type Metadata struct {
	TestSetSize  int       `json:"testSetSize"`
	TrainingDate time.Time `json:"trainingDate"`
}

// Evaluation is one stored snapshot of the model's test-set performance.
type Evaluation struct {
	ID                   int64               `json:"id"`
	ModelType            string              `json:"modelType"`
	DatasetName          string              `json:"datasetName"`
	Accuracy             float64             `json:"accuracy"`
	Precision            float64             `json:"precision"`
	Recall               float64             `json:"recall"`
	F1Score              float64             `json:"f1Score"`
	ROCAUC               float64             `json:"rocAuc"`
	ConfusionMatrix      ConfusionMatrix     `json:"confusionMatrix"`
	ROCCurve             []ROCPoint          `json:"rocCurve"`
	PrecisionRecallCurve []PRPoint           `json:"precisionRecallCurve"`
	FeatureImportance    []FeatureImportance `json:"featureImportance"`
	Metadata             Metadata            `json:"metadata"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// AUC integrates a ROC curve with the trapezoid rule after ordering by FPR.
func AUC(points []ROCPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	sorted := make([]ROCPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FPR == sorted[j].FPR {
			return sorted[i].TPR < sorted[j].TPR
		}
		return sorted[i].FPR < sorted[j].FPR
	})

	area := 0.0
	for i := 1; i < len(sorted); i++ {
		dx := sorted[i].FPR - sorted[i-1].FPR
		area += dx * (sorted[i].TPR + sorted[i-1].TPR) / 2
	}
	return area
}

// AveragePrecision is the area under the PR curve in point order.
func AveragePrecision(points []PRPoint) float64 {
	area := 0.0
	for i := 1; i < len(points); i++ {
		dx := math.Abs(points[i].Recall - points[i-1].Recall)
		area += dx * (points[i].Precision + points[i-1].Precision) / 2
	}
	return area
}

// RankedFeature is a feature importance with its share of the top feature.
type RankedFeature struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
	Relative   float64 `json:"relative"`
}

// RankImportance sorts features by importance, descending, and scales each
// against the most important one (0-100).
func RankImportance(features []FeatureImportance) []RankedFeature {
	sorted := make([]FeatureImportance, len(features))
	copy(sorted, features)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Importance > sorted[j].Importance
	})

	maxImportance := 0.0
	if len(sorted) > 0 {
		maxImportance = sorted[0].Importance
	}

	out := make([]RankedFeature, 0, len(sorted))
	for i, f := range sorted {
		relative := 0.0
		if maxImportance > 0 {
			relative = f.Importance / maxImportance * 100
		}
		out = append(out, RankedFeature{
			Rank:       i + 1,
			Name:       f.Name,
			Importance: f.Importance,
			Relative:   relative,
		})
	}
	return out
}

// FromWeights builds an importance table from the scoring engine's weights.
func FromWeights(weights map[scoring.Feature]float64) []FeatureImportance {
	out := make([]FeatureImportance, 0, len(weights))
	for _, f := range scoring.Features() {
		w, ok := weights[f]
		if !ok {
			continue
		}
		out = append(out, FeatureImportance{Name: f.String(), Importance: w})
	}
	return out
}
