package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// prSampleStride keeps every n-th precision/recall point when seeding.
const prSampleStride = 10

var ErrMissingMetrics = errors.New("model data has no metrics section")

type modelData struct {
	Metrics *struct {
		Accuracy  float64 `json:"accuracy"`
		Precision float64 `json:"precision"`
		Recall    float64 `json:"recall"`
		F1Score   float64 `json:"f1_score"`
	} `json:"metrics"`
	ROCCurve struct {
		AUC    float64    `json:"auc"`
		Points []ROCPoint `json:"points"`
	} `json:"roc_curve"`
	ConfusionMatrix struct {
		TrueNegative  int `json:"true_negative"`
		FalsePositive int `json:"false_positive"`
		FalseNegative int `json:"false_negative"`
		TruePositive  int `json:"true_positive"`
	} `json:"confusion_matrix"`
	PrecisionRecallCurve struct {
		Points []PRPoint `json:"points"`
	} `json:"precision_recall_curve"`
	FeatureImportance []struct {
		Feature    string  `json:"feature"`
		Importance float64 `json:"importance"`
	} `json:"feature_importance"`
}

// LoadModelData converts a training export into an Evaluation ready to store.
func LoadModelData(r io.Reader, now time.Time) (*Evaluation, error) {
	var data modelData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode model data: %w", err)
	}
	if data.Metrics == nil {
		return nil, ErrMissingMetrics
	}

	cm := ConfusionMatrix{
		TN: data.ConfusionMatrix.TrueNegative,
		FP: data.ConfusionMatrix.FalsePositive,
		FN: data.ConfusionMatrix.FalseNegative,
		TP: data.ConfusionMatrix.TruePositive,
	}

	pr := make([]PRPoint, 0, len(data.PrecisionRecallCurve.Points)/prSampleStride+1)
	for i, p := range data.PrecisionRecallCurve.Points {
		if i%prSampleStride == 0 {
			pr = append(pr, p)
		}
	}

	features := make([]FeatureImportance, 0, len(data.FeatureImportance))
	for _, f := range data.FeatureImportance {
		features = append(features, FeatureImportance{
			Name:       strings.TrimSpace(f.Feature),
			Importance: f.Importance,
		})
	}

	roc := data.ROCCurve.Points
	if roc == nil {
		roc = []ROCPoint{}
	}
	auc := data.ROCCurve.AUC
	if auc == 0 {
		auc = AUC(roc)
	}

	return &Evaluation{
		ModelType:            DefaultModelType,
		DatasetName:          DefaultDatasetName,
		Accuracy:             data.Metrics.Accuracy,
		Precision:            data.Metrics.Precision,
		Recall:               data.Metrics.Recall,
		F1Score:              data.Metrics.F1Score,
		ROCAUC:               auc,
		ConfusionMatrix:      cm,
		ROCCurve:             roc,
		PrecisionRecallCurve: pr,
		FeatureImportance:    features,
		Metadata: Metadata{
			TestSetSize:  cm.Total(),
			TrainingDate: now.UTC(),
		},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}
