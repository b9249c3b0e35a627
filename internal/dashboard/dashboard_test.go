package dashboard

import (
	"bytes"
	"testing"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/liverscreen/internal/evaluation"
)

func sampleEvaluation() *evaluation.Evaluation {
	return &evaluation.Evaluation{
		ModelType:       evaluation.DefaultModelType,
		DatasetName:     evaluation.DefaultDatasetName,
		Accuracy:        0.9908,
		Precision:       0.9922,
		Recall:          0.9948,
		F1Score:         0.9935,
		ConfusionMatrix: evaluation.ConfusionMatrix{TN: 1580, FP: 30, FN: 20, TP: 3830},
		ROCCurve: []evaluation.ROCPoint{
			{FPR: 0, TPR: 0},
			{FPR: 0.1, TPR: 0.9},
			{FPR: 1, TPR: 1},
		},
		PrecisionRecallCurve: []evaluation.PRPoint{
			{Recall: 1, Precision: 0.7},
			{Recall: 0.5, Precision: 0.95},
			{Recall: 0, Precision: 1},
		},
		FeatureImportance: []evaluation.FeatureImportance{
			{Name: "bilirubin", Importance: 0.3},
			{Name: "albumin", Importance: 0.1},
			{Name: "aspartateAminotransaminase", Importance: 0.6},
		},
		Metadata: evaluation.Metadata{TestSetSize: 5460},
	}
}

func TestChartsWithoutEvaluationShowsWeightsOnly(t *testing.T) {
	got := Charts(nil)
	require.Len(t, got, 1)
	assert.IsType(t, &charts.Bar{}, got[0])
}

func TestChartsWithEvaluation(t *testing.T) {
	got := Charts(sampleEvaluation())
	require.Len(t, got, 5)
	assert.IsType(t, &charts.Bar{}, got[0])
	assert.IsType(t, &charts.Line{}, got[1])
	assert.IsType(t, &charts.Line{}, got[2])
	assert.IsType(t, &charts.HeatMap{}, got[3])
	assert.IsType(t, &charts.Bar{}, got[4])
}

func TestRenderIncludesEveryChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleEvaluation()))

	html := buf.String()
	assert.Contains(t, html, pageTitle)
	for _, title := range []string{"Model Performance", "ROC Curve", "Precision-Recall Curve", "Confusion Matrix", "Feature Importance"} {
		assert.Contains(t, html, title)
	}
	assert.Contains(t, html, "AUC = 0.900")
}

func TestRenderWithoutEvaluation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil))

	html := buf.String()
	assert.Contains(t, html, "Scoring Weights")
	assert.Contains(t, html, "aspartateAminotransaminase")
	assert.NotContains(t, html, "ROC Curve")
}

func TestImportanceRowsPutTopFeatureLast(t *testing.T) {
	names, values := importanceRows(sampleEvaluation().FeatureImportance)

	assert.Equal(t, []string{"albumin", "bilirubin", "aspartateAminotransaminase"}, names)
	require.Len(t, values, 3)
	assert.Equal(t, 0.1, values[0].Value)
	assert.Equal(t, 0.6, values[2].Value)
}
