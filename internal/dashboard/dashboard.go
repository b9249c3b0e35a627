// Package dashboard renders the model evaluation as an HTML chart page.
package dashboard

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Skufu/liverscreen/internal/evaluation"
	"github.com/Skufu/liverscreen/internal/scoring"
)

const pageTitle = "Liver Screening Model Dashboard"

// Render writes the dashboard page for ev. With no evaluation stored yet it
// only shows the scoring weights.
func Render(w io.Writer, ev *evaluation.Evaluation) error {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.AddCharts(Charts(ev)...)
	return page.Render(w)
}

// Charts builds the individual charts shown on the dashboard.
func Charts(ev *evaluation.Evaluation) []components.Charter {
	if ev == nil {
		return []components.Charter{
			importanceChart("Scoring Weights", "weights", evaluation.FromWeights(scoring.Weights())),
		}
	}

	return []components.Charter{
		metricsChart(ev),
		rocChart(ev.ROCCurve, ev.ROCAUC),
		precisionRecallChart(ev.PrecisionRecallCurve),
		confusionChart(ev.ConfusionMatrix),
		importanceChart("Feature Importance", "importance", ev.FeatureImportance),
	}
}

func initOpts(chartID string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Width:   "100%",
		Height:  "360px",
		ChartID: chartID,
	})
}

func metricsChart(ev *evaluation.Evaluation) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("metrics"),
		charts.WithTitleOpts(opts.Title{
			Title:    "Model Performance",
			Subtitle: fmt.Sprintf("%s on %s (n=%d)", ev.ModelType, ev.DatasetName, ev.Metadata.TestSetSize),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Min: 0,
			Max: 1,
		}),
	)

	bar.SetXAxis([]string{"Accuracy", "Precision", "Recall", "F1 Score", "ROC AUC"}).
		AddSeries("metrics", []opts.BarData{
			{Value: round3(ev.Accuracy)},
			{Value: round3(ev.Precision)},
			{Value: round3(ev.Recall)},
			{Value: round3(ev.F1Score)},
			{Value: round3(ev.ROCAUC)},
		}).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)
	return bar
}

func rocChart(points []evaluation.ROCPoint, auc float64) *charts.Line {
	if auc == 0 {
		auc = evaluation.AUC(points)
	}

	curve := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		curve = append(curve, opts.LineData{Value: []float64{p.FPR, p.TPR}})
	}
	chance := []opts.LineData{
		{Value: []float64{0, 0}},
		{Value: []float64{1, 1}},
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts("roc"),
		charts.WithTitleOpts(opts.Title{
			Title:    "ROC Curve",
			Subtitle: fmt.Sprintf("AUC = %.3f", auc),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "False Positive Rate",
			Type: "value",
			Min:  0,
			Max:  1,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "True Positive Rate",
			Min:  0,
			Max:  1,
		}),
	)

	line.AddSeries("ROC", curve,
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(false),
		}),
	).AddSeries("Chance", chance,
		charts.WithLineStyleOpts(opts.LineStyle{
			Color: "rgba(128, 128, 128, 0.6)",
			Type:  "dashed",
		}),
	)
	return line
}

func precisionRecallChart(points []evaluation.PRPoint) *charts.Line {
	curve := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		curve = append(curve, opts.LineData{Value: []float64{p.Recall, p.Precision}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts("precision_recall"),
		charts.WithTitleOpts(opts.Title{
			Title:    "Precision-Recall Curve",
			Subtitle: fmt.Sprintf("AP = %.3f", evaluation.AveragePrecision(points)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Recall",
			Type: "value",
			Min:  0,
			Max:  1,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "Precision",
			Scale: opts.Bool(true),
		}),
	)

	line.AddSeries("Precision-Recall", curve,
		charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(true),
		}),
	)
	return line
}

func confusionChart(m evaluation.ConfusionMatrix) *charts.HeatMap {
	predicted := []string{"Predicted Negative", "Predicted Positive"}
	actual := []string{"Actual Negative", "Actual Positive"}

	cells := []opts.HeatMapData{
		{Value: [3]interface{}{0, 0, m.TN}},
		{Value: [3]interface{}{1, 0, m.FP}},
		{Value: [3]interface{}{0, 1, m.FN}},
		{Value: [3]interface{}{1, 1, m.TP}},
	}

	peak := max(m.TN, m.FP, m.FN, m.TP)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts("confusion_matrix"),
		charts.WithTitleOpts(opts.Title{
			Title:    "Confusion Matrix",
			Subtitle: fmt.Sprintf("accuracy %.1f%%", m.Accuracy()*100),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      actual,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(peak),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#e0f3f8", "#313695"},
			},
		}),
	)

	hm.SetXAxis(predicted).
		AddSeries("confusion", cells,
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(true),
			}),
		)
	return hm
}

// importanceChart draws features as horizontal bars, most important on top.
func importanceChart(title, chartID string, features []evaluation.FeatureImportance) *charts.Bar {
	names, values := importanceRows(features)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(chartID),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
	)

	bar.SetXAxis(names).
		AddSeries("importance", values).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "right",
			}),
		)
	bar.XYReversal()
	return bar
}

// importanceRows orders features from least to most important, which is
// bottom to top once the bar chart axes are reversed.
func importanceRows(features []evaluation.FeatureImportance) ([]string, []opts.BarData) {
	ranked := evaluation.RankImportance(features)

	names := make([]string, len(ranked))
	values := make([]opts.BarData, len(ranked))
	for i, f := range ranked {
		j := len(ranked) - 1 - i
		names[j] = f.Name
		values[j] = opts.BarData{Value: round3(f.Importance)}
	}
	return names, values
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
