package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Skufu/liverscreen/internal/batch"
	"github.com/Skufu/liverscreen/internal/dashboard"
	"github.com/Skufu/liverscreen/internal/evaluation"
	"github.com/Skufu/liverscreen/internal/scoring"
	"github.com/Skufu/liverscreen/internal/store"
)

type handlers struct {
	store  store.Store
	batch  *batch.Adapter
	logger *log.Logger
}

// labsRequest keeps lab values as pointers so an omitted field is told apart
// from an explicit zero.
type labsRequest struct {
	Age                        *float64 `json:"age"`
	Albumin                    *float64 `json:"albumin"`
	AlkalinePhosphatase        *float64 `json:"alkalinePhosphatase"`
	AlamiNotransaminase        *float64 `json:"alamiNotransaminase"`
	AspartateAminotransaminase *float64 `json:"aspartateAminotransaminase"`
	Bilirubin                  *float64 `json:"bilirubin"`
	Cholesterol                *float64 `json:"cholesterol"`
	AlbuminGlobulinRatio       *float64 `json:"albuminGlobulinRatio"`
	PlateletsCount             *float64 `json:"plateletsCount"`
	ProthrombinTime            *float64 `json:"prothrombinTime"`
}

// record returns the lab panel and one message per missing field.
func (r labsRequest) record() (scoring.PatientLabRecord, []string) {
	fields := []struct {
		feature scoring.Feature
		value   *float64
	}{
		{scoring.Age, r.Age},
		{scoring.Albumin, r.Albumin},
		{scoring.AlkalinePhosphatase, r.AlkalinePhosphatase},
		{scoring.AlamiNotransaminase, r.AlamiNotransaminase},
		{scoring.AspartateAminotransaminase, r.AspartateAminotransaminase},
		{scoring.Bilirubin, r.Bilirubin},
		{scoring.Cholesterol, r.Cholesterol},
		{scoring.AlbuminGlobulinRatio, r.AlbuminGlobulinRatio},
		{scoring.PlateletsCount, r.PlateletsCount},
		{scoring.ProthrombinTime, r.ProthrombinTime},
	}

	var rec scoring.PatientLabRecord
	missing := []string{}
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.feature.String()+" is required")
			continue
		}
		rec = rec.With(f.feature, *f.value)
	}
	return rec, missing
}

// checkLabs returns the record and every missing-field or range problem.
// Range checks only run once all fields are present.
func (r labsRequest) checkLabs() (scoring.PatientLabRecord, []string) {
	rec, missing := r.record()
	if len(missing) > 0 {
		return rec, missing
	}
	return rec, scoring.Validate(rec).Errors
}

type patientRequest struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	labsRequest
}

type csvRequest struct {
	CSVData string `json:"csvData"`
}

type quickResponse struct {
	scoring.PredictionResult
	Contributions []scoring.Contribution `json:"contributions,omitempty"`
}

type patientPredictionResponse struct {
	PatientID int64 `json:"patientId"`
	scoring.PredictionResult
	Patient store.Patient `json:"patient"`
}

type patientSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Age       float64   `json:"age"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *handlers) predictQuick(c *gin.Context) {
	var req labsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c)
		return
	}

	labs, problems := req.checkLabs()
	if len(problems) > 0 {
		validationFailed(c, problems)
		return
	}

	if explain, _ := strconv.ParseBool(c.Query("explain")); explain {
		result, contributions := scoring.Explain(labs)
		c.JSON(http.StatusOK, quickResponse{PredictionResult: result, Contributions: contributions})
		return
	}

	c.JSON(http.StatusOK, quickResponse{PredictionResult: scoring.Score(labs)})
}

func (h *handlers) predictForPatient(c *gin.Context) {
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))

	details := []string{}
	if req.Name == "" {
		details = append(details, "Name is required")
	}
	if req.Gender != "male" && req.Gender != "female" {
		details = append(details, "Gender must be male or female")
	}
	labs, problems := req.checkLabs()
	details = append(details, problems...)
	if len(details) > 0 {
		validationFailed(c, details)
		return
	}

	ctx := c.Request.Context()
	patient := &store.Patient{
		UserID: defaultUserID,
		Name:   req.Name,
		Gender: req.Gender,
		Labs:   labs,
	}
	if err := h.store.InsertPatient(ctx, patient); err != nil {
		h.internalError(c, "failed to save patient", err)
		return
	}

	result := scoring.Score(labs)
	pred := store.NewPrediction(patient.ID, defaultUserID, result)
	if err := h.store.InsertPrediction(ctx, &pred); err != nil {
		h.internalError(c, "failed to save prediction", err)
		return
	}

	c.JSON(http.StatusOK, patientPredictionResponse{
		PatientID:        patient.ID,
		PredictionResult: result,
		Patient:          *patient,
	})
}

func (h *handlers) predictCSV(c *gin.Context) {
	var req csvRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c)
		return
	}

	res, err := h.batch.Process(c.Request.Context(), strings.NewReader(req.CSVData))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			h.internalError(c, "batch cancelled", err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("batch scored", "total", res.TotalRows, "success", res.SuccessCount, "errors", res.ErrorCount)
	c.JSON(http.StatusOK, res)
}

func (h *handlers) listPatients(c *gin.Context) {
	patients, err := h.store.ListPatients(c.Request.Context(), defaultUserID)
	if err != nil {
		h.internalError(c, "failed to list patients", err)
		return
	}

	out := make([]patientSummary, 0, len(patients))
	for _, p := range patients {
		out = append(out, patientSummary{
			ID:        p.ID,
			Name:      p.Name,
			Age:       p.Labs.Age,
			Gender:    p.Gender,
			CreatedAt: p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) listPatientPredictions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}

	preds, err := h.store.ListPredictionsByPatient(c.Request.Context(), id, defaultUserID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "patient not found"})
		return
	}
	if err != nil {
		h.internalError(c, "failed to list predictions", err)
		return
	}
	c.JSON(http.StatusOK, preds)
}

func (h *handlers) listPredictions(c *gin.Context) {
	preds, err := h.store.ListPredictionsByUser(c.Request.Context(), defaultUserID)
	if err != nil {
		h.internalError(c, "failed to list predictions", err)
		return
	}
	c.JSON(http.StatusOK, preds)
}

func (h *handlers) latestEvaluation(c *gin.Context) {
	ev, err := h.store.LatestEvaluation(c.Request.Context())
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no model evaluation available"})
		return
	}
	if err != nil {
		h.internalError(c, "failed to load evaluation", err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *handlers) dashboard(c *gin.Context) {
	var ev *evaluation.Evaluation
	latest, err := h.store.LatestEvaluation(c.Request.Context())
	switch {
	case err == nil:
		ev = latest
	case !errors.Is(err, store.ErrNotFound):
		h.internalError(c, "failed to load evaluation", err)
		return
	}

	var buf bytes.Buffer
	if err := dashboard.Render(&buf, ev); err != nil {
		h.internalError(c, "failed to render dashboard", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func invalidPayload(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
}

func validationFailed(c *gin.Context, details []string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation_failed",
		"details": details,
	})
}

func (h *handlers) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "error", err, "request_id", c.GetString(requestIDKey))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
