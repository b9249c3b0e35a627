// Package store persists patients, predictions and model evaluations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Skufu/liverscreen/internal/evaluation"
	"github.com/Skufu/liverscreen/internal/scoring"
)

var ErrNotFound = errors.New("not found")

type Patient struct {
	ID        int64                    `json:"id"`
	UserID    int64                    `json:"userId"`
	Name      string                   `json:"name"`
	Gender    string                   `json:"gender"`
	Labs      scoring.PatientLabRecord `json:"labs"`
	CreatedAt time.Time                `json:"createdAt"`
}

type Prediction struct {
	ID         int64              `json:"id"`
	PatientID  int64              `json:"patientId"`
	UserID     int64              `json:"userId"`
	Prediction scoring.Prediction `json:"prediction"`
	Confidence float64            `json:"confidence"`
	RiskScore  float64            `json:"riskScore"`
	RiskLevel  scoring.RiskLevel  `json:"riskLevel"`
	Notes      string             `json:"notes"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// NewPrediction prepares a prediction row for a scored patient.
func NewPrediction(patientID, userID int64, result scoring.PredictionResult) Prediction {
	return Prediction{
		PatientID:  patientID,
		UserID:     userID,
		Prediction: result.Prediction,
		Confidence: result.Confidence,
		RiskScore:  result.RiskScore,
		RiskLevel:  result.RiskLevel,
		Notes:      "Risk Level: " + string(result.RiskLevel),
	}
}

// Store is implemented by the Postgres, Memory and Fallback stores. Insert
// methods assign ID and CreatedAt on the passed value; lists are newest first.
type Store interface {
	Ping(ctx context.Context) error
	InsertPatient(ctx context.Context, p *Patient) error
	GetPatient(ctx context.Context, id int64) (*Patient, error)
	ListPatients(ctx context.Context, userID int64) ([]Patient, error)
	InsertPrediction(ctx context.Context, p *Prediction) error
	ListPredictionsByPatient(ctx context.Context, patientID, userID int64) ([]Prediction, error)
	ListPredictionsByUser(ctx context.Context, userID int64) ([]Prediction, error)
	InsertEvaluation(ctx context.Context, e *evaluation.Evaluation) error
	LatestEvaluation(ctx context.Context) (*evaluation.Evaluation, error)
}
