package store

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Skufu/liverscreen/internal/evaluation"
)

// Fallback sends every call to the primary store and, when it fails, logs a
// warning and serves the call from the secondary store instead. Patients
// that landed in the secondary store keep their predictions and lookups
// there, since their IDs mean nothing to the primary.
type Fallback struct {
	primary   Store
	secondary Store
	logger    *log.Logger

	mu        sync.RWMutex
	secondIDs map[int64]struct{}
}

func NewFallback(primary, secondary Store, logger *log.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		secondIDs: map[int64]struct{}{},
	}
}

func (f *Fallback) inSecondary(patientID int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.secondIDs[patientID]
	return ok
}

// Ping reports the health of the primary store only.
func (f *Fallback) Ping(ctx context.Context) error {
	return f.primary.Ping(ctx)
}

func (f *Fallback) warn(op string, err error) {
	if errors.Is(err, ErrNotFound) {
		f.logger.Debug("not found in primary store, checking fallback", "op", op)
		return
	}
	f.logger.Warn("primary store failed, using fallback", "op", op, "error", err)
}

func (f *Fallback) InsertPatient(ctx context.Context, p *Patient) error {
	if err := f.primary.InsertPatient(ctx, p); err != nil {
		f.warn("insert_patient", err)
		if err := f.secondary.InsertPatient(ctx, p); err != nil {
			return err
		}
		f.mu.Lock()
		f.secondIDs[p.ID] = struct{}{}
		f.mu.Unlock()
	}
	return nil
}

func (f *Fallback) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	if f.inSecondary(id) {
		return f.secondary.GetPatient(ctx, id)
	}
	p, err := f.primary.GetPatient(ctx, id)
	if err != nil {
		f.warn("get_patient", err)
		return f.secondary.GetPatient(ctx, id)
	}
	return p, nil
}

func (f *Fallback) ListPatients(ctx context.Context, userID int64) ([]Patient, error) {
	out, err := f.primary.ListPatients(ctx, userID)
	if err != nil {
		f.warn("list_patients", err)
		return f.secondary.ListPatients(ctx, userID)
	}
	return out, nil
}

func (f *Fallback) InsertPrediction(ctx context.Context, p *Prediction) error {
	if f.inSecondary(p.PatientID) {
		return f.secondary.InsertPrediction(ctx, p)
	}
	if err := f.primary.InsertPrediction(ctx, p); err != nil {
		f.warn("insert_prediction", err)
		return f.secondary.InsertPrediction(ctx, p)
	}
	return nil
}

func (f *Fallback) ListPredictionsByPatient(ctx context.Context, patientID, userID int64) ([]Prediction, error) {
	if f.inSecondary(patientID) {
		return f.secondary.ListPredictionsByPatient(ctx, patientID, userID)
	}
	out, err := f.primary.ListPredictionsByPatient(ctx, patientID, userID)
	if err != nil {
		f.warn("list_patient_predictions", err)
		return f.secondary.ListPredictionsByPatient(ctx, patientID, userID)
	}
	return out, nil
}

func (f *Fallback) ListPredictionsByUser(ctx context.Context, userID int64) ([]Prediction, error) {
	out, err := f.primary.ListPredictionsByUser(ctx, userID)
	if err != nil {
		f.warn("list_user_predictions", err)
		return f.secondary.ListPredictionsByUser(ctx, userID)
	}
	return out, nil
}

func (f *Fallback) InsertEvaluation(ctx context.Context, e *evaluation.Evaluation) error {
	if err := f.primary.InsertEvaluation(ctx, e); err != nil {
		f.warn("insert_evaluation", err)
		return f.secondary.InsertEvaluation(ctx, e)
	}
	return nil
}

func (f *Fallback) LatestEvaluation(ctx context.Context) (*evaluation.Evaluation, error) {
	e, err := f.primary.LatestEvaluation(ctx)
	if err != nil {
		f.warn("latest_evaluation", err)
		return f.secondary.LatestEvaluation(ctx)
	}
	return e, nil
}
