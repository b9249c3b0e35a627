package store

import (
	"context"
	"fmt"

	"github.com/Skufu/liverscreen/internal/batch"
)

// Recorder stores each scored batch row as a patient with one prediction.
type Recorder struct {
	store  Store
	userID int64
}

func NewRecorder(s Store, userID int64) *Recorder {
	return &Recorder{store: s, userID: userID}
}

func (r *Recorder) Record(ctx context.Context, entry batch.Entry) (int64, error) {
	patient := &Patient{
		UserID: r.userID,
		Name:   entry.Name,
		Gender: entry.Gender,
		Labs:   entry.Labs,
	}
	if err := r.store.InsertPatient(ctx, patient); err != nil {
		return 0, fmt.Errorf("record row %d: %w", entry.Row, err)
	}

	pred := NewPrediction(patient.ID, r.userID, entry.Result)
	if err := r.store.InsertPrediction(ctx, &pred); err != nil {
		return patient.ID, fmt.Errorf("record row %d prediction: %w", entry.Row, err)
	}
	return patient.ID, nil
}
