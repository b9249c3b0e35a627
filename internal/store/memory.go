package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Skufu/liverscreen/internal/evaluation"
)

// Memory keeps everything in process memory. IDs are assigned per instance.
type Memory struct {
	mu          sync.RWMutex
	now         func() time.Time
	patients    []Patient
	predictions []Prediction
	evaluations []evaluation.Evaluation
	nextPatient int64
	nextPred    int64
	nextEval    int64
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) InsertPatient(ctx context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPatient++
	p.ID = m.nextPatient
	p.CreatedAt = m.now().UTC()
	m.patients = append(m.patients, *p)
	return nil
}

func (m *Memory) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.patients {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListPatients(ctx context.Context, userID int64) ([]Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Patient{}
	for _, p := range m.patients {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) InsertPrediction(ctx context.Context, p *Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPred++
	p.ID = m.nextPred
	p.CreatedAt = m.now().UTC()
	m.predictions = append(m.predictions, *p)
	return nil
}

func (m *Memory) ListPredictionsByPatient(ctx context.Context, patientID, userID int64) ([]Prediction, error) {
	patient, err := m.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.UserID != userID {
		return nil, ErrNotFound
	}

	return m.filterPredictions(func(p Prediction) bool {
		return p.PatientID == patientID && p.UserID == userID
	}), nil
}

func (m *Memory) ListPredictionsByUser(ctx context.Context, userID int64) ([]Prediction, error) {
	return m.filterPredictions(func(p Prediction) bool {
		return p.UserID == userID
	}), nil
}

func (m *Memory) filterPredictions(keep func(Prediction) bool) []Prediction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Prediction{}
	for _, p := range m.predictions {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *Memory) InsertEvaluation(ctx context.Context, e *evaluation.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextEval++
	now := m.now().UTC()
	e.ID = m.nextEval
	e.CreatedAt = now
	e.UpdatedAt = now
	m.evaluations = append(m.evaluations, *e)
	return nil
}

func (m *Memory) LatestEvaluation(ctx context.Context) (*evaluation.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.evaluations) == 0 {
		return nil, ErrNotFound
	}
	latest := m.evaluations[len(m.evaluations)-1]
	return &latest, nil
}
