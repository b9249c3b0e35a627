package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/liverscreen/internal/evaluation"
	"github.com/Skufu/liverscreen/internal/scoring"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Second)
		return at
	}
}

func samplePatient(userID int64, name string) *Patient {
	return &Patient{
		UserID: userID,
		Name:   name,
		Gender: "female",
		Labs: scoring.PatientLabRecord{
			Age: 45, Albumin: 3.5, AlkalinePhosphatase: 120, AlamiNotransaminase: 35,
			AspartateAminotransaminase: 40, Bilirubin: 1.2, Cholesterol: 200,
			AlbuminGlobulinRatio: 1.2, PlateletsCount: 250, ProthrombinTime: 12,
		},
	}
}

func TestMemoryAssignsIDsAndTimestamps(t *testing.T) {
	m := NewMemory()
	m.now = fixedClock()
	ctx := context.Background()

	first := samplePatient(1, "Ana")
	second := samplePatient(1, "Ben")
	require.NoError(t, m.InsertPatient(ctx, first))
	require.NoError(t, m.InsertPatient(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	got, err := m.GetPatient(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Ben", got.Name)
	assert.Equal(t, 3.5, got.Labs.Albumin)
}

func TestMemoryIDsArePerInstance(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemory(), NewMemory()

	pa, pb := samplePatient(1, "A"), samplePatient(1, "B")
	require.NoError(t, a.InsertPatient(ctx, pa))
	require.NoError(t, b.InsertPatient(ctx, pb))

	assert.Equal(t, pa.ID, pb.ID)
}

func TestMemoryGetPatientNotFound(t *testing.T) {
	_, err := NewMemory().GetPatient(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListsNewestFirstPerUser(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.InsertPatient(ctx, samplePatient(1, "first")))
	require.NoError(t, m.InsertPatient(ctx, samplePatient(2, "other user")))
	require.NoError(t, m.InsertPatient(ctx, samplePatient(1, "second")))

	patients, err := m.ListPatients(ctx, 1)
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "second", patients[0].Name)
	assert.Equal(t, "first", patients[1].Name)

	empty, err := m.ListPatients(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryPredictionsByPatient(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	p := samplePatient(1, "Ana")
	require.NoError(t, m.InsertPatient(ctx, p))

	result := scoring.Decide(0.62)
	for i := 0; i < 2; i++ {
		pred := NewPrediction(p.ID, 1, result)
		require.NoError(t, m.InsertPrediction(ctx, &pred))
	}

	preds, err := m.ListPredictionsByPatient(ctx, p.ID, 1)
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, int64(2), preds[0].ID)
	assert.Equal(t, scoring.Positive, preds[0].Prediction)
	assert.Equal(t, scoring.RiskMedium, preds[0].RiskLevel)
	assert.Equal(t, "Risk Level: medium", preds[0].Notes)

	all, err := m.ListPredictionsByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryPredictionsForeignPatientIsNotFound(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	p := samplePatient(7, "someone else")
	require.NoError(t, m.InsertPatient(ctx, p))

	_, err := m.ListPredictionsByPatient(ctx, p.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.ListPredictionsByPatient(ctx, 404, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryLatestEvaluation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.LatestEvaluation(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.InsertEvaluation(ctx, &evaluation.Evaluation{ModelType: "first", Accuracy: 0.8}))
	require.NoError(t, m.InsertEvaluation(ctx, &evaluation.Evaluation{ModelType: "second", Accuracy: 0.9}))

	latest, err := m.LatestEvaluation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", latest.ModelType)
	assert.Equal(t, int64(2), latest.ID)
	assert.False(t, latest.CreatedAt.IsZero())
}
