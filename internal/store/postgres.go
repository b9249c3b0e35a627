package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/liverscreen/internal/evaluation"
	"github.com/Skufu/liverscreen/internal/scoring"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and verifies it with a short ping.
func Connect(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	cfg.MaxConns = 20
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

const patientColumns = `id, user_id, name, gender, age, albumin, alkaline_phosphatase,
	alami_notransaminase, aspartate_aminotransaminase, bilirubin, cholesterol,
	albumin_globulin_ratio, platelets_count, prothrombin_time, created_at`

func scanPatient(row pgx.Row) (Patient, error) {
	var pt Patient
	l := &pt.Labs
	err := row.Scan(&pt.ID, &pt.UserID, &pt.Name, &pt.Gender, &l.Age, &l.Albumin, &l.AlkalinePhosphatase,
		&l.AlamiNotransaminase, &l.AspartateAminotransaminase, &l.Bilirubin, &l.Cholesterol,
		&l.AlbuminGlobulinRatio, &l.PlateletsCount, &l.ProthrombinTime, &pt.CreatedAt)
	return pt, err
}

func (p *Postgres) InsertPatient(ctx context.Context, pt *Patient) error {
	l := pt.Labs
	err := p.pool.QueryRow(ctx, `
		INSERT INTO patients (user_id, name, gender, age, albumin, alkaline_phosphatase,
			alami_notransaminase, aspartate_aminotransaminase, bilirubin, cholesterol,
			albumin_globulin_ratio, platelets_count, prothrombin_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		pt.UserID, pt.Name, pt.Gender, l.Age, l.Albumin, l.AlkalinePhosphatase,
		l.AlamiNotransaminase, l.AspartateAminotransaminase, l.Bilirubin, l.Cholesterol,
		l.AlbuminGlobulinRatio, l.PlateletsCount, l.ProthrombinTime,
	).Scan(&pt.ID, &pt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (p *Postgres) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	pt, err := scanPatient(p.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &pt, nil
}

func (p *Postgres) ListPatients(ctx context.Context, userID int64) ([]Patient, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+patientColumns+` FROM patients
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	out := []Patient{}
	for rows.Next() {
		pt, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}

func (p *Postgres) InsertPrediction(ctx context.Context, pr *Prediction) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO predictions (patient_id, user_id, prediction, confidence, risk_score, risk_level, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		pr.PatientID, pr.UserID, string(pr.Prediction), pr.Confidence, pr.RiskScore, string(pr.RiskLevel), pr.Notes,
	).Scan(&pr.ID, &pr.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (p *Postgres) ListPredictionsByPatient(ctx context.Context, patientID, userID int64) ([]Prediction, error) {
	pt, err := p.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if pt.UserID != userID {
		return nil, ErrNotFound
	}
	return p.queryPredictions(ctx, `WHERE patient_id = $1 AND user_id = $2`, patientID, userID)
}

func (p *Postgres) ListPredictionsByUser(ctx context.Context, userID int64) ([]Prediction, error) {
	return p.queryPredictions(ctx, `WHERE user_id = $1`, userID)
}

func (p *Postgres) queryPredictions(ctx context.Context, where string, args ...any) ([]Prediction, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, patient_id, user_id, prediction, confidence, risk_score,
		risk_level, COALESCE(notes, ''), created_at FROM predictions `+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	out := []Prediction{}
	for rows.Next() {
		var pr Prediction
		var prediction, level string
		if err := rows.Scan(&pr.ID, &pr.PatientID, &pr.UserID, &prediction, &pr.Confidence, &pr.RiskScore,
			&level, &pr.Notes, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		pr.Prediction = scoring.Prediction(prediction)
		pr.RiskLevel = scoring.RiskLevel(level)
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return out, nil
}

func (p *Postgres) InsertEvaluation(ctx context.Context, e *evaluation.Evaluation) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO model_evaluations (model_type, dataset_name, accuracy, precision, recall, f1_score, roc_auc,
			confusion_matrix, roc_curve, precision_recall_curve, feature_importance, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		e.ModelType, e.DatasetName, e.Accuracy, e.Precision, e.Recall, e.F1Score, e.ROCAUC,
		e.ConfusionMatrix, e.ROCCurve, e.PrecisionRecallCurve, e.FeatureImportance, e.Metadata,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

func (p *Postgres) LatestEvaluation(ctx context.Context) (*evaluation.Evaluation, error) {
	var e evaluation.Evaluation
	err := p.pool.QueryRow(ctx, `
		SELECT id, model_type, dataset_name, accuracy, precision, recall, f1_score, roc_auc,
			confusion_matrix, roc_curve, precision_recall_curve, feature_importance, metadata,
			created_at, updated_at
		FROM model_evaluations
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
	).Scan(&e.ID, &e.ModelType, &e.DatasetName, &e.Accuracy, &e.Precision, &e.Recall, &e.F1Score, &e.ROCAUC,
		&e.ConfusionMatrix, &e.ROCCurve, &e.PrecisionRecallCurve, &e.FeatureImportance, &e.Metadata,
		&e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest evaluation: %w", err)
	}
	return &e, nil
}
