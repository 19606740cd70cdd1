package db

import (
	"context"

	"github.com/alert-bridge/backend/internal/model"
)

// EnsureSearchSchema - search_attempts 테이블 생성
func (db *Postgres) EnsureSearchSchema() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS search_attempts (
			id BIGSERIAL PRIMARY KEY,
			alert_id UUID REFERENCES alerts(alert_id) ON DELETE SET NULL,
			source TEXT NOT NULL,
			strategy TEXT NOT NULL,
			query TEXT NOT NULL DEFAULT '',
			scope JSONB NOT NULL DEFAULT '[]',
			task_count INT NOT NULL DEFAULT 0,
			top_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			runsession_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS search_attempts_alert_id_idx ON search_attempts(alert_id) WHERE alert_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS search_attempts_strategy_idx ON search_attempts(strategy)`,
		`CREATE INDEX IF NOT EXISTS search_attempts_created_at_idx ON search_attempts(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(context.Background(), query); err != nil {
			return err
		}
	}
	return nil
}

// SaveSearchAttempt - 검색 시도 기록 저장
func (db *Postgres) SaveSearchAttempt(attempt model.SearchAttempt) error {
	query := `
		INSERT INTO search_attempts (
			alert_id, source, strategy, query, scope, task_count,
			top_score, runsession_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	scope := attempt.Scope
	if scope == nil {
		scope = []string{}
	}

	_, err := db.Pool.Exec(context.Background(), query,
		attempt.AlertID,
		attempt.Source,
		attempt.Strategy,
		attempt.Query,
		scope,
		attempt.TaskCount,
		attempt.TopScore,
		attempt.RunSessionID,
	)
	return err
}

// GetSearchAttemptsByAlertID - 특정 알림의 검색 시도 기록 조회
func (db *Postgres) GetSearchAttemptsByAlertID(alertID string) ([]model.SearchAttempt, error) {
	query := `
		SELECT id, alert_id, source, strategy, query, scope, task_count,
			top_score, runsession_id, created_at
		FROM search_attempts
		WHERE alert_id = $1
		ORDER BY created_at DESC`

	rows, err := db.Pool.Query(context.Background(), query, alertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.SearchAttempt
	for rows.Next() {
		var a model.SearchAttempt
		if err := rows.Scan(
			&a.ID, &a.AlertID, &a.Source, &a.Strategy, &a.Query, &a.Scope,
			&a.TaskCount, &a.TopScore, &a.RunSessionID, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, a)
	}

	if list == nil {
		list = []model.SearchAttempt{}
	}
	return list, nil
}
