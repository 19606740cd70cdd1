package db

import (
	"context"

	"github.com/alert-bridge/backend/internal/model"
)

// EnsureAlertSchema - alerts 테이블 생성
func (db *Postgres) EnsureAlertSchema() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS alerts (
			alert_id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			alert_type TEXT NOT NULL DEFAULT 'unknown',
			severity INT NOT NULL DEFAULT 4,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			monitor_condition TEXT NOT NULL DEFAULT '',
			resources JSONB NOT NULL DEFAULT '[]',
			details JSONB NOT NULL DEFAULT '{}',
			portal_urls JSONB NOT NULL DEFAULT '{}',
			next_steps JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS alerts_source_idx ON alerts(source)`,
		`CREATE INDEX IF NOT EXISTS alerts_alert_type_idx ON alerts(alert_type)`,
		`CREATE INDEX IF NOT EXISTS alerts_created_at_idx ON alerts(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(context.Background(), query); err != nil {
			return err
		}
	}
	return nil
}

// SaveAlert - 정규화된 알림을 alerts 테이블에 저장
func (db *Postgres) SaveAlert(alertID, source string, alert *model.NormalizedAlert) error {
	query := `
		INSERT INTO alerts (
			alert_id, source, alert_type, severity, title, description,
			monitor_condition, resources, details, portal_urls, next_steps,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`

	_, err := db.Pool.Exec(context.Background(), query,
		alertID,
		source,
		string(alert.AlertType),
		alert.Severity,
		alert.Title,
		alert.Description,
		alert.MonitorCondition,
		alert.Resources,
		alert.Details,
		alert.PortalURLs,
		alert.NextSteps,
	)
	return err
}

// GetAlertList - 최근 알림 목록 조회
func (db *Postgres) GetAlertList(limit int) ([]model.StoredAlert, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT alert_id, source, alert_type, severity, title, description,
			monitor_condition, resources, details, portal_urls, next_steps, created_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := db.Pool.Query(context.Background(), query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.StoredAlert
	for rows.Next() {
		var a model.StoredAlert
		if err := rows.Scan(
			&a.ID, &a.Source, &a.AlertType, &a.Severity, &a.Title, &a.Description,
			&a.MonitorCondition, &a.Resources, &a.Details, &a.PortalURLs, &a.NextSteps, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, a)
	}

	if list == nil {
		list = []model.StoredAlert{}
	}
	return list, nil
}

// GetAlertDetail - 알림 상세 조회
func (db *Postgres) GetAlertDetail(alertID string) (*model.StoredAlert, error) {
	query := `
		SELECT alert_id, source, alert_type, severity, title, description,
			monitor_condition, resources, details, portal_urls, next_steps, created_at
		FROM alerts
		WHERE alert_id = $1
	`

	var a model.StoredAlert
	err := db.Pool.QueryRow(context.Background(), query, alertID).Scan(
		&a.ID,
		&a.Source,
		&a.AlertType,
		&a.Severity,
		&a.Title,
		&a.Description,
		&a.MonitorCondition,
		&a.Resources,
		&a.Details,
		&a.PortalURLs,
		&a.NextSteps,
		&a.CreatedAt,
	)

	if err != nil {
		return nil, err
	}
	return &a, nil
}
