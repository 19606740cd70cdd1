// 수신한 웹훅 처리 결과를 DB에 남기기 위한 구조체 정의

package model

import "time"

// SearchAttempt - 검색 휴리스틱 한 라운드의 기록
// 한 번의 웹훅 처리 안에서 생성되고 결과만 DB에 남김
type SearchAttempt struct {
	ID           int64     `json:"id"`
	AlertID      *string   `json:"alert_id"`
	Source       string    `json:"source"`
	Strategy     string    `json:"strategy"`
	Query        string    `json:"query"`
	Scope        []string  `json:"scope"`
	TaskCount    int       `json:"task_count"`
	TopScore     float64   `json:"top_score"`
	RunSessionID string    `json:"runsession_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredAlert - DB에 저장된 정규화 알림 (목록/상세 조회용)
type StoredAlert struct {
	ID               string            `json:"id"`
	Source           string            `json:"source"`
	AlertType        AlertType         `json:"alert_type"`
	Severity         int               `json:"severity"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	MonitorCondition string            `json:"monitor_condition"`
	Resources        []ResourceRef     `json:"resources"`
	Details          map[string]any    `json:"details"`
	PortalURLs       map[string]string `json:"portal_urls"`
	NextSteps        []string          `json:"next_steps"`
	CreatedAt        time.Time         `json:"created_at"`
}

// RoutingResult - 웹훅 처리 한 건의 요약 (응답으로 반환)
type RoutingResult struct {
	AlertID      string   `json:"alertId,omitempty"`
	AlertType    string   `json:"alertType,omitempty"`
	Entities     []string `json:"entities"`
	Strategy     string   `json:"strategy"`
	Query        string   `json:"query"`
	TaskCount    int      `json:"taskCount"`
	RunSessionID string   `json:"runSessionId,omitempty"`
	SlackSent    bool     `json:"slackSent"`
}
