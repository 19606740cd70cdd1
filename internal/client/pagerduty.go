// PagerDuty API와 통신하는 클라이언트 정의
//
// 환경변수:
//   - PAGERDUTY_API_TOKEN: REST API 토큰
//
// 인시던트 노트 추가에는 From 헤더(요청자 이메일)가 필요해서
// 웹훅 event.agent.id로 사용자 이메일을 먼저 조회한다

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alert-bridge/backend/internal/config"
)

const pagerDutyAPIBase = "https://api.pagerduty.com"

// PagerDutyClient 구조체 정의
type PagerDutyClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// PagerDutyEvent - 웹훅 페이로드에서 필요한 부분만 디코딩
type PagerDutyEvent struct {
	Event struct {
		Agent struct {
			ID string `json:"id"`
		} `json:"agent"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	} `json:"event"`
}

// PagerDutyClient 객체 생성
func NewPagerDutyClient(cfg config.PagerDutyConfig) *PagerDutyClient {
	baseURL := cfg.APIBase
	if baseURL == "" {
		baseURL = pagerDutyAPIBase
	}
	return &PagerDutyClient{
		token:   cfg.APIToken,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PagerDuty 설정 여부 체크
func (c *PagerDutyClient) IsConfigured() bool {
	return c.token != ""
}

// GetUserEmail - 사용자 ID로 이메일 조회
func (c *PagerDutyClient) GetUserEmail(ctx context.Context, userID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+userID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token token="+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch pagerduty user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pagerduty returned status %d", resp.StatusCode)
	}

	var payload struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse pagerduty response: %w", err)
	}
	return payload.User.Email, nil
}

// AddRunSessionNote - 인시던트에 RunSession 링크 노트 추가
func (c *PagerDutyClient) AddRunSessionNote(ctx context.Context, event *PagerDutyEvent, workspace, runSessionURL string) error {
	incidentID := event.Event.Data.ID
	if incidentID == "" {
		return fmt.Errorf("pagerduty event has no incident id")
	}

	email, err := c.GetUserEmail(ctx, event.Event.Agent.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve note author: %w", err)
	}

	note := map[string]any{
		"note": map[string]any{
			"content": fmt.Sprintf("RunSession started in workspace %s.\n[RunSession URL - %s]", workspace, runSessionURL),
		},
	}
	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("failed to marshal note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/incidents/"+incidentID+"/notes", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token token="+c.token)
	req.Header.Set("From", email)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.pagerduty+json;version=2")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post incident note: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pagerduty returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
