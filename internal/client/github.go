// GitHub 이슈 생성 클라이언트 정의
//
// 환경변수:
//   - GITHUB_TOKEN: API 토큰
//   - GITHUB_REPO: owner/repo 형식
//   - GITHUB_SERVER: (선택) GitHub Enterprise API 루트

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

const githubAPIBase = "https://api.github.com"

// GitHubClient 구조체 정의
type GitHubClient struct {
	token      string
	repo       string
	baseURL    string
	httpClient *http.Client
}

// GitHubIssue - 생성된 이슈 응답 (필요한 필드만)
type GitHubIssue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// GitHubClient 객체 생성
func NewGitHubClient(cfg config.GitHubConfig) *GitHubClient {
	baseURL := cfg.Server
	if baseURL == "" {
		baseURL = githubAPIBase
	}
	return &GitHubClient{
		token:   cfg.Token,
		repo:    cfg.Repo,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GitHub 설정 여부 체크
func (c *GitHubClient) IsConfigured() bool {
	return c.token != "" && c.repo != ""
}

// CreateIssue - 이슈 생성
func (c *GitHubClient) CreateIssue(ctx context.Context, title, body string) (*GitHubIssue, error) {
	payload, err := json.Marshal(map[string]string{
		"title": title,
		"body":  body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issue: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/issues", c.baseURL, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create github issue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var issue GitHubIssue
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return nil, fmt.Errorf("failed to parse github response: %w", err)
	}
	return &issue, nil
}
