// Slack Incoming Webhook으로 메시지를 전송하는 클라이언트 정의
//
// 환경변수:
//   - SLACK_WEBHOOK_URL: Incoming Webhook URL
//   - SLACK_CHANNEL: (선택) 채널 오버라이드
//
// RunSession 요약 메시지 구성:
//   - 최상위 blocks: 헤더 + 요약 섹션 + RunSession 링크
//   - attachments: 이슈당 하나, severity 색상 사이드바
//     (Slack은 attachment 안에 header 블록을 허용하지 않으므로
//      헤더는 최상위 blocks에만 둔다)

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/alert-bridge/backend/internal/config"
	"github.com/alert-bridge/backend/internal/model"
)

// severityColors - 이슈 severity → attachment 색상
var severityColors = map[int]string{
	1: "#FF0000", // critical
	2: "#FFA500", // major
	3: "#00BFFF", // minor
	4: "#808080", // info
}

// SlackClient 구조체 정의
type SlackClient struct {
	webhookURL string
	channel    string
	httpClient *http.Client
}

// SlackMessage - Incoming Webhook 페이로드
type SlackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text,omitempty"`
	Blocks      []map[string]any  `json:"blocks,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment - 색상 사이드바가 있는 attachment
type SlackAttachment struct {
	Color  string           `json:"color"`
	Blocks []map[string]any `json:"blocks"`
}

// SlackClient 객체 생성
func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	return &SlackClient{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Slack 설정 여부 체크
func (c *SlackClient) IsConfigured() bool {
	return c.webhookURL != ""
}

// SendMessage - 웹훅 URL로 메시지 전송
func (c *SlackClient) SendMessage(ctx context.Context, msg SlackMessage) error {
	if c.webhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}
	if msg.Channel == "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send slack message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// BuildRunSessionSummary - RunSession 요약 메시지 구성
// blocks와 attachments를 조립만 하고 전송은 하지 않음 (테스트 용이)
func BuildRunSessionSummary(title string, openIssueCount int, participants string, openIssues []model.RunIssue, runSessionURL string) ([]map[string]any, []SlackAttachment) {
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type":  "plain_text",
				"text":  title,
				"emoji": true,
			},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				{"type": "mrkdwn", "text": fmt.Sprintf("*Open Issues:*\n%d", openIssueCount)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Participants:*\n%s", participants)},
			},
		},
		{"type": "divider"},
	}

	// severity=1이 맨 위로 오도록 오름차순 정렬
	sorted := make([]model.RunIssue, len(openIssues))
	copy(sorted, openIssues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return issueSeverity(sorted[i]) < issueSeverity(sorted[j])
	})

	attachments := make([]SlackAttachment, 0, len(sorted))
	for idx, issue := range sorted {
		color, ok := severityColors[issueSeverity(issue)]
		if !ok {
			color = "#808080"
		}

		issueTitle := issue.Title
		if issueTitle == "" {
			issueTitle = "Untitled Issue"
		}

		attachments = append(attachments, SlackAttachment{
			Color: color,
			Blocks: []map[string]any{
				{
					"type": "section",
					"text": map[string]any{
						"type": "mrkdwn",
						"text": fmt.Sprintf("%d) *%s*\n%s", idx+1, issueTitle, formatNextSteps(issue.NextSteps)),
					},
				},
			},
		})
	}

	if runSessionURL != "" {
		blocks = append(blocks, map[string]any{
			"type": "context",
			"elements": []map[string]any{
				{
					"type": "mrkdwn",
					"text": fmt.Sprintf("<%s|View the RunSession for more details>", runSessionURL),
				},
			},
		})
	}

	return blocks, attachments
}

func issueSeverity(issue model.RunIssue) int {
	if issue.Severity < 1 || issue.Severity > 4 {
		return 4
	}
	return issue.Severity
}

// formatNextSteps - 여러 줄 next steps를 불릿 목록으로 변환
func formatNextSteps(raw string) string {
	var steps []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			steps = append(steps, trimmed)
		}
	}
	if len(steps) == 0 {
		return "> *Next Steps:*\n  - _No next steps provided._"
	}
	return "> *Next Steps:*\n  - " + strings.Join(steps, "\n  - ")
}
