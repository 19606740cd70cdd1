// 웹훅 수신 → 정규화 → 검색 → RunSession 생성 → 알림 전송 오케스트레이션
//
// 처리 흐름 (Azure 기준):
//  1. 페이로드를 정규화 알림으로 변환 (실패 시에만 에러 반환)
//  2. 알림을 DB에 저장 (실패해도 라우팅은 계속)
//  3. KQL 엔티티 추출, 없으면 리소스 이름으로 폴백
//  4. 다단계 스코프 검색 실행 후 시도 기록 저장
//  5. threshold를 넘는 태스크가 있으면 RunSession 생성
//  6. Slack 요약 전송, (설정 시) GitHub 이슈 생성
//
// 외부 연동(Slack/GitHub/PagerDuty)은 모두 best-effort:
// 실패는 로그만 남기고 응답은 성공으로 처리한다

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/alert-bridge/backend/internal/client"
	"github.com/alert-bridge/backend/internal/config"
	"github.com/alert-bridge/backend/internal/db"
	"github.com/alert-bridge/backend/internal/model"
	"github.com/alert-bridge/backend/internal/report"
)

// IngestService 구조체 정의
type IngestService struct {
	repo        *db.Postgres
	search      *SearchService
	workspace   *client.WorkspaceClient
	slack       *client.SlackClient
	pagerduty   *client.PagerDutyClient
	github      *client.GitHubClient
	cfg         config.SearchConfig
	frontendURL string
}

// IngestService 객체 생성
func NewIngestService(
	repo *db.Postgres,
	search *SearchService,
	workspace *client.WorkspaceClient,
	slack *client.SlackClient,
	pagerduty *client.PagerDutyClient,
	github *client.GitHubClient,
	cfg config.SearchConfig,
	frontendURL string,
) *IngestService {
	return &IngestService{
		repo:        repo,
		search:      search,
		workspace:   workspace,
		slack:       slack,
		pagerduty:   pagerduty,
		github:      github,
		cfg:         cfg,
		frontendURL: frontendURL,
	}
}

// ProcessAzureWebhook - Azure Monitor 공통 스키마 웹훅 처리
func (s *IngestService) ProcessAzureWebhook(ctx context.Context, payload []byte) (*model.RoutingResult, error) {
	var webhook model.AzureWebhook
	if err := json.Unmarshal(payload, &webhook); err != nil {
		return nil, fmt.Errorf("failed to parse azure webhook: %w", err)
	}

	alert, err := NormalizeAzureAlert(&webhook)
	if err != nil {
		return nil, err
	}

	alertID := uuid.New().String()
	if err := s.repo.SaveAlert(alertID, "azure", alert); err != nil {
		log.Printf("[ingest] failed to save alert %s: %v", alertID, err)
	}

	entities, _ := ExtractKQLEntities(&webhook)
	if len(entities) == 0 {
		entities = resourceNameEntities(alert.Resources)
	}

	result := s.route(ctx, alertID, "azure", alert, entities)
	return result, nil
}

// ProcessDynatraceWebhook - Dynatrace Problem 웹훅 처리
func (s *IngestService) ProcessDynatraceWebhook(ctx context.Context, payload []byte) (*model.RoutingResult, error) {
	var webhook model.DynatraceWebhook
	if err := json.Unmarshal(payload, &webhook); err != nil {
		return nil, fmt.Errorf("failed to parse dynatrace webhook: %w", err)
	}

	title := webhook.ProblemTitle
	if title == "" {
		title = "Dynatrace Problem"
	}
	alert := &model.NormalizedAlert{
		AlertType:        model.AlertTypeUnknown,
		Severity:         dynatraceSeverity(webhook.State),
		Title:            title,
		Description:      title,
		MonitorCondition: webhook.State,
		NextSteps:        NextSteps(model.AlertTypeUnknown),
		Details:          map[string]any{"problemId": webhook.ProblemID},
	}

	alertID := uuid.New().String()
	if err := s.repo.SaveAlert(alertID, "dynatrace", alert); err != nil {
		log.Printf("[ingest] failed to save alert %s: %v", alertID, err)
	}

	entities := CollectDynatraceEntities(&webhook)
	result := s.route(ctx, alertID, "dynatrace", alert, entities)
	return result, nil
}

// ProcessPagerDutyWebhook - PagerDuty 웹훅 처리
// 엔티티가 없으므로 폴백 검색으로 RunSession을 만들고
// 해당 인시던트에 RunSession 링크 노트를 남긴다
func (s *IngestService) ProcessPagerDutyWebhook(ctx context.Context, payload []byte) (*model.RoutingResult, error) {
	var event client.PagerDutyEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse pagerduty webhook: %w", err)
	}
	if event.Event.Data.ID == "" {
		return nil, fmt.Errorf("pagerduty event has no incident id")
	}

	search := s.search.ScopedTaskSearch(ctx, nil, s.cfg.Persona, s.cfg.ConfidenceThreshold, nil)
	result := &model.RoutingResult{
		Entities:  []string{},
		Strategy:  search.Strategy,
		Query:     search.Query,
		TaskCount: taskCount(search.Response),
	}

	rs := s.createRunSession(ctx, search, "pagerduty incident "+event.Event.Data.ID)
	if rs == nil {
		return result, nil
	}
	result.RunSessionID = rs.Name

	rsURL := RunSessionURL(s.frontendURL, s.workspace.Workspace(), rs.Name)
	if s.pagerduty.IsConfigured() {
		if err := s.pagerduty.AddRunSessionNote(ctx, &event, s.workspace.Workspace(), rsURL); err != nil {
			log.Printf("[ingest] failed to add pagerduty note: %v", err)
		}
	}
	return result, nil
}

// route - 엔티티 검색부터 알림 전송까지 공통 구간
func (s *IngestService) route(ctx context.Context, alertID, source string, alert *model.NormalizedAlert, entities []string) *model.RoutingResult {
	scope := s.entityScope(ctx, entities)
	search := s.search.ScopedTaskSearch(ctx, entities, s.cfg.Persona, s.cfg.ConfidenceThreshold, scope)

	if entities == nil {
		entities = []string{}
	}
	result := &model.RoutingResult{
		AlertID:   alertID,
		AlertType: string(alert.AlertType),
		Entities:  entities,
		Strategy:  search.Strategy,
		Query:     search.Query,
		TaskCount: taskCount(search.Response),
	}

	rs := s.createRunSession(ctx, search, alert.Title)
	if rs != nil {
		result.RunSessionID = rs.Name
	}

	attempt := model.SearchAttempt{
		AlertID:      &alertID,
		Source:       source,
		Strategy:     search.Strategy,
		Query:        search.Query,
		Scope:        search.Scope,
		TaskCount:    result.TaskCount,
		TopScore:     topScore(search.Response),
		RunSessionID: result.RunSessionID,
	}
	if err := s.repo.SaveSearchAttempt(attempt); err != nil {
		log.Printf("[ingest] failed to save search attempt: %v", err)
	}

	rsURL := ""
	if rs != nil {
		rsURL = RunSessionURL(s.frontendURL, s.workspace.Workspace(), rs.Name)
	}

	if s.slack.IsConfigured() {
		if err := s.sendAlertSummary(ctx, alert, search, rsURL); err != nil {
			log.Printf("[ingest] failed to send slack summary: %v", err)
		} else {
			result.SlackSent = true
		}
	}

	if s.github.IsConfigured() && rs != nil {
		issueTitle := fmt.Sprintf("[%s] %s", alert.AlertType, alert.Title)
		if _, err := s.github.CreateIssue(ctx, issueTitle, report.BuildAlertIssueBody(alert, rsURL)); err != nil {
			log.Printf("[ingest] failed to create github issue: %v", err)
		}
	}

	return result
}

// createRunSession - threshold 통과 태스크가 있을 때만 RunSession 생성
func (s *IngestService) createRunSession(ctx context.Context, search ScopedSearchResult, sourceTitle string) *model.RunSession {
	notes, passing := report.BuildTaskReport(search.Response, s.cfg.ConfidenceThreshold)
	if passing == 0 {
		return nil
	}

	rs, err := s.workspace.CreateRunSessionFromSearch(ctx, search.Response, client.RunSessionOptions{
		PersonaShortName: s.cfg.Persona,
		Source:           search.Query,
		ScoreThreshold:   s.cfg.ConfidenceThreshold,
		GeneratePrefix:   s.cfg.RunSessionPrefix,
		Notes:            notes,
	})
	if err != nil {
		log.Printf("[ingest] failed to create runsession for %q: %v", sourceTitle, err)
		return nil
	}
	if rs != nil {
		log.Printf("[ingest] created runsession %s (%d tasks, strategy=%s)", rs.Name, passing, search.Strategy)
	}
	return rs
}

// sendAlertSummary - Slack으로 처리 결과 요약 전송
func (s *IngestService) sendAlertSummary(ctx context.Context, alert *model.NormalizedAlert, search ScopedSearchResult, runSessionURL string) error {
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type":  "plain_text",
				"text":  alert.Title,
				"emoji": true,
			},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				{"type": "mrkdwn", "text": fmt.Sprintf("*Alert Type:*\n%s", alert.AlertType)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Severity:*\n%d", alert.Severity)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Strategy:*\n%s", search.Strategy)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Matched Tasks:*\n%d", taskCount(search.Response))},
			},
		},
		{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": "*Next Steps:*\n- " + strings.Join(alert.NextSteps, "\n- "),
			},
		},
	}
	if runSessionURL != "" {
		blocks = append(blocks, map[string]any{
			"type": "context",
			"elements": []map[string]any{
				{"type": "mrkdwn", "text": fmt.Sprintf("<%s|View the RunSession for more details>", runSessionURL)},
			},
		})
	}

	return s.slack.SendMessage(ctx, client.SlackMessage{
		Text:   alert.Title,
		Blocks: blocks,
	})
}

// SummarizeRunSession - RunSession을 조회해 Slack으로 요약 전송
func (s *IngestService) SummarizeRunSession(ctx context.Context, runSessionID string) (*model.RunSessionSummary, error) {
	rs, err := s.workspace.GetRunSession(ctx, runSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runsession: %w", err)
	}

	openIssues := OpenIssues(rs)
	summary := &model.RunSessionSummary{
		RunSessionID:   runSessionID,
		Source:         RunSessionSource(rs),
		OpenIssues:     len(openIssues),
		Keywords:       ExtractIssueKeywords(rs),
		MostReferenced: MostReferencedResource(rs),
		Report:         report.BuildOpenIssueReport(openIssues),
	}

	if s.slack.IsConfigured() {
		title := fmt.Sprintf("RunSession Summary (%s)", summary.Source)
		rsURL := RunSessionURL(s.frontendURL, s.workspace.Workspace(), runSessionID)
		blocks, attachments := client.BuildRunSessionSummary(
			title, summary.OpenIssues, SummarizeParticipants(rs, "text"), openIssues, rsURL)
		if err := s.slack.SendMessage(ctx, client.SlackMessage{
			Text:        title,
			Blocks:      blocks,
			Attachments: attachments,
		}); err != nil {
			log.Printf("[ingest] failed to send runsession summary: %v", err)
		} else {
			summary.SlackSent = true
		}
	}
	return summary, nil
}

// ExpandRunSession - 쿼리로 다단계 검색을 다시 돌려
// threshold 통과 태스크를 기존 RunSession에 추가
func (s *IngestService) ExpandRunSession(ctx context.Context, runSessionID, query string) (*model.RoutingResult, error) {
	entities := strings.Fields(query)
	scope := s.entityScope(ctx, entities)
	search := s.search.ScopedTaskSearch(ctx, entities, s.cfg.Persona, s.cfg.ConfidenceThreshold, scope)

	result := &model.RoutingResult{
		Entities:     entities,
		Strategy:     search.Strategy,
		Query:        search.Query,
		TaskCount:    taskCount(search.Response),
		RunSessionID: runSessionID,
	}

	patched, err := s.workspace.AddTasksToRunSession(ctx, runSessionID, search.Response, s.cfg.ConfidenceThreshold, search.Query)
	if err != nil {
		return nil, err
	}
	if patched == nil {
		log.Printf("[ingest] no tasks above threshold for runsession %s (query=%q)", runSessionID, query)
	}
	return result, nil
}

// entityScope - 엔티티를 언급하는 SLX들의 shortName (초기 검색 스코프)
func (s *IngestService) entityScope(ctx context.Context, entities []string) []string {
	if len(entities) == 0 {
		return nil
	}
	slxs, err := s.workspace.GetSLXsWithEntityReference(ctx, entities)
	if err != nil {
		log.Printf("[ingest] entity reference lookup failed: %v", err)
		return nil
	}
	var scope []string
	for _, slx := range slxs {
		scope = appendUnique(scope, slx.ShortName)
	}
	return scope
}

// resourceNameEntities - KQL 엔티티가 없을 때 리소스 이름으로 폴백
func resourceNameEntities(resources []model.ResourceRef) []string {
	var entities []string
	for _, res := range resources {
		if res.ResourceName != nil && *res.ResourceName != "" {
			entities = appendUnique(entities, *res.ResourceName)
		}
	}
	return entities
}

// dynatraceSeverity - Problem 상태 → severity 매핑
func dynatraceSeverity(state string) int {
	if strings.EqualFold(state, "OPEN") {
		return 2
	}
	return 4
}

func taskCount(resp *model.TaskSearchResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Tasks)
}

func topScore(resp *model.TaskSearchResponse) float64 {
	if resp == nil {
		return 0
	}
	var top float64
	for _, task := range resp.Tasks {
		if task.Score > top {
			top = task.Score
		}
	}
	return top
}
