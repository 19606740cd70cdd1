// Azure Monitor 알림 정규화 로직 정의
// handler에서 받은 웹훅 본문을 NormalizedAlert로 변환
//
// 처리 흐름:
//  1. schemaId 검증 (azureMonitorCommonAlertSchema가 아니면 에러)
//  2. signalType/monitoringService/alertRule로 알림 유형 분류
//  3. severity 문자열을 1~4 등급으로 매핑
//  4. alertTargetIDs의 리소스 ID들을 subscription/group/name으로 분해
//  5. 유형별 details 투영 + 대응 가이드(next_steps) + 포털 딥링크 구성
//
// 2~5는 순수 함수이며 입력이 같으면 출력도 바이트 단위로 동일

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alert-bridge/backend/internal/model"
)

// ErrUnsupportedSchema - schemaId 누락 또는 불일치
var ErrUnsupportedSchema = errors.New("unsupported or missing schemaId")

const azureCommonSchemaID = "azureMonitorCommonAlertSchema"

// severityLevels - 자유 형식 severity 라벨 → 1(긴급)~4(낮음)
// 모르는 라벨은 4로 떨어지므로 severity 정렬이 깨지지 않음
var severityLevels = map[string]int{
	"sev0": 1, "critical": 1,
	"sev1": 1, "error": 1,
	"sev2": 2, "warning": 2,
	"sev3": 3, "informational": 3,
	"sev4": 4,
}

// nextSteps - 알림 유형별 대응 가이드 (고정 테이블, 런타임 수정 없음)
var nextSteps = map[model.AlertType][]string{
	model.AlertTypeActivityLog: {
		"Open the Activity Log record in the Azure Portal to review who performed the operation.",
		"Verify the caller's role assignments and RBAC permissions.",
		"If the action was unexpected, initiate an access review or revert the change.",
	},
	model.AlertTypeAvailability: {
		"Open Application Insights > Availability and inspect test results around the alert time.",
		"Validate DNS/SSL certificates and firewall rules for the public endpoint.",
		"Deploy to a staging slot and run synthetic tests before live roll-out.",
	},
	model.AlertTypeBudget: {
		"Open Cost Management + Billing > Budgets for this subscription.",
		"Drill into Cost Analysis to identify the biggest spend drivers.",
		"Consider Azure Advisor recommendations for cost optimisation.",
	},
	model.AlertTypeCostBudget: {
		"Review the current burn rate and compare with historic usage.",
		"Evaluate scaling policies or shut down unused resources.",
		"If spend is justified, raise the budget threshold accordingly.",
	},
	model.AlertTypeForecastBudget: {
		"Open Cost Management forecasts and confirm projection accuracy.",
		"Investigate cost spikes in the forecast period.",
		"Enable alerts at lower thresholds for earlier notification.",
	},
	model.AlertTypeLogV1: {
		"Open the Log Analytics query referenced in the alert and inspect the results.",
		"Validate that the query still returns the intended data.",
		"Tune thresholds or filtering to reduce noise if this alert fires frequently.",
	},
	model.AlertTypeLogV2: {
		"Open the Log Analytics workspace > Alerts (v2) > Fired alerts and inspect the run results.",
		"Check 'Opened' and 'Closed' times to see if the condition auto-resolved.",
		"Optimise the KQL query or evaluation frequency if needed.",
	},
	model.AlertTypeMetric: {
		"Open Metrics Explorer for the resource and plot the relevant metric.",
		"Correlate metric spikes with recent deployments or load events.",
		"Consider autoscale rules or adjust SLOs if thresholds are too aggressive.",
	},
	model.AlertTypeResourceHealth: {
		"Open Azure Resource Health for the resource to check current status.",
		"If the summary is platform-initiated, subscribe to Service Health updates.",
		"Plan fail-over or redundancy if this is mission-critical.",
	},
	model.AlertTypeServiceHealth: {
		"Open Azure Service Health and follow the incident/advisory for live updates.",
		"Assess impact on workloads and communicate to stakeholders.",
		"Implement region redundancy or delay deployments until resolved.",
	},
	model.AlertTypeSmart: {
		"Open Application Insights > Smart Detection for full diagnostics.",
		"Review code traces, dependency calls and performance counters.",
		"Deploy a mitigation or code fix, then mark the detection as 'Acknowledged'.",
	},
	model.AlertTypeUnknown: {
		"Investigate the alert payload manually; alert type could not be determined.",
	},
}

// SplitResourceID - 리소스 ID를 (subscription, resourceGroup, name)으로 분해
// /subscriptions/{sub}/resourceGroups/{rg}/.../{name} 형태를 가정
// 세그먼트가 모자라면 전부 nil (호출자가 원문 ID를 갖고 있으므로 에러 없음)
func SplitResourceID(rid string) (subscription, resourceGroup, resourceName *string) {
	parts := strings.Split(strings.Trim(rid, "/"), "/")
	if len(parts) < 4 {
		return nil, nil, nil
	}
	sub := parts[1]
	rg := parts[3]
	name := parts[len(parts)-1]
	return &sub, &rg, &name
}

// MapSeverity - severity 라벨을 1~4 등급으로 매핑 (모르면 4)
func MapSeverity(raw string) int {
	if level, ok := severityLevels[strings.ToLower(raw)]; ok {
		return level
	}
	return 4
}

// DetectAlertType - essentials의 신호/서비스/룰 이름으로 알림 유형 판별
// 카테고리가 겹치기 때문에(예: budget 룰 이름에 cost가 들어감)
// 우선순위가 고정된 결정 트리로 첫 매치에서 종료
func DetectAlertType(es model.AlertEssentials) model.AlertType {
	signal := strings.ToLower(es.SignalType)
	msvc := strings.ToLower(es.MonitoringService)
	rule := strings.ToLower(es.AlertRule)

	switch {
	case strings.Contains(signal, "activity log"):
		return model.AlertTypeActivityLog
	case strings.Contains(signal, "budget"):
		if strings.Contains(rule, "forecast") {
			return model.AlertTypeForecastBudget
		}
		if strings.Contains(rule, "cost") {
			return model.AlertTypeCostBudget
		}
		return model.AlertTypeBudget
	case signal == "log":
		if es.EssentialsVersion == "2.0" {
			return model.AlertTypeLogV2
		}
		return model.AlertTypeLogV1
	case signal == "metric":
		return model.AlertTypeMetric
	case strings.Contains(msvc, "resource health"):
		return model.AlertTypeResourceHealth
	case strings.Contains(msvc, "service health"):
		return model.AlertTypeServiceHealth
	case strings.Contains(msvc, "smart detector") || strings.Contains(rule, "smart"):
		return model.AlertTypeSmart
	case strings.Contains(rule, "availability") || strings.Contains(msvc, "availability"):
		return model.AlertTypeAvailability
	default:
		return model.AlertTypeUnknown
	}
}

// NextSteps - 알림 유형별 대응 가이드 조회 (항상 비어있지 않은 목록 반환)
func NextSteps(alertType model.AlertType) []string {
	if steps, ok := nextSteps[alertType]; ok {
		return steps
	}
	return nextSteps[model.AlertTypeUnknown]
}

// portalURLs - 포털 딥링크 구성 (네트워크 호출 없음, 문자열 포매팅만)
func portalURLs(subscriptionID, alertID *string, targetID string) map[string]string {
	urls := map[string]string{}
	if alertID != nil && *alertID != "" {
		urls["alert_rule"] = "https://portal.azure.com/#resource" + *alertID
	}
	if targetID != "" {
		urls["resource"] = "https://portal.azure.com/#resource" + targetID
	}
	if subscriptionID != nil && *subscriptionID != "" {
		urls["subscription_cost"] = "https://portal.azure.com/#blade/" +
			"Microsoft_Azure_CostManagement/Menu/~/costanalysis" +
			"?subscriptionId=" + *subscriptionID
	}
	return urls
}

// ctxValue - AlertContext의 키를 관용적으로 조회 (없으면 nil)
func ctxValue(ctx model.AlertContext, key string) any {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx[key]; ok {
		return v
	}
	return nil
}

// ctxMap - 중첩 맵 조회 (없거나 맵이 아니면 빈 맵)
func ctxMap(ctx model.AlertContext, key string) map[string]any {
	if m, ok := ctxValue(ctx, key).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// buildDetails - 유형별 details 투영
// 없는 키는 nil로 남기고 절대 에러를 내지 않음
func buildDetails(alertType model.AlertType, es model.AlertEssentials, ctx model.AlertContext) map[string]any {
	switch {
	case alertType == model.AlertTypeMetric || alertType == model.AlertTypeAvailability:
		return ctxMap(ctx, "condition")
	case strings.HasPrefix(string(alertType), "log_"):
		return map[string]any{
			"searchQuery":         ctxValue(ctx, "searchQuery"),
			"resultCount":         ctxValue(ctx, "resultCount"),
			"linkToSearchResults": ctxValue(ctx, "linkToSearchResults"),
		}
	case alertType == model.AlertTypeActivityLog:
		return map[string]any{
			"operationName": ctxValue(ctx, "operationName"),
			"caller":        ctxValue(ctx, "caller"),
			"status":        ctxValue(ctx, "status"),
			"eventSource":   ctxValue(ctx, "eventSource"),
			"message":       ctxMap(ctx, "properties")["message"],
		}
	case alertType == model.AlertTypeBudget || alertType == model.AlertTypeCostBudget || alertType == model.AlertTypeForecastBudget:
		budgetName := ctxValue(ctx, "budgetName")
		if budgetName == nil || budgetName == "" {
			budgetName = es.AlertRule
		}
		return map[string]any{
			"budgetName":   budgetName,
			"threshold":    ctxValue(ctx, "threshold"),
			"budgetAmount": ctxValue(ctx, "budgetAmount"),
			"currentSpend": ctxValue(ctx, "currentSpend"),
			"timeGrain":    ctxValue(ctx, "timeGrain"),
		}
	case alertType == model.AlertTypeServiceHealth:
		return map[string]any{
			"incidentType":     ctxValue(ctx, "incidentType"),
			"trackingId":       ctxValue(ctx, "trackingId"),
			"title":            ctxValue(ctx, "title"),
			"impactedServices": ctxValue(ctx, "services"),
		}
	case alertType == model.AlertTypeSmart:
		return map[string]any{
			"problemId":        ctxValue(ctx, "problemId"),
			"problemStartTime": ctxValue(ctx, "problemStartTime"),
			"problemEndTime":   ctxValue(ctx, "problemEndTime"),
		}
	default:
		// resource_health / unknown: context 전체를 그대로 전달
		if ctx == nil {
			return map[string]any{}
		}
		return ctx
	}
}

// ParseAzureAlert - 웹훅 본문(JSON)을 NormalizedAlert로 변환
// 스키마 검증 실패만 에러이고, 필드 누락은 전부 기본값으로 처리
func ParseAzureAlert(payload []byte) (*model.NormalizedAlert, error) {
	var webhook model.AzureWebhook
	if err := json.Unmarshal(payload, &webhook); err != nil {
		return nil, fmt.Errorf("invalid alert payload: %w", err)
	}
	return NormalizeAzureAlert(&webhook)
}

// NormalizeAzureAlert - 디코딩된 웹훅을 정규화
func NormalizeAzureAlert(webhook *model.AzureWebhook) (*model.NormalizedAlert, error) {
	if webhook.SchemaID != azureCommonSchemaID {
		return nil, ErrUnsupportedSchema
	}

	es := webhook.Data.Essentials
	ctx := webhook.Data.AlertContext

	alertType := DetectAlertType(es)

	resources := make([]model.ResourceRef, 0, len(es.AlertTargetIDs))
	for _, rid := range es.AlertTargetIDs {
		sub, rg, name := SplitResourceID(rid)
		resources = append(resources, model.ResourceRef{
			SubscriptionID: sub,
			ResourceGroup:  rg,
			ResourceName:   name,
			ResourceID:     rid,
		})
	}

	// 레거시 단일 타겟 필드는 첫 번째 리소스만 유지
	var first model.ResourceRef
	if len(resources) > 0 {
		first = resources[0]
	}
	firstTargetID := ""
	if len(es.AlertTargetIDs) > 0 {
		firstTargetID = es.AlertTargetIDs[0]
	}

	title := es.AlertRule
	if title == "" {
		title = es.MonitoringService
	}

	description := es.Description
	if description == "" {
		if d, ok := ctxValue(ctx, "description").(string); ok && d != "" {
			description = d
		}
	}
	if description == "" {
		description = "No description provided."
	}

	var alertID *string
	if es.AlertID != "" {
		alertID = &es.AlertID
	}

	return &model.NormalizedAlert{
		AlertType:   alertType,
		Severity:    MapSeverity(es.Severity),
		Title:       title,
		Description: description,
		Resource: model.ResourceSummary{
			SubscriptionID: first.SubscriptionID,
			ResourceGroup:  first.ResourceGroup,
			ResourceName:   first.ResourceName,
		},
		Resources:        resources,
		MonitorCondition: es.MonitorCondition,
		PortalURLs:       portalURLs(first.SubscriptionID, alertID, firstTargetID),
		NextSteps:        NextSteps(alertType),
		Details:          buildDetails(alertType, es, ctx),
	}, nil
}
