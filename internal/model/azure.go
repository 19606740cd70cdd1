// Azure Monitor common alert schema 페이로드 및 정규화 결과 구조체 정의
// handler, service, db 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

// AlertType - 분류기가 판별하는 알림 유형 태그
type AlertType string

const (
	AlertTypeActivityLog    AlertType = "activity_log"
	AlertTypeAvailability   AlertType = "availability"
	AlertTypeBudget         AlertType = "budget"
	AlertTypeCostBudget     AlertType = "cost_budget"
	AlertTypeForecastBudget AlertType = "forecast_budget"
	AlertTypeLogV1          AlertType = "log_v1"
	AlertTypeLogV2          AlertType = "log_v2"
	AlertTypeMetric         AlertType = "metric"
	AlertTypeResourceHealth AlertType = "resource_health"
	AlertTypeServiceHealth  AlertType = "service_health"
	AlertTypeSmart          AlertType = "smart"
	AlertTypeUnknown        AlertType = "unknown"
)

// AzureWebhook - Azure Monitor 공통 알림 스키마 envelope
// schemaId가 "azureMonitorCommonAlertSchema"가 아니면 파싱을 거부
type AzureWebhook struct {
	SchemaID string         `json:"schemaId"`
	Data     AzureAlertData `json:"data"`
}

// AzureAlertData - essentials(공통 메타데이터) + alertContext(유형별 본문)
type AzureAlertData struct {
	Essentials   AlertEssentials `json:"essentials"`
	AlertContext AlertContext    `json:"alertContext"`
}

// AlertEssentials - 모든 알림 유형에 공통으로 존재하는 메타데이터 블록
type AlertEssentials struct {
	AlertID           string   `json:"alertId"`
	AlertRule         string   `json:"alertRule"`
	Severity          string   `json:"severity"`
	SignalType        string   `json:"signalType"`
	MonitoringService string   `json:"monitoringService"`
	MonitorCondition  string   `json:"monitorCondition"`
	Description       string   `json:"description"`
	EssentialsVersion string   `json:"essentialsVersion"`
	AlertTargetIDs    []string `json:"alertTargetIDs"`
}

// AlertContext - 알림 유형별 자유 형식 본문
// 유형마다 키 구성이 다르므로 스키마 없는 맵으로 유지하고
// service 레이어에서 관용적으로(get-or-nil) 접근
type AlertContext map[string]any

// ResourceRef - 리소스 ID 하나를 분해한 결과
// 분해에 실패하면 파생 필드는 전부 nil이고 ResourceID에 원문만 남음
type ResourceRef struct {
	SubscriptionID *string `json:"subscription_id"`
	ResourceGroup  *string `json:"resource_group"`
	ResourceName   *string `json:"resource_name"`
	ResourceID     string  `json:"resource_id"`
}

// ResourceSummary - 첫 번째 타겟 리소스만 담는 레거시 필드
type ResourceSummary struct {
	SubscriptionID *string `json:"subscription_id"`
	ResourceGroup  *string `json:"resource_group"`
	ResourceName   *string `json:"resource_name"`
}

// NormalizedAlert - 파서의 최종 출력
// AlertType은 항상 설정됨(기본 unknown), NextSteps는 비어있지 않음
type NormalizedAlert struct {
	AlertType        AlertType         `json:"alert_type"`
	Severity         int               `json:"severity"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Resource         ResourceSummary   `json:"resource"`
	Resources        []ResourceRef     `json:"resources"`
	MonitorCondition string            `json:"monitor_condition"`
	PortalURLs       map[string]string `json:"portal_urls"`
	NextSteps        []string          `json:"next_steps"`
	Details          map[string]any    `json:"details"`
}
