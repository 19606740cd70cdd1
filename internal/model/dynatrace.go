// Dynatrace problem 웹훅 구조체 정의
//
// 엔티티 이름이 나올 수 있는 위치만 선언하고 나머지는 무시한다.
// problemDetailsJSON 키는 배포 버전에 따라 problemDetailsJson으로
// 오는 경우가 있어 둘 다 받는다.

package model

// DynatraceEntity - name 필드를 가진 엔티티 참조
type DynatraceEntity struct {
	Name string `json:"name"`
}

// DynatraceWebhook - problem 웹훅 최상위
type DynatraceWebhook struct {
	ProblemID          string                   `json:"problemId"`
	ProblemTitle       string                   `json:"problemTitle"`
	State              string                   `json:"state"`
	ImpactedEntities   []DynatraceEntity        `json:"impactedEntities"`
	ProblemDetails     *DynatraceProblemDetails `json:"problemDetailsJSON"`
	ProblemDetailsAlt  *DynatraceProblemDetails `json:"problemDetailsJson"`
}

// DynatraceProblemDetails - 중첩된 문제 상세 블록
type DynatraceProblemDetails struct {
	ImpactedEntities []DynatraceEntity        `json:"impactedEntities"`
	AffectedEntities []DynatraceEntity        `json:"affectedEntities"`
	RootCauseEntity  *DynatraceEntity         `json:"rootCauseEntity"`
	ImpactAnalysis   *DynatraceImpactAnalysis `json:"impactAnalysis"`
	EvidenceDetails  *DynatraceEvidence       `json:"evidenceDetails"`
	EntityTags       []DynatraceEntityTag     `json:"entityTags"`
}

// DynatraceImpactAnalysis - 영향 분석 블록
type DynatraceImpactAnalysis struct {
	Impacts []DynatraceImpact `json:"impacts"`
}

// DynatraceImpact - 영향 항목 하나
type DynatraceImpact struct {
	ImpactedEntity *DynatraceEntity `json:"impactedEntity"`
}

// DynatraceEvidence - 증거 상세 블록
type DynatraceEvidence struct {
	Details []DynatraceEvidenceDetail `json:"details"`
}

// DynatraceEvidenceDetail - 증거 항목 하나 (groupingEntity는 null 가능)
type DynatraceEvidenceDetail struct {
	GroupingEntity *DynatraceEntity `json:"groupingEntity"`
	Entity         *DynatraceEntity `json:"entity"`
}

// DynatraceEntityTag - 엔티티 태그
type DynatraceEntityTag struct {
	StringRepresentation string `json:"stringRepresentation"`
}
