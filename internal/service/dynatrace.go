// Dynatrace problem 웹훅에서 엔티티 이름 후보를 수집
//
// 수집 위치:
//  1. 최상위 impactedEntities
//  2. problemDetailsJSON(또는 problemDetailsJson)의 impacted/affectedEntities
//  3. rootCauseEntity
//  4. impactAnalysis.impacts[].impactedEntity
//  5. evidenceDetails.details[].groupingEntity / .entity
//  6. entityTags[].stringRepresentation
//
// 이름 정리: " on port NNNN" 접미사 제거, " - " 구분자가 있으면 마지막
// 토큰만 유지. 정리 전후가 다르면 원문도 후보로 같이 남긴다
// (downstream이 정리본을 못 찾을 때의 폴백).

package service

import (
	"encoding/json"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/alert-bridge/backend/internal/model"
)

var portSuffixPattern = regexp.MustCompile(`(?i)\s+on port \d+$`)

// CleanEntityName - Dynatrace 엔티티 이름을 정리
func CleanEntityName(raw string) string {
	name := strings.TrimSpace(portSuffixPattern.ReplaceAllString(raw, ""))
	if idx := strings.LastIndex(name, " - "); idx >= 0 {
		name = strings.TrimSpace(name[idx+len(" - "):])
	}
	return name
}

// ParseDynatraceEntities - 웹훅 본문에서 엔티티 이름 후보를 추출
// 잘못된 JSON이면 빈 목록 (best-effort 파이프라인이므로 에러를 내지 않음)
func ParseDynatraceEntities(payload []byte) []string {
	var webhook model.DynatraceWebhook
	if err := json.Unmarshal(payload, &webhook); err != nil {
		log.Printf("Failed to parse dynatrace payload: %v", err)
		return []string{}
	}
	return CollectDynatraceEntities(&webhook)
}

// CollectDynatraceEntities - 디코딩된 웹훅에서 후보를 수집하고 정렬
// 정렬은 (길이, 사전순) 오름차순: 정식 이름을 구분할 신호가 없어서
// 더 짧은(대개 더 깨끗한) 이름이 앞에 오도록 한다
func CollectDynatraceEntities(webhook *model.DynatraceWebhook) []string {
	candidates := map[string]struct{}{}

	collect := func(raw string) {
		if raw == "" {
			return
		}
		clean := CleanEntityName(raw)
		if clean != "" {
			candidates[clean] = struct{}{}
		}
		if clean != raw {
			candidates[raw] = struct{}{}
		}
	}

	for _, ent := range webhook.ImpactedEntities {
		collect(ent.Name)
	}

	// problemDetailsJSON 우선, 없으면 problemDetailsJson
	details := webhook.ProblemDetails
	if details == nil {
		details = webhook.ProblemDetailsAlt
	}
	if details != nil {
		for _, ent := range details.ImpactedEntities {
			collect(ent.Name)
		}
		for _, ent := range details.AffectedEntities {
			collect(ent.Name)
		}
		if details.RootCauseEntity != nil {
			collect(details.RootCauseEntity.Name)
		}
		if details.ImpactAnalysis != nil {
			for _, imp := range details.ImpactAnalysis.Impacts {
				if imp.ImpactedEntity != nil {
					collect(imp.ImpactedEntity.Name)
				}
			}
		}
		if details.EvidenceDetails != nil {
			for _, ev := range details.EvidenceDetails.Details {
				if ev.GroupingEntity != nil {
					collect(ev.GroupingEntity.Name)
				}
				if ev.Entity != nil {
					collect(ev.Entity.Name)
				}
			}
		}
		for _, tag := range details.EntityTags {
			collect(tag.StringRepresentation)
		}
	}

	ordered := make([]string, 0, len(candidates))
	for name := range candidates {
		ordered = append(ordered, name)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i]) != len(ordered[j]) {
			return len(ordered[i]) < len(ordered[j])
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}
