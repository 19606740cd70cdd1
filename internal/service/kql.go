// KQL 쿼리 텍스트에서 리소스/엔티티 이름 후보를 추출
//
// log 계열 알림의 alertContext.condition.allOf[0].searchQuery를 대상으로
// 필드명 힌트 + 따옴표 구분자 조합의 규칙 테이블을 라인 단위로 적용한다.
// 추출 결과는 downstream의 task-search 스코프 축소에 쓰인다.

package service

import (
	"strings"

	"github.com/alert-bridge/backend/internal/model"
)

// kqlRule - 한 추출 규칙: 라인 선별 힌트 + 시도할 구분자 순서
// hint가 라인(소문자)에 포함되고 라인에 따옴표가 있으면
// delimiters를 순서대로 시도해 구분자와 다음 따옴표 사이를 취한다
type kqlRule struct {
	hint       string
	delimiters []string
}

// kqlRules - 규칙 테이블 (순서 고정)
// 첫 규칙은 필드명과 무관하게 contains/has 인용 패턴을 잡는다
var kqlRules = []kqlRule{
	{hint: `contains "`, delimiters: []string{`contains "`, `has "`}},
	{hint: "rolename", delimiters: []string{`has "`, `contains "`, `== "`, `startswith "`}},
	{hint: "servicename", delimiters: []string{`== "`, `has "`, `contains "`, `startswith "`}},
	{hint: "containername", delimiters: []string{`startswith "`, `has "`, `contains "`, `== "`}},
	{hint: "podname", delimiters: []string{`startswith "`, `has "`, `contains "`, `== "`}},
	{hint: "deployment", delimiters: []string{`== "`, `has "`, `contains "`, `startswith "`}},
	{hint: "appname", delimiters: []string{`== "`, `has "`, `contains "`, `startswith "`}},
}

// kqlStopWords - 엔티티 이름으로 쓸모없는 흔한 토큰
var kqlStopWords = map[string]struct{}{
	"true": {}, "false": {}, "null": {}, "empty": {},
	"test": {}, "debug": {}, "log": {}, "error": {},
	"info": {}, "warn": {}, "http": {}, "https": {}, "www": {},
}

// ExtractKQLEntities - 웹훅에서 searchQuery를 찾아 엔티티 후보와 쿼리 원문을 반환
// searchQuery가 없거나 형식이 다르면 빈 목록 (에러 없음)
func ExtractKQLEntities(webhook *model.AzureWebhook) (entities []string, queryText string) {
	if webhook == nil {
		return []string{}, ""
	}
	queryText = searchQueryFromContext(webhook.Data.AlertContext)
	if queryText == "" {
		return []string{}, ""
	}
	return ParseKQLQueryEntities(queryText), queryText
}

// searchQueryFromContext - alertContext.condition.allOf[0].searchQuery 조회
func searchQueryFromContext(ctx model.AlertContext) string {
	condition := ctxMap(ctx, "condition")
	allOf, ok := condition["allOf"].([]any)
	if !ok || len(allOf) == 0 {
		return ""
	}
	criterion, ok := allOf[0].(map[string]any)
	if !ok {
		return ""
	}
	query, _ := criterion["searchQuery"].(string)
	return query
}

// ParseKQLQueryEntities - 쿼리 텍스트에 규칙 테이블을 적용해 후보 추출
func ParseKQLQueryEntities(query string) []string {
	var raw []string
	for _, line := range strings.Split(query, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		for _, rule := range kqlRules {
			if !strings.Contains(lower, rule.hint) {
				continue
			}
			if !strings.Contains(line, `"`) {
				continue
			}
			if entity := extractQuoted(line, rule.delimiters); entity != "" {
				raw = append(raw, entity)
			}
		}
	}
	return filterEntities(raw)
}

// extractQuoted - 구분자 뒤부터 다음 따옴표까지를 취함 (첫 매치 사용)
// 구분자 매칭은 대소문자를 무시하고 추출은 원문 표기를 보존
func extractQuoted(line string, delimiters []string) string {
	lower := strings.ToLower(line)
	for _, delim := range delimiters {
		start := strings.Index(lower, delim)
		if start < 0 {
			continue
		}
		rest := line[start+len(delim):]
		end := strings.Index(rest, `"`)
		if end < 0 {
			continue
		}
		return strings.TrimSpace(rest[:end])
	}
	return ""
}

// filterEntities - 공백/짧은 토큰/불용어 제거 후
// 대소문자 무시 중복 제거 (처음 본 표기를 유지)
func filterEntities(entities []string) []string {
	filtered := []string{}
	seen := map[string]struct{}{}

	for _, entity := range entities {
		clean := strings.TrimSpace(entity)
		lower := strings.ToLower(clean)

		if clean == "" || len(clean) < 2 {
			continue
		}
		if _, stop := kqlStopWords[lower]; stop {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		filtered = append(filtered, clean)
		seen[lower] = struct{}{}
	}
	return filtered
}
