// 다단계 검색 스코프 축소 휴리스틱 정의
// 추출된 엔티티로 task-search를 점진적으로 좁혀가며 시도
//
// 시도 순서 (첫 성공에서 종료):
//  1. 엔티티 원문만으로 검색                          → specific_entity_data
//  2. 스코프 태그에서 캐낸 리소스 타입 + "health" 보강  → entity_data_with_resource_type
//  3. resource_name 태그가 일치하는 SLX로 스코프 제한   → resource_name_tags_with_resource_type
//  4. child_resource 태그가 일치하는 SLX로 스코프 제한  → child_resource_tags_with_resource_type
//  5. 무조건 폴백 (수집한 별칭 > 엔티티 원문 > "health") → fallback
//
// "성공" = 반환된 태스크 중 하나라도 score ≥ confidence_threshold.
// 외부 호출 실패는 결과 0건으로 취급하고 다음 단계로 넘어가므로
// 이 함수는 에러를 반환하지 않고 항상 어떤 응답이든 돌려준다.

package service

import (
	"context"
	"log"
	"strings"

	"github.com/alert-bridge/backend/internal/model"
)

// DefaultConfidenceThreshold - 결과를 채택할 최소 점수
const DefaultConfidenceThreshold = 0.7

// 검색 전략 태그
const (
	StrategySpecificEntityData     = "specific_entity_data"
	StrategyEntityDataResourceType = "entity_data_with_resource_type"
	StrategyResourceNameTags       = "resource_name_tags_with_resource_type"
	StrategyChildResourceTags      = "child_resource_tags_with_resource_type"
	StrategyFallback               = "fallback"
)

// TaskSearcher - task-search API 호출 (client 레이어가 구현)
type TaskSearcher interface {
	SearchTasks(ctx context.Context, query string, scope []string, persona string) (*model.TaskSearchResponse, error)
}

// SLXFinder - 태그 매칭으로 SLX 조회 (client 레이어가 구현)
type SLXFinder interface {
	GetSLXsWithTag(ctx context.Context, tags []model.Tag) ([]model.SLX, error)
}

// SearchService - 스코프 축소 휴리스틱 실행기
type SearchService struct {
	searcher  TaskSearcher
	finder    SLXFinder
	workspace string
}

// ScopedSearchResult - 휴리스틱 한 번의 최종 결과
type ScopedSearchResult struct {
	Response *model.TaskSearchResponse
	Strategy string
	Scope    []string
	Query    string
}

// SearchService 객체 생성
func NewSearchService(searcher TaskSearcher, finder SLXFinder, workspace string) *SearchService {
	return &SearchService{searcher: searcher, finder: finder, workspace: workspace}
}

// ScopedTaskSearch - 엔티티 후보로 다단계 검색 수행
// threshold ≤ 0이면 아무 결과나 채택, > 1이면 어떤 단계도 성공할 수 없어
// 항상 폴백으로 내려감. 단계 간 공유 상태는 폴백용 별칭 목록뿐
func (s *SearchService) ScopedTaskSearch(
	ctx context.Context,
	entities []string,
	persona string,
	threshold float64,
	scope []string,
) ScopedSearchResult {
	persona = s.qualifyPersona(persona)
	var collectedAliases []string

	// 1단계: 엔티티 원문만으로 검색
	if len(entities) > 0 {
		query := strings.Join(entities, " ")
		log.Printf("[scoped_search] strategy 1: query=%q", query)
		if resp := s.trySearch(ctx, query, scope, persona); hasHit(resp, threshold) {
			return ScopedSearchResult{resp, StrategySpecificEntityData, scope, query}
		}
	}

	// 2단계: 스코프 태그에서 리소스 타입을 캐내 쿼리 보강
	if len(entities) > 0 {
		types, aliases := s.mineResourceTypes(ctx, entities)
		collectedAliases = aliases

		enhanced := buildEnhancedQuery(entities, types)
		log.Printf("[scoped_search] strategy 2: query=%q", enhanced)
		if resp := s.trySearch(ctx, enhanced, scope, persona); hasHit(resp, threshold) {
			return ScopedSearchResult{resp, StrategyEntityDataResourceType, scope, enhanced}
		}

		// 3단계: resource_name 태그 매칭 SLX로 스코프 제한
		if result, ok := s.tryTagScopedSearch(ctx, "resource_name", entities, enhanced, scope, persona, threshold, &collectedAliases); ok {
			result.Strategy = StrategyResourceNameTags
			return result
		}

		// 4단계: child_resource 태그 매칭 SLX로 스코프 제한
		if result, ok := s.tryTagScopedSearch(ctx, "child_resource", entities, enhanced, scope, persona, threshold, &collectedAliases); ok {
			result.Strategy = StrategyChildResourceTags
			return result
		}
	}

	// 5단계: 무조건 폴백 - 검색 결과가 "없다"고 보고하는 대신 쿼리 구체성만 낮춤
	fallbackQuery := "health"
	if len(collectedAliases) > 0 {
		fallbackQuery = strings.Join(collectedAliases, " ")
	} else if len(entities) > 0 {
		fallbackQuery = strings.Join(entities, " ")
	}
	log.Printf("[scoped_search] fallback: query=%q", fallbackQuery)
	resp := s.trySearch(ctx, fallbackQuery, scope, persona)
	return ScopedSearchResult{resp, StrategyFallback, scope, fallbackQuery}
}

// trySearch - 검색 1회 (실패는 결과 0건으로 취급)
func (s *SearchService) trySearch(ctx context.Context, query string, scope []string, persona string) *model.TaskSearchResponse {
	resp, err := s.searcher.SearchTasks(ctx, query, scope, persona)
	if err != nil {
		log.Printf("[scoped_search] search failed, treating as empty: %v", err)
		return &model.TaskSearchResponse{Tasks: []model.Task{}}
	}
	if resp == nil {
		return &model.TaskSearchResponse{Tasks: []model.Task{}}
	}
	return resp
}

// tryTagScopedSearch - 태그 매칭 SLX들을 스코프에 합쳐 검색
// 매칭 SLX가 없으면 검색 없이 건너뜀. 별칭은 폴백용으로 누적
func (s *SearchService) tryTagScopedSearch(
	ctx context.Context,
	tagName string,
	entities []string,
	query string,
	scope []string,
	persona string,
	threshold float64,
	collectedAliases *[]string,
) (ScopedSearchResult, bool) {
	tags := make([]model.Tag, 0, len(entities))
	for _, entity := range entities {
		tags = append(tags, model.Tag{Name: tagName, Value: entity})
	}

	slxs, err := s.finder.GetSLXsWithTag(ctx, tags)
	if err != nil {
		log.Printf("[scoped_search] SLX lookup failed for tag=%s: %v", tagName, err)
		return ScopedSearchResult{}, false
	}
	if len(slxs) == 0 {
		return ScopedSearchResult{}, false
	}

	combined := scope
	for _, slx := range slxs {
		if slx.Spec.Alias != "" {
			*collectedAliases = appendUnique(*collectedAliases, slx.Spec.Alias)
		}
		combined = appendUnique(combined, slx.ShortName)
	}

	log.Printf("[scoped_search] tag=%s scoped search: %d SLXs, query=%q", tagName, len(slxs), query)
	if resp := s.trySearch(ctx, query, combined, persona); hasHit(resp, threshold) {
		return ScopedSearchResult{Response: resp, Scope: combined, Query: query}, true
	}
	return ScopedSearchResult{}, false
}

// mineResourceTypes - 엔티티와 매칭되는 스코프 레코드에서 리소스 타입 추론
// 우선순위: resource_type 태그 → kind 태그 → 별칭의 첫 의미있는 단어
// 별칭 목록도 같이 반환 (폴백 쿼리 재료)
func (s *SearchService) mineResourceTypes(ctx context.Context, entities []string) (types, aliases []string) {
	tags := make([]model.Tag, 0, len(entities)*3)
	for _, entity := range entities {
		tags = append(tags,
			model.Tag{Name: "resource_name", Value: entity},
			model.Tag{Name: "child_resource", Value: entity},
			model.Tag{Name: "entity_name", Value: entity},
		)
	}

	slxs, err := s.finder.GetSLXsWithTag(ctx, tags)
	if err != nil {
		log.Printf("[scoped_search] resource type mining failed: %v", err)
		return nil, nil
	}

	for _, slx := range slxs {
		if slx.Spec.Alias != "" {
			aliases = appendUnique(aliases, slx.Spec.Alias)
		}
		resourceType := tagValue(slx, "resource_type")
		if resourceType == "" {
			resourceType = tagValue(slx, "kind")
		}
		if resourceType == "" {
			resourceType = firstMeaningfulWord(slx.Spec.Alias)
		}
		if resourceType != "" {
			types = appendUnique(types, resourceType)
		}
	}
	return types, aliases
}

// buildEnhancedQuery - 엔티티 + 리소스 타입 + "health" 결합
func buildEnhancedQuery(entities, types []string) string {
	terms := make([]string, 0, len(entities)+len(types)+1)
	terms = append(terms, entities...)
	for _, t := range types {
		terms = appendUnique(terms, t)
	}
	terms = append(terms, "health")
	return strings.Join(terms, " ")
}

// hasHit - threshold 기준으로 채택 가능한 결과가 있는지 판정
// threshold > 1은 만족 불가능(항상 폴백), ≤ 0은 0으로 클램프
func hasHit(resp *model.TaskSearchResponse, threshold float64) bool {
	if resp == nil || threshold > 1 {
		return false
	}
	if threshold < 0 {
		threshold = 0
	}
	for _, task := range resp.Tasks {
		if task.Score >= threshold {
			return true
		}
	}
	return false
}

// tagValue - SLX spec.tags에서 이름으로 값 조회 (대소문자 무시)
func tagValue(slx model.SLX, name string) string {
	for _, tag := range slx.Spec.Tags {
		if strings.EqualFold(tag.Name, name) {
			return tag.Value
		}
	}
	return ""
}

// firstMeaningfulWord - 별칭에서 불용어가 아닌 길이 3 이상의 첫 단어
func firstMeaningfulWord(alias string) string {
	for _, word := range strings.Fields(alias) {
		lower := strings.ToLower(word)
		if len(word) <= 2 {
			continue
		}
		if _, stop := kqlStopWords[lower]; stop {
			continue
		}
		return word
	}
	return ""
}

// qualifyPersona - 퍼소나 단축명을 workspace--name 형태로 정규화
func (s *SearchService) qualifyPersona(persona string) string {
	if persona == "" || strings.Contains(persona, "--") {
		return persona
	}
	return s.workspace + "--" + persona
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
