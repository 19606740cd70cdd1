package service

import (
	"context"
	"strings"
	"testing"

	"github.com/alert-bridge/backend/internal/model"
)

// fakeSearcher - 호출 순서대로 미리 정해둔 응답을 돌려주는 TaskSearcher
type fakeSearcher struct {
	responses []*model.TaskSearchResponse
	queries   []string
	scopes    [][]string
}

func (f *fakeSearcher) SearchTasks(_ context.Context, query string, scope []string, _ string) (*model.TaskSearchResponse, error) {
	f.queries = append(f.queries, query)
	f.scopes = append(f.scopes, scope)
	if len(f.responses) == 0 {
		return &model.TaskSearchResponse{Tasks: []model.Task{}}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

// fakeFinder - 태그 매칭 SLX 목록을 고정 반환하는 SLXFinder
type fakeFinder struct {
	slxs []model.SLX
}

func (f *fakeFinder) GetSLXsWithTag(_ context.Context, _ []model.Tag) ([]model.SLX, error) {
	return f.slxs, nil
}

func hit(score float64) *model.TaskSearchResponse {
	return &model.TaskSearchResponse{Tasks: []model.Task{{Score: score, SLXShortName: "slx", TaskName: "task"}}}
}

func miss() *model.TaskSearchResponse {
	return &model.TaskSearchResponse{Tasks: []model.Task{{Score: 0.1}}}
}

func TestScopedTaskSearchFirstStrategyHit(t *testing.T) {
	searcher := &fakeSearcher{responses: []*model.TaskSearchResponse{hit(0.9)}}
	svc := NewSearchService(searcher, &fakeFinder{}, "ws")

	result := svc.ScopedTaskSearch(context.Background(), []string{"vm-01"}, "default", 0.7, nil)

	if result.Strategy != StrategySpecificEntityData {
		t.Fatalf("strategy = %q, want %q", result.Strategy, StrategySpecificEntityData)
	}
	if result.Query != "vm-01" {
		t.Fatalf("query = %q, want vm-01", result.Query)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("expected a single search call, got %d", len(searcher.queries))
	}
}

func TestScopedTaskSearchThirdStrategyHit(t *testing.T) {
	// 1차, 2차는 miss, resource_name 태그 스코프 검색에서 hit
	searcher := &fakeSearcher{responses: []*model.TaskSearchResponse{miss(), miss(), hit(0.8)}}
	finder := &fakeFinder{slxs: []model.SLX{
		{ShortName: "vm-health", Spec: model.SLXSpec{
			Alias: "VM Health Checks",
			Tags:  []model.Tag{{Name: "resource_type", Value: "virtual_machine"}},
		}},
	}}
	svc := NewSearchService(searcher, finder, "ws")

	result := svc.ScopedTaskSearch(context.Background(), []string{"vm-01"}, "default", 0.7, nil)

	if result.Strategy != StrategyResourceNameTags {
		t.Fatalf("strategy = %q, want %q", result.Strategy, StrategyResourceNameTags)
	}
	if len(searcher.queries) != 3 {
		t.Fatalf("expected 3 search calls, got %d", len(searcher.queries))
	}
	// 2차부터는 리소스 타입과 health로 보강된 쿼리
	if !strings.Contains(result.Query, "virtual_machine") || !strings.Contains(result.Query, "health") {
		t.Fatalf("query = %q, want enhanced query", result.Query)
	}
	// 3차는 매칭 SLX shortName이 스코프에 포함
	scope := searcher.scopes[2]
	found := false
	for _, s := range scope {
		if s == "vm-health" {
			found = true
		}
	}
	if !found {
		t.Fatalf("scope = %v, want vm-health included", scope)
	}
}

func TestScopedTaskSearchAllMissFallsBack(t *testing.T) {
	searcher := &fakeSearcher{}
	finder := &fakeFinder{slxs: []model.SLX{
		{ShortName: "vm-health", Spec: model.SLXSpec{Alias: "VM Health Checks"}},
	}}
	svc := NewSearchService(searcher, finder, "ws")

	result := svc.ScopedTaskSearch(context.Background(), []string{"vm-01"}, "default", 0.7, nil)

	if result.Strategy != StrategyFallback {
		t.Fatalf("strategy = %q, want fallback", result.Strategy)
	}
	// 폴백 쿼리는 수집한 별칭 우선
	if result.Query != "VM Health Checks" {
		t.Fatalf("fallback query = %q, want collected alias", result.Query)
	}
	if result.Response == nil {
		t.Fatal("fallback must always return a response")
	}
}

func TestScopedTaskSearchNoEntitiesGoesStraightToFallback(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := NewSearchService(searcher, &fakeFinder{}, "ws")

	result := svc.ScopedTaskSearch(context.Background(), nil, "default", 0.7, nil)

	if result.Strategy != StrategyFallback {
		t.Fatalf("strategy = %q, want fallback", result.Strategy)
	}
	if result.Query != "health" {
		t.Fatalf("query = %q, want health", result.Query)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("expected exactly one (fallback) search call, got %d", len(searcher.queries))
	}
}

func TestScopedTaskSearchImpossibleThreshold(t *testing.T) {
	// threshold > 1은 어떤 결과도 채택 불가 - 항상 폴백
	searcher := &fakeSearcher{responses: []*model.TaskSearchResponse{hit(1.0), hit(1.0), hit(1.0)}}
	svc := NewSearchService(searcher, &fakeFinder{}, "ws")

	result := svc.ScopedTaskSearch(context.Background(), []string{"vm-01"}, "default", 1.5, nil)

	if result.Strategy != StrategyFallback {
		t.Fatalf("strategy = %q, want fallback", result.Strategy)
	}
}

func TestScopedTaskSearchZeroThresholdAcceptsAnything(t *testing.T) {
	searcher := &fakeSearcher{responses: []*model.TaskSearchResponse{miss()}}
	svc := NewSearchService(searcher, &fakeFinder{}, "ws")

	result := svc.ScopedTaskSearch(context.Background(), []string{"vm-01"}, "default", 0, nil)

	if result.Strategy != StrategySpecificEntityData {
		t.Fatalf("strategy = %q, want first strategy with threshold 0", result.Strategy)
	}
}

func TestHasHit(t *testing.T) {
	tests := []struct {
		name      string
		resp      *model.TaskSearchResponse
		threshold float64
		want      bool
	}{
		{"nil-response", nil, 0.5, false},
		{"empty", &model.TaskSearchResponse{}, 0.5, false},
		{"above", hit(0.9), 0.7, true},
		{"equal", hit(0.7), 0.7, true},
		{"below", hit(0.5), 0.7, false},
		{"impossible-threshold", hit(1.0), 1.1, false},
		{"negative-threshold-clamped", hit(0.0), -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasHit(tt.resp, tt.threshold); got != tt.want {
				t.Fatalf("hasHit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQualifyPersona(t *testing.T) {
	svc := NewSearchService(&fakeSearcher{}, &fakeFinder{}, "ws")

	if got := svc.qualifyPersona("default"); got != "ws--default" {
		t.Fatalf("qualifyPersona(default) = %q", got)
	}
	if got := svc.qualifyPersona("ws--default"); got != "ws--default" {
		t.Fatalf("qualifyPersona(ws--default) = %q", got)
	}
	if got := svc.qualifyPersona(""); got != "" {
		t.Fatalf("qualifyPersona(empty) = %q", got)
	}
}
