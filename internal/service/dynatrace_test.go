package service

import (
	"reflect"
	"testing"

	"github.com/alert-bridge/backend/internal/model"
)

func TestCleanEntityName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"nginx on port 8080", "nginx"},
		{"nginx On Port 8080", "nginx"},
		{"Host xyz - db-server-01 on port 5432", "db-server-01"},
		{"Synthetic test - checkout flow", "checkout flow"},
		{"plain-name", "plain-name"},
		{"  padded  ", "padded"},
		{"on port 9090 service", "on port 9090 service"},
	}

	for _, tt := range tests {
		if got := CleanEntityName(tt.raw); got != tt.want {
			t.Fatalf("CleanEntityName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseDynatraceEntitiesBadJSON(t *testing.T) {
	if got := ParseDynatraceEntities([]byte("not json")); len(got) != 0 {
		t.Fatalf("expected empty list for bad json, got %v", got)
	}
}

func TestCollectDynatraceEntities(t *testing.T) {
	webhook := &model.DynatraceWebhook{
		ImpactedEntities: []model.DynatraceEntity{
			{Name: "Host xyz - db-server-01 on port 5432"},
		},
		ProblemDetails: &model.DynatraceProblemDetails{
			AffectedEntities: []model.DynatraceEntity{{Name: "web-frontend"}},
			RootCauseEntity:  &model.DynatraceEntity{Name: "db-server-01"},
		},
	}

	got := CollectDynatraceEntities(webhook)

	// 정리본과 원문(정리 전후가 다를 때)이 모두 남고 (길이, 사전순) 정렬
	want := []string{
		"db-server-01",
		"web-frontend",
		"Host xyz - db-server-01 on port 5432",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CollectDynatraceEntities() = %v, want %v", got, want)
	}
}

func TestCollectDynatraceEntitiesAltCasing(t *testing.T) {
	webhook := &model.DynatraceWebhook{
		ProblemDetailsAlt: &model.DynatraceProblemDetails{
			ImpactedEntities: []model.DynatraceEntity{{Name: "cart-service"}},
		},
	}

	got := CollectDynatraceEntities(webhook)
	if !reflect.DeepEqual(got, []string{"cart-service"}) {
		t.Fatalf("expected problemDetailsJson fallback to work, got %v", got)
	}
}

func TestCollectDynatraceEntitiesPrefersJSONCasing(t *testing.T) {
	webhook := &model.DynatraceWebhook{
		ProblemDetails: &model.DynatraceProblemDetails{
			ImpactedEntities: []model.DynatraceEntity{{Name: "primary"}},
		},
		ProblemDetailsAlt: &model.DynatraceProblemDetails{
			ImpactedEntities: []model.DynatraceEntity{{Name: "ignored"}},
		},
	}

	got := CollectDynatraceEntities(webhook)
	if !reflect.DeepEqual(got, []string{"primary"}) {
		t.Fatalf("expected problemDetailsJSON to win, got %v", got)
	}
}
