package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alert-bridge/backend/internal/config"
	"github.com/alert-bridge/backend/internal/model"
)

func slxNamed(shortName string, tags ...model.Tag) model.SLX {
	return model.SLX{
		Name:      "ws--" + shortName,
		ShortName: shortName,
		Spec:      model.SLXSpec{Alias: shortName + " alias", Tags: tags},
	}
}

func TestListSLXsNextLinkPaging(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			json.NewEncoder(w).Encode(model.SLXPage{
				Results: []model.SLX{slxNamed("db-health")},
			})
			return
		}
		json.NewEncoder(w).Encode(model.SLXPage{
			Results: []model.SLX{slxNamed("vm-health")},
			Next:    server.URL + "/ws/slxs?page=2",
		})
	}))
	defer server.Close()

	c := NewWorkspaceClient(config.WorkspaceConfig{APIURL: server.URL, Name: "ws"}, nil)
	slxs, err := c.ListSLXs(context.Background())
	if err != nil {
		t.Fatalf("ListSLXs() error = %v", err)
	}
	if len(slxs) != 2 {
		t.Fatalf("slxs = %d, want 2", len(slxs))
	}
	if slxs[0].ShortName != "vm-health" || slxs[1].ShortName != "db-health" {
		t.Fatalf("unexpected order: %v, %v", slxs[0].ShortName, slxs[1].ShortName)
	}
}

func TestListSLXsOffsetPaging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "2" {
			json.NewEncoder(w).Encode(model.SLXPage{
				Results: []model.SLX{slxNamed("slx-3")},
				Page:    &model.PageMeta{Total: 3, Offset: 2},
			})
			return
		}
		json.NewEncoder(w).Encode(model.SLXPage{
			Results: []model.SLX{slxNamed("slx-1"), slxNamed("slx-2")},
			Page:    &model.PageMeta{Total: 3, Offset: 0},
		})
	}))
	defer server.Close()

	c := NewWorkspaceClient(config.WorkspaceConfig{APIURL: server.URL, Name: "ws"}, nil)
	slxs, err := c.ListSLXs(context.Background())
	if err != nil {
		t.Fatalf("ListSLXs() error = %v", err)
	}
	if len(slxs) != 3 {
		t.Fatalf("slxs = %d, want 3", len(slxs))
	}
}

func TestGetSLXsWithTag(t *testing.T) {
	catalog := model.SLXPage{Results: []model.SLX{
		slxNamed("vm-health", model.Tag{Name: "resource_name", Value: "VM-01"}),
		slxNamed("db-health", model.Tag{Name: "resource_name", Value: "db-01"}),
		slxNamed("untagged"),
	}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(catalog)
	}))
	defer server.Close()

	c := NewWorkspaceClient(config.WorkspaceConfig{APIURL: server.URL, Name: "ws"}, nil)

	// 태그 이름/값 모두 대소문자 무시
	matches, err := c.GetSLXsWithTag(context.Background(), []model.Tag{
		{Name: "Resource_Name", Value: "vm-01"},
	})
	if err != nil {
		t.Fatalf("GetSLXsWithTag() error = %v", err)
	}
	if len(matches) != 1 || matches[0].ShortName != "vm-health" {
		t.Fatalf("matches = %v, want [vm-health]", matches)
	}

	// 빈 태그 목록은 API 호출 없이 빈 결과
	matches, err = c.GetSLXsWithTag(context.Background(), nil)
	if err != nil || len(matches) != 0 {
		t.Fatalf("empty tags: matches = %v, err = %v", matches, err)
	}
}

func TestGetSLXsWithEntityReference(t *testing.T) {
	catalog := model.SLXPage{Results: []model.SLX{
		slxNamed("vm-health", model.Tag{Name: "resource_name", Value: "vm-01"}),
		slxNamed("db-health"),
	}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(catalog)
	}))
	defer server.Close()

	c := NewWorkspaceClient(config.WorkspaceConfig{APIURL: server.URL, Name: "ws"}, nil)

	hits, err := c.GetSLXsWithEntityReference(context.Background(), []string{"VM-01"})
	if err != nil {
		t.Fatalf("GetSLXsWithEntityReference() error = %v", err)
	}
	if len(hits) != 1 || hits[0].ShortName != "vm-health" {
		t.Fatalf("hits = %v, want [vm-health]", hits)
	}
}

func TestSearchTasksSendsScopeAndPersona(t *testing.T) {
	var got model.TaskSearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/task-search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(model.TaskSearchResponse{Tasks: []model.Task{{Score: 0.9}}})
	}))
	defer server.Close()

	c := NewWorkspaceClient(config.WorkspaceConfig{APIURL: server.URL, Name: "ws"}, nil)

	resp, err := c.SearchTasks(context.Background(), "vm-01 health", []string{"vm-health"}, "ws--default")
	if err != nil {
		t.Fatalf("SearchTasks() error = %v", err)
	}
	if len(resp.Tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(resp.Tasks))
	}
	if len(got.Query) != 1 || got.Query[0] != "vm-01 health" {
		t.Fatalf("query = %v", got.Query)
	}
	if len(got.Scope) != 1 || got.Scope[0] != "vm-health" {
		t.Fatalf("scope = %v", got.Scope)
	}
	if got.Persona != "ws--default" {
		t.Fatalf("persona = %q", got.Persona)
	}
}

func TestDoJSONErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"nope"}`)
	}))
	defer server.Close()

	c := NewWorkspaceClient(config.WorkspaceConfig{APIURL: server.URL, Name: "ws"}, nil)

	if _, err := c.SearchTasks(context.Background(), "q", nil, ""); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
