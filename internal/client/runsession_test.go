package client

import (
	"reflect"
	"testing"

	"github.com/alert-bridge/backend/internal/config"
	"github.com/alert-bridge/backend/internal/model"
)

func testClient() *WorkspaceClient {
	return NewWorkspaceClient(config.WorkspaceConfig{
		APIURL: "https://api.example.com",
		Name:   "ws",
	}, nil)
}

func TestBuildRunRequestsGroupsBySLX(t *testing.T) {
	c := testClient()
	search := &model.TaskSearchResponse{Tasks: []model.Task{
		{Score: 0.9, SLXShortName: "vm-health", TaskName: "Check CPU"},
		{Score: 0.8, SLXShortName: "vm-health", TaskName: "Check Memory"},
		{Score: 0.85, SLXShortName: "db-health", TaskName: "Check Connections"},
		{Score: 0.2, SLXShortName: "ignored", TaskName: "Below threshold"},
	}}

	got := c.buildRunRequests(search, 0.7, "cpu-high vm-01")

	// slxName 사전순 정렬 + workspace-- 접두사
	if len(got) != 2 {
		t.Fatalf("runRequests = %d, want 2", len(got))
	}
	if got[0].SLXName != "ws--db-health" || got[1].SLXName != "ws--vm-health" {
		t.Fatalf("slx order = %q, %q", got[0].SLXName, got[1].SLXName)
	}
	if !reflect.DeepEqual(got[1].TaskTitles, []string{"Check CPU", "Check Memory"}) {
		t.Fatalf("taskTitles = %v", got[1].TaskTitles)
	}
	if got[0].FromSearchQuery != "cpu-high vm-01" {
		t.Fatalf("fromSearchQuery = %q", got[0].FromSearchQuery)
	}
}

func TestBuildRunRequestsWorkspaceTaskShape(t *testing.T) {
	c := testClient()
	search := &model.TaskSearchResponse{Tasks: []model.Task{
		{
			Score: 0.9,
			WorkspaceTask: &model.WorkspaceTask{
				SLXShortName:    "vm-health",
				UnresolvedTitle: "Check ${VM_NAME} CPU",
			},
		},
	}}

	got := c.buildRunRequests(search, 0.7, "query")
	if len(got) != 1 {
		t.Fatalf("runRequests = %d, want 1", len(got))
	}
	if got[0].SLXName != "ws--vm-health" {
		t.Fatalf("slxName = %q", got[0].SLXName)
	}
	if !reflect.DeepEqual(got[0].TaskTitles, []string{"Check ${VM_NAME} CPU"}) {
		t.Fatalf("taskTitles = %v", got[0].TaskTitles)
	}
}

func TestBuildRunRequestsEmpty(t *testing.T) {
	c := testClient()

	if got := c.buildRunRequests(nil, 0.7, "q"); got != nil {
		t.Fatalf("buildRunRequests(nil) = %v, want nil", got)
	}
	if got := c.buildRunRequests(&model.TaskSearchResponse{}, 0.7, "q"); len(got) != 0 {
		t.Fatalf("buildRunRequests(empty) = %v, want empty", got)
	}
}

func TestQualifySLXName(t *testing.T) {
	c := testClient()

	if got := c.qualifySLXName("vm-health"); got != "ws--vm-health" {
		t.Fatalf("qualifySLXName(vm-health) = %q", got)
	}
	if got := c.qualifySLXName("ws--vm-health"); got != "ws--vm-health" {
		t.Fatalf("qualifySLXName(ws--vm-health) = %q", got)
	}
}
