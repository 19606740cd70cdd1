package report

import (
	"strings"
	"testing"

	"github.com/alert-bridge/backend/internal/model"
)

func TestBuildTaskReport(t *testing.T) {
	search := &model.TaskSearchResponse{Tasks: []model.Task{
		{Score: 0.75, SLXAlias: "VM Health", TaskName: "Check CPU", CodebundleTaskTags: []string{"access:read-only"}},
		{Score: 0.95, SLXAlias: "DB Health", TaskName: "Check Connections"},
		{Score: 0.3, SLXAlias: "Ignored", TaskName: "Below threshold"},
	}}

	markdown, count := BuildTaskReport(search, 0.7)

	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	// 점수 내림차순: DB Health가 VM Health보다 먼저
	dbIdx := strings.Index(markdown, "DB Health")
	vmIdx := strings.Index(markdown, "VM Health")
	if dbIdx < 0 || vmIdx < 0 || dbIdx > vmIdx {
		t.Fatalf("tasks not sorted by score:\n%s", markdown)
	}
	if strings.Contains(markdown, "Below threshold") {
		t.Fatalf("below-threshold task leaked into report:\n%s", markdown)
	}
	if !strings.Contains(markdown, "read-only") {
		t.Fatalf("access tag missing:\n%s", markdown)
	}
}

func TestBuildTaskReportEmpty(t *testing.T) {
	markdown, count := BuildTaskReport(nil, 0.7)
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	if !strings.Contains(markdown, "No tasks found above confidence of 0.7") {
		t.Fatalf("markdown = %q", markdown)
	}
}

func TestBuildOpenIssueReport(t *testing.T) {
	issues := []model.RunIssue{
		{Title: "Minor issue", Severity: 3},
		{Title: "Major outage", Severity: 1, NextSteps: "Failover now", Details: `{"region":"eu"}`},
	}

	report := BuildOpenIssueReport(issues)

	majorIdx := strings.Index(report, "Major outage")
	minorIdx := strings.Index(report, "Minor issue")
	if majorIdx < 0 || minorIdx < 0 || majorIdx > minorIdx {
		t.Fatalf("issues not sorted by severity:\n%s", report)
	}
	if !strings.Contains(report, "Critical") || !strings.Contains(report, "Medium") {
		t.Fatalf("severity labels missing:\n%s", report)
	}
	if !strings.Contains(report, "Failover now") {
		t.Fatalf("next steps missing:\n%s", report)
	}
}

func TestBuildAlertIssueBody(t *testing.T) {
	name := "vm-01"
	alert := &model.NormalizedAlert{
		AlertType:   model.AlertTypeMetric,
		Severity:    2,
		Description: "CPU above 90%",
		Resources: []model.ResourceRef{
			{ResourceName: &name, ResourceID: "/subscriptions/s/resourceGroups/g/providers/p/vm/vm-01"},
		},
		NextSteps:  []string{"Open Metrics Explorer"},
		PortalURLs: map[string]string{"resource": "https://portal.azure.com/#resource/x"},
	}

	body := BuildAlertIssueBody(alert, "https://app.example.com/rs-1")

	for _, expected := range []string{
		"**Alert Type:** metric",
		"CPU above 90%",
		"`/subscriptions/s/resourceGroups/g/providers/p/vm/vm-01`",
		"Open Metrics Explorer",
		"[resource](https://portal.azure.com/#resource/x)",
		"[RunSession](https://app.example.com/rs-1)",
	} {
		if !strings.Contains(body, expected) {
			t.Fatalf("body missing %q:\n%s", expected, body)
		}
	}
}
