package client

import (
	"strings"
	"testing"

	"github.com/alert-bridge/backend/internal/model"
)

func TestBuildRunSessionSummary(t *testing.T) {
	issues := []model.RunIssue{
		{Title: "Low disk space", Severity: 3, NextSteps: "Expand the volume"},
		{Title: "Database down", Severity: 1, NextSteps: "Check failover\nPage the DBA"},
		{Title: "High latency", Severity: 2},
	}

	blocks, attachments := BuildRunSessionSummary("Incident Summary", 3, "alice", issues, "https://app.example.com/rs-1")

	if len(attachments) != 3 {
		t.Fatalf("attachments = %d, want 3", len(attachments))
	}

	// severity 오름차순: critical 이슈가 첫 attachment
	first, ok := attachments[0].Blocks[0]["text"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected attachment block shape: %v", attachments[0].Blocks[0])
	}
	firstText := first["text"].(string)
	if !strings.Contains(firstText, "Database down") {
		t.Fatalf("first attachment should be the critical issue, got %q", firstText)
	}
	if !strings.Contains(firstText, "- Check failover") || !strings.Contains(firstText, "- Page the DBA") {
		t.Fatalf("next steps not bulleted: %q", firstText)
	}
	if attachments[0].Color != "#FF0000" {
		t.Fatalf("critical color = %q, want #FF0000", attachments[0].Color)
	}

	// next steps가 없으면 자리표시 문구 (severity 2 이슈가 두 번째)
	secondText := attachments[1].Blocks[0]["text"].(map[string]any)["text"].(string)
	if !strings.Contains(secondText, "High latency") {
		t.Fatalf("second attachment should be the severity 2 issue, got %q", secondText)
	}
	if !strings.Contains(secondText, "No next steps provided") {
		t.Fatalf("missing next steps placeholder: %q", secondText)
	}

	// 마지막 블록은 RunSession 링크 context
	last := blocks[len(blocks)-1]
	if last["type"] != "context" {
		t.Fatalf("last block type = %v, want context", last["type"])
	}
}

func TestBuildRunSessionSummaryNoLink(t *testing.T) {
	blocks, _ := BuildRunSessionSummary("Summary", 0, "nobody", nil, "")

	for _, block := range blocks {
		if block["type"] == "context" {
			t.Fatal("context block should be omitted without a RunSession URL")
		}
	}
}

func TestFormatNextSteps(t *testing.T) {
	got := formatNextSteps("  step one \n\n step two ")
	if !strings.Contains(got, "- step one") || !strings.Contains(got, "- step two") {
		t.Fatalf("formatNextSteps() = %q", got)
	}

	empty := formatNextSteps("   \n  ")
	if !strings.Contains(empty, "No next steps provided") {
		t.Fatalf("formatNextSteps(blank) = %q", empty)
	}
}
