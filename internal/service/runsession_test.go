package service

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alert-bridge/backend/internal/model"
)

func TestRunSessionSource(t *testing.T) {
	tests := []struct {
		name string
		rs   *model.RunSession
		want string
	}{
		{
			name: "nil-session",
			rs:   nil,
			want: "Unknown",
		},
		{
			name: "top-level-source-wins",
			rs: &model.RunSession{
				Source:      "manual",
				RunRequests: []model.RunRequest{{FromIssue: "issue-1"}},
			},
			want: "manual",
		},
		{
			name: "no-requests",
			rs:   &model.RunSession{},
			want: "Unknown",
		},
		{
			name: "earliest-request-decides",
			rs: &model.RunSession{
				RunRequests: []model.RunRequest{
					{Created: "2026-02-01T10:00:00Z", FromIssue: "issue-1"},
					{Created: "2026-02-01T09:00:00Z", FromSearchQuery: "cpu"},
				},
			},
			want: "searchQuery",
		},
		{
			name: "from-alert",
			rs: &model.RunSession{
				RunRequests: []model.RunRequest{{FromAlert: "alert-1"}},
			},
			want: "alert",
		},
		{
			name: "no-source-fields",
			rs: &model.RunSession{
				RunRequests: []model.RunRequest{{Requester: "user"}},
			},
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RunSessionSource(tt.rs); got != tt.want {
				t.Fatalf("RunSessionSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenIssuesAndCount(t *testing.T) {
	rs := &model.RunSession{
		RunRequests: []model.RunRequest{
			{Issues: []model.RunIssue{
				{Title: "open-1"},
				{Title: "closed-1", Closed: true},
			}},
			{Issues: []model.RunIssue{
				{Title: "open-2"},
			}},
		},
	}

	if got := CountOpenIssues(rs); got != 2 {
		t.Fatalf("CountOpenIssues() = %d, want 2", got)
	}
	if got := CountOpenIssues(nil); got != 0 {
		t.Fatalf("CountOpenIssues(nil) = %d, want 0", got)
	}
}

func TestExtractIssueKeywords(t *testing.T) {
	rs := &model.RunSession{
		RunRequests: []model.RunRequest{
			{Issues: []model.RunIssue{
				{Title: "Pod `cart-api` restarting in `prod`"},
				{Title: "Service `cart-api` degraded"},
				{Title: "Closed issue `ignored`", Closed: true},
			}},
		},
	}

	got := ExtractIssueKeywords(rs)
	want := []string{"cart-api", "prod"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractIssueKeywords() = %v, want %v", got, want)
	}
}

func TestMostReferencedResource(t *testing.T) {
	rs := &model.RunSession{
		RunRequests: []model.RunRequest{
			{Issues: []model.RunIssue{
				{Title: "`cart-api` down"},
				{Title: "`cart-api` flapping", Closed: true},
				{Title: "`db-01` slow"},
			}},
		},
	}

	// 닫힌 이슈도 집계에 포함
	if got := MostReferencedResource(rs); got != "cart-api" {
		t.Fatalf("MostReferencedResource() = %q, want cart-api", got)
	}
	if got := MostReferencedResource(&model.RunSession{}); got != "No keywords found" {
		t.Fatalf("MostReferencedResource(empty) = %q", got)
	}
}

func TestSummarizeParticipants(t *testing.T) {
	rs := &model.RunSession{
		RunRequests: []model.RunRequest{
			{Requester: "alice"},
			{Requester: "svc@workspaces.internal"},
			{Requester: ""},
		},
	}

	text := SummarizeParticipants(rs, "text")
	for _, expected := range []string{"alice", "Platform System", "Unknown"} {
		if !strings.Contains(text, expected) {
			t.Fatalf("text summary missing %q:\n%s", expected, text)
		}
	}

	markdown := SummarizeParticipants(rs, "markdown")
	if !strings.Contains(markdown, "#### Participants:") {
		t.Fatalf("markdown summary missing heading:\n%s", markdown)
	}
}

func TestRunSessionURL(t *testing.T) {
	tests := []struct {
		name      string
		frontend  string
		workspace string
		id        string
		want      string
	}{
		{
			name:      "plain-workspace",
			frontend:  "https://app.example.com",
			workspace: "my-ws",
			id:        "rs-1",
			want:      "https://app.example.com/map/my-ws?selectedRunSessions=rs-1",
		},
		{
			name:      "workspaces-prefix-trimmed",
			frontend:  "https://app.example.com",
			workspace: "workspaces/my-ws",
			id:        "rs-1",
			want:      "https://app.example.com/map/my-ws?selectedRunSessions=rs-1",
		},
		{
			name:      "missing-parts",
			frontend:  "",
			workspace: "my-ws",
			id:        "rs-1",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RunSessionURL(tt.frontend, tt.workspace, tt.id); got != tt.want {
				t.Fatalf("RunSessionURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
