// Package report provides markdown rendering for search results and issues.
//
// 지원하는 리포트:
//
//	태스크 후보 테이블: score ≥ threshold 태스크를 점수 내림차순으로
//	이슈 요약: severity 오름차순, 제목 + next steps + details

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alert-bridge/backend/internal/model"
)

// severityLabels - 이슈 severity → 표시 라벨
var severityLabels = map[int]string{
	1: "Critical",
	2: "High",
	3: "Medium",
	4: "Low",
}

// BuildTaskReport - score ≥ threshold 태스크의 markdown 테이블과
// 통과한 태스크 수를 반환. 통과 태스크가 없으면 안내 문구만
func BuildTaskReport(search *model.TaskSearchResponse, scoreThreshold float64) (string, int) {
	var passing []model.Task
	if search != nil {
		for _, task := range search.Tasks {
			if task.Score >= scoreThreshold {
				passing = append(passing, task)
			}
		}
	}
	if len(passing) == 0 {
		return fmt.Sprintf("**No tasks found above confidence of %g**", scoreThreshold), 0
	}

	sort.SliceStable(passing, func(i, j int) bool {
		return passing[i].Score > passing[j].Score
	})

	lines := []string{
		fmt.Sprintf("### Candidate Tasks (score >= %g)", scoreThreshold),
		"",
		"| Score | Access | SLX Alias | Task title |",
		"|:----:|:-------|-----------|------------|",
	}
	for _, task := range passing {
		alias, title := taskDisplay(task)
		lines = append(lines, fmt.Sprintf("| %.3f | %s | %s | %s |",
			task.Score, firstAccessTag(task.CodebundleTaskTags), alias, title))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n"), len(passing)
}

// taskDisplay - 신형/구형 응답에서 (별칭, 제목) 추출
func taskDisplay(task model.Task) (alias, title string) {
	if task.WorkspaceTask != nil {
		ws := task.WorkspaceTask
		alias = ws.SLXAlias
		if alias == "" {
			alias = ws.SLXName
		}
		title = ws.ResolvedTitle
		if title == "" {
			title = ws.UnresolvedTitle
		}
		return alias, title
	}
	alias = task.SLXAlias
	if alias == "" {
		alias = task.SLXName
	}
	title = task.ResolvedTaskName
	if title == "" {
		title = task.TaskName
	}
	return alias, title
}

// firstAccessTag - codebundleTaskTags에서 첫 access: 태그 값
func firstAccessTag(tags []string) string {
	for _, tag := range tags {
		if strings.HasPrefix(tag, "access:") {
			return strings.TrimPrefix(tag, "access:")
		}
	}
	return "-"
}

// BuildOpenIssueReport - 이슈 목록을 severity 오름차순 markdown으로 렌더링
func BuildOpenIssueReport(issues []model.RunIssue) string {
	sorted := make([]model.RunIssue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return normalizeSeverity(sorted[i].Severity) < normalizeSeverity(sorted[j].Severity)
	})

	var b strings.Builder
	b.WriteString("-----\n")
	for _, issue := range sorted {
		label, ok := severityLabels[issue.Severity]
		if !ok {
			label = "Unknown"
		}
		title := issue.Title
		if title == "" {
			title = "N/A"
		}
		fmt.Fprintf(&b, "#### %s\n\n- **Severity:** %s\n\n", title, label)
		if steps := strings.TrimSpace(issue.NextSteps); steps != "" {
			fmt.Fprintf(&b, "- **Next Steps:**\n%s\n\n", steps)
		}
		if issue.Details != "" {
			fmt.Fprintf(&b, "- **Details:**\n```json\n%s\n```\n\n", issue.Details)
		}
	}
	return b.String()
}

func normalizeSeverity(severity int) int {
	if severity < 1 || severity > 4 {
		return 4
	}
	return severity
}

// BuildAlertIssueBody - 정규화 알림을 외부 이슈 트래커 본문으로 렌더링
func BuildAlertIssueBody(alert *model.NormalizedAlert, runSessionURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Alert Type:** %s\n", alert.AlertType)
	fmt.Fprintf(&b, "**Severity:** %d\n\n", alert.Severity)
	fmt.Fprintf(&b, "%s\n\n", alert.Description)

	if len(alert.Resources) > 0 {
		b.WriteString("**Impacted Resources:**\n")
		for _, res := range alert.Resources {
			b.WriteString("- `" + res.ResourceID + "`\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("**Next Steps:**\n")
	for _, step := range alert.NextSteps {
		b.WriteString("- " + step + "\n")
	}

	if len(alert.PortalURLs) > 0 {
		b.WriteString("\n**Portal Links:**\n")
		names := make([]string, 0, len(alert.PortalURLs))
		for name := range alert.PortalURLs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- [%s](%s)\n", name, alert.PortalURLs[name])
		}
	}

	if runSessionURL != "" {
		fmt.Fprintf(&b, "\n[RunSession](%s)\n", runSessionURL)
	}
	return b.String()
}
