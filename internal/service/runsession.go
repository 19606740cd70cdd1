// RunSession 데이터 요약/분석 헬퍼 정의
// 열린 이슈 집계, 출처 판별, 참여자 요약, 이슈 키워드 추출

package service

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/alert-bridge/backend/internal/model"
)

var backtickPattern = regexp.MustCompile("`(.*?)`")

// RunSessionSource - RunSession의 출처 판별
// 최상위 source가 있으면 그대로, 없으면 가장 이른 runRequest의
// fromSearchQuery/fromIssue/fromSliAlert/fromAlert 중 비어있지 않은 필드
func RunSessionSource(rs *model.RunSession) string {
	if rs == nil {
		return "Unknown"
	}
	if rs.Source != "" {
		return rs.Source
	}
	if len(rs.RunRequests) == 0 {
		return "Unknown"
	}

	earliest := rs.RunRequests[0]
	earliestAt := parseCreated(earliest.Created)
	for _, rr := range rs.RunRequests[1:] {
		if at := parseCreated(rr.Created); at.Before(earliestAt) {
			earliest = rr
			earliestAt = at
		}
	}

	switch {
	case earliest.FromSearchQuery != "":
		return "searchQuery"
	case earliest.FromIssue != "":
		return "issue"
	case earliest.FromSliAlert != "":
		return "sliAlert"
	case earliest.FromAlert != "":
		return "alert"
	}
	return "Unknown"
}

func parseCreated(created string) time.Time {
	at, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return time.Time{}
	}
	return at
}

// OpenIssues - 아직 닫히지 않은 이슈 목록
func OpenIssues(rs *model.RunSession) []model.RunIssue {
	var open []model.RunIssue
	if rs == nil {
		return open
	}
	for _, rr := range rs.RunRequests {
		for _, issue := range rr.Issues {
			if !issue.Closed {
				open = append(open, issue)
			}
		}
	}
	return open
}

// CountOpenIssues - 열린 이슈 개수
func CountOpenIssues(rs *model.RunSession) int {
	return len(OpenIssues(rs))
}

// ExtractIssueKeywords - 열린 이슈 제목의 백틱 토큰 수집 (정렬된 유니크 목록)
func ExtractIssueKeywords(rs *model.RunSession) []string {
	keywords := map[string]struct{}{}
	for _, issue := range OpenIssues(rs) {
		for _, match := range backtickPattern.FindAllStringSubmatch(issue.Title, -1) {
			if match[1] != "" {
				keywords[match[1]] = struct{}{}
			}
		}
	}
	list := make([]string, 0, len(keywords))
	for k := range keywords {
		list = append(list, k)
	}
	sort.Strings(list)
	return list
}

// MostReferencedResource - 이슈 제목에서 가장 자주 언급된 백틱 토큰
// 이슈의 닫힘 여부와 무관하게 전체를 집계
func MostReferencedResource(rs *model.RunSession) string {
	counts := map[string]int{}
	if rs != nil {
		for _, rr := range rs.RunRequests {
			for _, issue := range rr.Issues {
				for _, match := range backtickPattern.FindAllStringSubmatch(issue.Title, -1) {
					counts[match[1]]++
				}
			}
		}
	}
	best := ""
	bestCount := 0
	for keyword, count := range counts {
		if count > bestCount || (count == bestCount && keyword < best) {
			best = keyword
			bestCount = count
		}
	}
	if best == "" {
		return "No keywords found"
	}
	return best
}

// SummarizeParticipants - 참여자와 엔지니어링 어시스턴트 요약 (text 또는 markdown)
func SummarizeParticipants(rs *model.RunSession, format string) string {
	participants := map[string]struct{}{}
	assistants := map[string]struct{}{}

	if rs != nil {
		for _, rr := range rs.RunRequests {
			requester := rr.Requester
			if requester == "" {
				requester = "Unknown"
			}
			// 시스템 계정은 하나로 정규화
			if strings.Contains(requester, "@workspaces.") {
				requester = "Platform System"
			}
			participants[requester] = struct{}{}

			fullName := "Unknown"
			if rr.Persona != nil && rr.Persona.Spec.FullName != "" {
				fullName = rr.Persona.Spec.FullName
			}
			assistants[fullName] = struct{}{}
		}
	}

	sortedKeys := func(set map[string]struct{}) []string {
		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}

	var lines []string
	if strings.EqualFold(format, "markdown") {
		lines = append(lines, "#### Participants:")
		for _, p := range sortedKeys(participants) {
			lines = append(lines, "- "+p)
		}
		lines = append(lines, "", "#### Engineering Assistants:")
		for _, a := range sortedKeys(assistants) {
			lines = append(lines, "- "+a)
		}
	} else {
		lines = append(lines, "Participants:")
		for _, p := range sortedKeys(participants) {
			lines = append(lines, "  - "+p)
		}
		lines = append(lines, "", "Engineering Assistants:")
		for _, a := range sortedKeys(assistants) {
			lines = append(lines, "  - "+a)
		}
	}
	return strings.Join(lines, "\n")
}

// RunSessionURL - 프론트엔드의 RunSession 딥링크 구성
func RunSessionURL(frontendURL, workspace, runSessionID string) string {
	if frontendURL == "" || workspace == "" || runSessionID == "" {
		return ""
	}
	workspacePath := strings.TrimPrefix(strings.TrimLeft(workspace, "/"), "workspaces/")
	return frontendURL + "/map/" + workspacePath + "?selectedRunSessions=" + runSessionID
}
