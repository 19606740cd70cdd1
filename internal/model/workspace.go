// Workspace API 리소스 구조체 정의 (SLX, task-search, RunSession, Persona)
//
// SLX: 워크스페이스가 관리하는 모니터링 대상 카탈로그 항목
// task-search: 쿼리/스코프/퍼소나를 받아 점수가 매겨진 태스크 목록을 반환
// RunSession: 선택된 태스크들의 실행 세션

package model

// Tag - SLX spec.tags의 name/value 쌍
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SLXSpec - SLX 스펙 (태그, 별칭, 추가 컨텍스트)
type SLXSpec struct {
	Alias             string         `json:"alias"`
	Tags              []Tag          `json:"tags"`
	ConfigProvided    []Tag          `json:"configProvided"`
	AdditionalContext map[string]any `json:"additionalContext"`
}

// SLX - 스코프 레코드 하나
type SLX struct {
	Name      string  `json:"name"`
	ShortName string  `json:"shortName"`
	Spec      SLXSpec `json:"spec"`
}

// SLXPage - SLX 목록 API의 페이지 응답
// 페이지네이션은 두 방식이 공존: next 링크(style A), offset/limit 메타(style B)
type SLXPage struct {
	Results []SLX     `json:"results"`
	Next    string    `json:"next"`
	Page    *PageMeta `json:"page,omitempty"`
}

// PageMeta - offset/limit 방식 페이지 메타데이터
type PageMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
}

// TaskSearchRequest - task-search API 요청 본문
type TaskSearchRequest struct {
	Query   []string `json:"query"`
	Scope   []string `json:"scope"`
	Persona string   `json:"persona,omitempty"`
}

// TaskSearchResponse - task-search API 응답
type TaskSearchResponse struct {
	Tasks []Task `json:"tasks"`
}

// Task - 검색 결과 태스크 하나
// 신형 응답은 workspaceTask 아래에, 구형 응답은 최상위에 필드가 있음
type Task struct {
	Score              float64        `json:"score"`
	SLXName            string         `json:"slxName,omitempty"`
	SLXShortName       string         `json:"slxShortName,omitempty"`
	SLXAlias           string         `json:"slxAlias,omitempty"`
	TaskName           string         `json:"taskName,omitempty"`
	ResolvedTaskName   string         `json:"resolvedTaskName,omitempty"`
	CodebundleTaskTags []string       `json:"codebundleTaskTags,omitempty"`
	WorkspaceTask      *WorkspaceTask `json:"workspaceTask,omitempty"`
}

// WorkspaceTask - 신형 task-search 응답의 태스크 상세
type WorkspaceTask struct {
	SLXName         string `json:"slxName"`
	SLXShortName    string `json:"slxShortName"`
	SLXAlias        string `json:"slxAlias"`
	UnresolvedTitle string `json:"unresolvedTitle"`
	ResolvedTitle   string `json:"resolvedTitle"`
}

// RunSession - 실행 세션
type RunSession struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Source      string       `json:"source,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Active      bool         `json:"active,omitempty"`
	RunRequests []RunRequest `json:"runRequests"`
}

// RunRequest - 실행 세션 내 요청 하나
// fromSearchQuery / fromIssue / fromSliAlert / fromAlert 중
// 비어있지 않은 필드가 이 요청의 출처를 나타냄
type RunRequest struct {
	ID              any            `json:"id,omitempty"`
	SLXName         string         `json:"slxName,omitempty"`
	TaskTitles      []string       `json:"taskTitles,omitempty"`
	FromSearchQuery string         `json:"fromSearchQuery,omitempty"`
	FromIssue       string         `json:"fromIssue,omitempty"`
	FromSliAlert    string         `json:"fromSliAlert,omitempty"`
	FromAlert       string         `json:"fromAlert,omitempty"`
	Created         string         `json:"created,omitempty"`
	Requester       string         `json:"requester,omitempty"`
	Persona         *Persona       `json:"persona,omitempty"`
	Issues          []RunIssue     `json:"issues,omitempty"`
	Memo            []map[string]any `json:"memo,omitempty"`
}

// RunIssue - 태스크 실행 중 발견된 이슈
type RunIssue struct {
	Title     string `json:"title"`
	Severity  int    `json:"severity"`
	Closed    bool   `json:"closed"`
	NextSteps string `json:"nextSteps,omitempty"`
	Details   string `json:"details,omitempty"`
}

// Persona - 검색/실행 주체
type Persona struct {
	ShortName string      `json:"shortName,omitempty"`
	Spec      PersonaSpec `json:"spec"`
}

// PersonaSpec - 퍼소나 스펙
type PersonaSpec struct {
	FullName string `json:"fullName"`
}

// CreateRunSessionRequest - RunSession 생성 요청 본문
type CreateRunSessionRequest struct {
	GenerateName string       `json:"generateName"`
	RunRequests  []RunRequest `json:"runRequests"`
	Active       bool         `json:"active"`
	PersonaName  string       `json:"persona_name,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

// RunSessionPatch - 기존 RunSession에 태스크를 추가하는 merge-patch 본문
type RunSessionPatch struct {
	RunRequests []RunRequest `json:"runRequests"`
}
