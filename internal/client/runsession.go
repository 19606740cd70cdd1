// RunSession 생성/수정 API 호출 정의
//
// 처리 흐름:
//  1. task-search 응답에서 score ≥ threshold 태스크만 선별
//  2. SLX별로 묶어 runRequests 구성 (slxName은 workspace-- 접두사 보장)
//  3. POST /runsessions (생성) 또는 PATCH /runsessions/{id} (태스크 추가)
//
// 신형(workspaceTask)과 구형 task-search 응답 구조를 모두 처리

package client

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alert-bridge/backend/internal/model"
)

// RunSessionOptions - RunSession 생성 파라미터
type RunSessionOptions struct {
	PersonaShortName string
	Source           string
	ScoreThreshold   float64
	GeneratePrefix   string
	Notes            string
}

// CreateRunSessionFromSearch - 검색 응답으로 새 RunSession 생성
// threshold를 넘는 태스크가 없으면 생성하지 않고 nil 반환
func (c *WorkspaceClient) CreateRunSessionFromSearch(ctx context.Context, search *model.TaskSearchResponse, opts RunSessionOptions) (*model.RunSession, error) {
	runRequests := c.buildRunRequests(search, opts.ScoreThreshold, opts.Source)
	if len(runRequests) == 0 {
		return nil, nil
	}

	prefix := opts.GeneratePrefix
	if prefix == "" {
		prefix = "automated"
	}

	body := model.CreateRunSessionRequest{
		GenerateName: prefix,
		RunRequests:  runRequests,
		Active:       true,
		Notes:        opts.Notes,
	}
	if opts.PersonaShortName != "" {
		body.PersonaName = c.qualifySLXName(opts.PersonaShortName)
	}

	url := fmt.Sprintf("%s/%s/runsessions", c.baseURL, c.workspace)
	var created model.RunSession
	if err := c.postJSON(ctx, url, body, &created); err != nil {
		return nil, fmt.Errorf("failed to create runsession: %w", err)
	}
	return &created, nil
}

// AddTasksToRunSession - 기존 RunSession에 태스크 추가 (merge-patch)
func (c *WorkspaceClient) AddTasksToRunSession(ctx context.Context, runSessionID string, search *model.TaskSearchResponse, scoreThreshold float64, sourceQuery string) (*model.RunSession, error) {
	runRequests := c.buildRunRequests(search, scoreThreshold, sourceQuery)
	if len(runRequests) == 0 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/%s/runsessions/%s", c.baseURL, c.workspace, runSessionID)
	var patched model.RunSession
	if err := c.patchJSON(ctx, url, model.RunSessionPatch{RunRequests: runRequests}, &patched); err != nil {
		return nil, fmt.Errorf("failed to patch runsession: %w", err)
	}
	return &patched, nil
}

// GetRunSession - RunSession 상세 조회
func (c *WorkspaceClient) GetRunSession(ctx context.Context, runSessionID string) (*model.RunSession, error) {
	url := fmt.Sprintf("%s/%s/runsessions/%s", c.baseURL, c.workspace, runSessionID)
	var rs model.RunSession
	if err := c.getJSON(ctx, url, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

// buildRunRequests - 태스크를 SLX별로 묶어 runRequests 구성
// 출력 순서를 결정적으로 만들기 위해 slxName 기준 정렬
func (c *WorkspaceClient) buildRunRequests(search *model.TaskSearchResponse, scoreThreshold float64, source string) []model.RunRequest {
	if search == nil {
		return nil
	}

	grouped := map[string][]string{}
	for _, task := range search.Tasks {
		if task.Score < scoreThreshold {
			continue
		}
		slx, title := taskTarget(task)
		if slx == "" || title == "" {
			continue
		}
		slx = c.qualifySLXName(slx)
		grouped[slx] = append(grouped[slx], title)
	}

	slxNames := make([]string, 0, len(grouped))
	for slx := range grouped {
		slxNames = append(slxNames, slx)
	}
	sort.Strings(slxNames)

	runRequests := make([]model.RunRequest, 0, len(slxNames))
	for _, slx := range slxNames {
		runRequests = append(runRequests, model.RunRequest{
			SLXName:         slx,
			TaskTitles:      grouped[slx],
			FromSearchQuery: source,
		})
	}
	return runRequests
}

// taskTarget - 신형/구형 응답에서 (slx, 태스크 제목) 추출
func taskTarget(task model.Task) (slx, title string) {
	if task.WorkspaceTask != nil {
		ws := task.WorkspaceTask
		slx = ws.SLXShortName
		if slx == "" {
			slx = ws.SLXName
		}
		title = ws.UnresolvedTitle
		if title == "" {
			title = ws.ResolvedTitle
		}
		return slx, title
	}
	slx = task.SLXShortName
	if slx == "" {
		slx = task.SLXName
	}
	title = task.TaskName
	if title == "" {
		title = task.ResolvedTaskName
	}
	return slx, title
}

// qualifySLXName - workspace-- 접두사 보장
func (c *WorkspaceClient) qualifySLXName(name string) string {
	if strings.HasPrefix(name, c.workspace+"--") {
		return name
	}
	return c.workspace + "--" + name
}
