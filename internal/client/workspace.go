// Workspace API와 HTTP 통신하는 클라이언트 정의
//
// 환경변수:
//   - WORKSPACE_API_URL: Workspace API 루트 (예: https://papi.example.com/api/v3/workspaces)
//   - WORKSPACE_NAME: 워크스페이스 이름
//   - WORKSPACE_API_TOKEN: Bearer 토큰
//
// SLX 목록은 페이지 단위로 수집하며 두 가지 페이지네이션 방식을
// 모두 지원: next 링크(style A), offset/limit 메타(style B).
// 페이지 요청 실패는 지수 백오프로 최대 3회 재시도.
// Redis가 설정되면 전체 SLX 목록을 짧은 TTL로 캐시해서
// 웹훅이 몰릴 때 매번 카탈로그를 다시 페이징하지 않는다.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/alert-bridge/backend/internal/config"
	"github.com/alert-bridge/backend/internal/model"
	"github.com/go-redis/redis/v8"
)

const (
	slxPageLimit    = 500
	pageMaxRetries  = 3
	slxCachePrefix  = "slx-catalog:"
	defaultCacheTTL = 60 * time.Second
)

var offsetPattern = regexp.MustCompile(`offset=\d+`)

// WorkspaceClient 구조체 정의
type WorkspaceClient struct {
	baseURL    string
	workspace  string
	token      string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
}

// WorkspaceClient 객체 생성 (cache는 nil 허용)
func NewWorkspaceClient(cfg config.WorkspaceConfig, cache *redis.Client) *WorkspaceClient {
	ttl := defaultCacheTTL
	if cfg.CacheTTL > 0 {
		ttl = cfg.CacheTTL
	}
	return &WorkspaceClient{
		baseURL:   strings.TrimRight(cfg.APIURL, "/"),
		workspace: workspacePath(cfg.Name),
		token:     cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:    cache,
		cacheTTL: ttl,
	}
}

// Workspace - 정규화된 워크스페이스 이름 반환
func (c *WorkspaceClient) Workspace() string {
	return c.workspace
}

// workspacePath - "workspaces/" 접두사가 이미 붙어 오는 경우 정리
func workspacePath(name string) string {
	path := strings.TrimLeft(name, "/")
	return strings.TrimPrefix(path, "workspaces/")
}

// ListSLXs - 워크스페이스의 SLX 전체 목록 (캐시 우선)
func (c *WorkspaceClient) ListSLXs(ctx context.Context) ([]model.SLX, error) {
	cacheKey := slxCachePrefix + c.workspace

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var slxs []model.SLX
			if err := json.Unmarshal(cached, &slxs); err == nil {
				return slxs, nil
			}
		}
	}

	startURL := fmt.Sprintf("%s/%s/slxs?limit=%d", c.baseURL, c.workspace, slxPageLimit)
	slxs, err := c.pageThroughSLXs(ctx, startURL)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if encoded, err := json.Marshal(slxs); err == nil {
			if err := c.cache.Set(ctx, cacheKey, encoded, c.cacheTTL).Err(); err != nil {
				log.Printf("Failed to cache SLX catalog: %v", err)
			}
		}
	}
	return slxs, nil
}

// pageThroughSLXs - next 링크와 offset/limit 메타 양쪽을 따라가는 페이저
func (c *WorkspaceClient) pageThroughSLXs(ctx context.Context, startURL string) ([]model.SLX, error) {
	var collected []model.SLX
	url := startURL

	for url != "" {
		page, finalURL, err := c.fetchSLXPage(ctx, url)
		if err != nil {
			// 일부라도 모았으면 그것으로 진행 (best-effort)
			if len(collected) > 0 {
				log.Printf("Giving up paging SLXs, returning partial catalog: %v", err)
				return collected, nil
			}
			return nil, err
		}
		collected = append(collected, page.Results...)

		// style A - next 링크
		url = page.Next

		// style B - offset/limit
		if url == "" && page.Page != nil {
			returned := len(page.Results)
			total := page.Page.Total
			if total == 0 {
				total = returned
			}
			offset := page.Page.Offset + returned
			if offset < total {
				url = offsetPattern.ReplaceAllString(finalURL, fmt.Sprintf("offset=%d", offset))
				if !offsetPattern.MatchString(finalURL) {
					url = finalURL + fmt.Sprintf("&offset=%d", offset)
				}
			}
		}
	}
	return collected, nil
}

// fetchSLXPage - 페이지 1회 요청 (지수 백오프 재시도)
func (c *WorkspaceClient) fetchSLXPage(ctx context.Context, url string) (*model.SLXPage, string, error) {
	retryDelay := 2 * time.Second
	var lastErr error

	for attempt := 1; attempt <= pageMaxRetries; attempt++ {
		var page model.SLXPage
		err := c.getJSON(ctx, url, &page)
		if err == nil {
			return &page, url, nil
		}
		lastErr = err
		if attempt < pageMaxRetries {
			log.Printf("SLX page request failed (attempt %d), retrying in %s: %v", attempt, retryDelay, err)
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return nil, url, ctx.Err()
			}
			retryDelay *= 2
		}
	}
	return nil, url, fmt.Errorf("failed to fetch SLX page after %d attempts: %w", pageMaxRetries, lastErr)
}

// GetSLXsWithTag - spec.tags에 주어진 태그 중 하나라도 있는 SLX 반환
// 이름/값 모두 대소문자 무시로 비교
func (c *WorkspaceClient) GetSLXsWithTag(ctx context.Context, tags []model.Tag) ([]model.SLX, error) {
	wanted := map[[2]string]struct{}{}
	for _, tag := range tags {
		if tag.Name == "" {
			continue
		}
		key := [2]string{
			strings.ToLower(strings.TrimSpace(tag.Name)),
			strings.ToLower(strings.TrimSpace(tag.Value)),
		}
		wanted[key] = struct{}{}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	all, err := c.ListSLXs(ctx)
	if err != nil {
		return nil, err
	}

	var matches []model.SLX
	for _, slx := range all {
		for _, tag := range slx.Spec.Tags {
			key := [2]string{
				strings.ToLower(strings.TrimSpace(tag.Name)),
				strings.ToLower(strings.TrimSpace(tag.Value)),
			}
			if _, ok := wanted[key]; ok {
				matches = append(matches, slx)
				break
			}
		}
	}
	return matches, nil
}

// GetSLXsWithEntityReference - 별칭/태그/추가 컨텍스트 어딘가에
// 식별자를 언급하는 SLX 반환 (대소문자 무시 부분 문자열 매칭)
func (c *WorkspaceClient) GetSLXsWithEntityReference(ctx context.Context, entityRefs []string) ([]model.SLX, error) {
	terms := map[string]struct{}{}
	for _, ref := range entityRefs {
		if ref != "" {
			terms[strings.ToLower(ref)] = struct{}{}
		}
	}
	if len(terms) == 0 {
		return nil, nil
	}

	all, err := c.ListSLXs(ctx)
	if err != nil {
		return nil, err
	}

	var hits []model.SLX
	for _, slx := range all {
		corpus := slxCorpus(slx)
		for term := range terms {
			if strings.Contains(corpus, term) {
				hits = append(hits, slx)
				break
			}
		}
	}
	return hits, nil
}

// slxCorpus - 매칭 대상 텍스트를 한 덩어리로 결합 (소문자)
func slxCorpus(slx model.SLX) string {
	parts := []string{slx.Spec.Alias}
	for _, tag := range slx.Spec.Tags {
		parts = append(parts, tag.Name, tag.Value, tag.Name+":"+tag.Value)
	}
	for _, cp := range slx.Spec.ConfigProvided {
		parts = append(parts, cp.Name, cp.Value, cp.Name+":"+cp.Value)
	}
	for key, value := range slx.Spec.AdditionalContext {
		parts = append(parts, key, fmt.Sprint(value), fmt.Sprintf("%s:%v", key, value))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// SearchTasks - POST task-search
func (c *WorkspaceClient) SearchTasks(ctx context.Context, query string, scope []string, persona string) (*model.TaskSearchResponse, error) {
	if scope == nil {
		scope = []string{}
	}
	req := model.TaskSearchRequest{
		Query:   []string{query},
		Scope:   scope,
		Persona: persona,
	}
	url := fmt.Sprintf("%s/%s/task-search", c.baseURL, c.workspace)

	var resp model.TaskSearchResponse
	if err := c.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPersona - 퍼소나 설정 조회
func (c *WorkspaceClient) GetPersona(ctx context.Context, shortName string) (*model.Persona, error) {
	url := fmt.Sprintf("%s/%s/personas/%s", c.baseURL, c.workspace, shortName)
	var persona model.Persona
	if err := c.getJSON(ctx, url, &persona); err != nil {
		return nil, err
	}
	return &persona, nil
}

// getJSON - 인증 헤더를 붙여 GET 후 JSON 디코딩
func (c *WorkspaceClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.doJSON(req, out)
}

// postJSON - 인증 헤더를 붙여 POST 후 JSON 디코딩
func (c *WorkspaceClient) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

// patchJSON - merge-patch 본문을 PATCH 후 JSON 디코딩
func (c *WorkspaceClient) patchJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/merge-patch+json")
	return c.doJSON(req, out)
}

func (c *WorkspaceClient) doJSON(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("workspace request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("workspace API returned status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse workspace response: %w", err)
	}
	return nil
}
