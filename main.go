// alert-bridge API 서버 엔트리포인트
//
// 기동 순서:
//  1. .env 로드 (없으면 무시) 후 환경변수 기반 설정 구성
//  2. PostgreSQL 풀 생성 및 스키마 보장
//  3. (설정 시) Redis 연결 - SLX 카탈로그 캐시
//  4. 외부 클라이언트(Workspace/Slack/PagerDuty/GitHub) 및 서비스 조립
//  5. Gin 라우터 구성 후 LISTEN_ADDR에서 서빙

package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/alert-bridge/backend/internal/client"
	"github.com/alert-bridge/backend/internal/config"
	"github.com/alert-bridge/backend/internal/db"
	"github.com/alert-bridge/backend/internal/handler"
	"github.com/alert-bridge/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	// PostgreSQL 연결 및 스키마 보장
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := &db.Postgres{Pool: pool}
	if err := repo.EnsureAlertSchema(); err != nil {
		log.Fatalf("Failed to ensure alert schema: %v", err)
	}
	if err := repo.EnsureSearchSchema(); err != nil {
		log.Fatalf("Failed to ensure search schema: %v", err)
	}

	// Redis는 선택 사항 - 없으면 SLX 카탈로그를 매번 API에서 가져옴
	var cache *redis.Client
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable, continuing without SLX cache: %v", err)
			cache = nil
		}
	}

	// 외부 클라이언트 조립
	workspaceClient := client.NewWorkspaceClient(cfg.Workspace, cache)
	slackClient := client.NewSlackClient(cfg.Slack)
	pagerdutyClient := client.NewPagerDutyClient(cfg.PagerDuty)
	githubClient := client.NewGitHubClient(cfg.GitHub)

	// 서비스 조립
	authService, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to init auth service: %v", err)
	}
	searchService := service.NewSearchService(workspaceClient, workspaceClient, cfg.Workspace.Name)
	ingestService := service.NewIngestService(
		repo,
		searchService,
		workspaceClient,
		slackClient,
		pagerdutyClient,
		githubClient,
		cfg.Search,
		cfg.Workspace.FrontendURL,
	)

	// 검색 퍼소나가 실제로 존재하는지 기동 시점에 확인 (실패해도 계속)
	if persona, err := workspaceClient.GetPersona(ctx, cfg.Search.Persona); err != nil {
		log.Printf("Persona %q could not be resolved, searches will pass it through anyway: %v", cfg.Search.Persona, err)
	} else if persona.Spec.FullName != "" {
		log.Printf("Using search persona %q (%s)", cfg.Search.Persona, persona.Spec.FullName)
	}

	// 핸들러 조립
	webhookHandler := handler.NewWebhookHandler(ingestService)
	alertHandler := handler.NewAlertHandler(repo)
	runSessionHandler := handler.NewRunSessionHandler(ingestService)
	authHandler := handler.NewAuthHandler(authService)

	// Gin의 기본 라우터 생성
	router := gin.Default()
	router.Use(handler.CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)

	// 모니터링 도구가 호출하는 웹훅 수신 엔드포인트 (인증 없음)
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/azure", webhookHandler.Azure)
		webhooks.POST("/dynatrace", webhookHandler.Dynatrace)
		webhooks.POST("/pagerduty", webhookHandler.PagerDuty)
	}

	router.POST("/api/v1/auth/login", authHandler.Login)

	// 조회 API는 관리자 토큰 필요
	api := router.Group("/api/v1")
	api.Use(handler.AuthMiddleware(authService))
	{
		api.GET("/alerts", alertHandler.List)
		api.GET("/alerts/:id", alertHandler.Detail)
		api.GET("/alerts/:id/searches", alertHandler.Searches)
		api.POST("/runsessions/:id/summary", runSessionHandler.Summarize)
		api.POST("/runsessions/:id/tasks", runSessionHandler.Expand)
	}

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
