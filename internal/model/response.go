package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type WebhookResponse struct {
	Status string         `json:"status"`
	Data   *RoutingResult `json:"data"`
}

type AlertListResponse struct {
	Status string        `json:"status"`
	Data   []StoredAlert `json:"data"`
}

type AlertDetailResponse struct {
	Status string       `json:"status"`
	Data   *StoredAlert `json:"data"`
}

type SearchAttemptListResponse struct {
	Status string          `json:"status"`
	Data   []SearchAttempt `json:"data"`
}

// RunSessionSummary - RunSession 요약 결과 (Slack 전송 + API 응답)
type RunSessionSummary struct {
	RunSessionID   string   `json:"runSessionId"`
	Source         string   `json:"source"`
	OpenIssues     int      `json:"openIssues"`
	Keywords       []string `json:"keywords"`
	MostReferenced string   `json:"mostReferenced"`
	Report         string   `json:"report"`
	SlackSent      bool     `json:"slackSent"`
}

type RunSessionSummaryResponse struct {
	Status string             `json:"status"`
	Data   *RunSessionSummary `json:"data"`
}

// RunSessionExpandRequest - 기존 RunSession에 태스크를 추가하는 요청
type RunSessionExpandRequest struct {
	Query string `json:"query" binding:"required"`
}
