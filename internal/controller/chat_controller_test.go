package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanketexe/legal-chatbot/internal/dto"
	"github.com/sanketexe/legal-chatbot/internal/pkg/serverutils"
	"github.com/sanketexe/legal-chatbot/pkg/rag"
)

type stubChatService struct {
	askRes    *dto.AskResponse
	askErr    error
	searchRes []dto.SearchResultDTO
	searchErr error
}

func (s *stubChatService) Ask(context.Context, *dto.AskRequest) (*dto.AskResponse, error) {
	return s.askRes, s.askErr
}

func (s *stubChatService) SearchCases(context.Context, string, int) ([]dto.SearchResultDTO, error) {
	return s.searchRes, s.searchErr
}

func (s *stubChatService) Health(context.Context) (*dto.HealthResponse, error) {
	return &dto.HealthResponse{Status: "ok", IndexedCases: 42}, nil
}

func testApp(svc *stubChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func TestAskEndpoint(t *testing.T) {
	svc := &stubChatService{askRes: &dto.AskResponse{
		Answer:         "damages are the usual remedy",
		PrecedentFound: true,
		Citations:      []dto.CitationDTO{{CaseId: "c1", Title: "A v. B", Score: 0.9, Rank: 1}},
	}}
	app := testApp(svc)

	req := httptest.NewRequest("POST", "/api/chat/v1", strings.NewReader(`{"question": "breach of contract?"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var body serverutils.ApiResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.Success)
}

func TestAskEndpointValidation(t *testing.T) {
	app := testApp(&stubChatService{})

	tests := []struct {
		name string
		body string
	}{
		{"missing question", `{}`},
		{"too short", `{"question": "ab"}`},
		{"not json", `question=hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/chat/v1", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
		})
	}
}

func TestAskEndpointAssistantUnavailable(t *testing.T) {
	app := testApp(&stubChatService{askErr: rag.ErrAssistantUnavailable})

	req := httptest.NewRequest("POST", "/api/chat/v1", strings.NewReader(`{"question": "valid question"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, res.StatusCode)
}

func TestSearchCasesEndpoint(t *testing.T) {
	svc := &stubChatService{searchRes: []dto.SearchResultDTO{
		{CaseId: "c1", Title: "A v. B", Score: 0.88, Rank: 1},
	}}
	app := testApp(svc)

	res, err := app.Test(httptest.NewRequest("GET", "/api/chat/v1/search-cases?q=eviction&top_k=3", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestSearchCasesEndpointBlankQuery(t *testing.T) {
	app := testApp(&stubChatService{searchErr: rag.ErrInvalidQuery})

	res, err := app.Test(httptest.NewRequest("GET", "/api/chat/v1/search-cases", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := testApp(&stubChatService{})

	res, err := app.Test(httptest.NewRequest("GET", "/api/chat/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
