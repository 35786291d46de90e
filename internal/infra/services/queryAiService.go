package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"health-connector/internal/config"
	"health-connector/internal/domain/dto"
	"health-connector/internal/infra/logger"
	"health-connector/internal/util"
)

type QueryAIService struct {
	Logger     *logger.Logger
	HttpClient *http.Client
}

func NewQueryAIService(logger *logger.Logger, httpClient *http.Client) *QueryAIService {
	return &QueryAIService{Logger: logger, HttpClient: httpClient}
}

// ExecuteQueryAI sends one dialogue turn to the AI backend and returns its
// reply plus whatever structured extraction it produced.
//
// Returns:
//   - dto.QueryAIResponse: the displayable message, the response type tag and
//     the raw parsed_data payload (if any).
//   - error: when the request could not be delivered or the response could
//     not be decoded. 5xx statuses come back as *util.HTTPStatusError so the
//     caller's retry policy can classify them as transient.
func (th *QueryAIService) ExecuteQueryAI(ctx context.Context, request dto.QueryAIRequest) (dto.QueryAIResponse, error) {
	queryAIHost := config.GetEnv("QUERY_AI_API_HOST")

	payloadBytes, err := json.Marshal(request)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to marshal payload: %s", err.Error()))
		return dto.QueryAIResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, queryAIHost+"/api/chat", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return dto.QueryAIResponse{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := th.HttpClient.Do(req)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to send POST request: %s", err.Error()))
		return dto.QueryAIResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to read response body: %s", err.Error()))
		return dto.QueryAIResponse{}, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		th.Logger.Error(fmt.Sprintf("Unexpected HTTP status %s response_body %s", resp.Status, string(body)))
		return dto.QueryAIResponse{}, &util.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var queryResponse dto.QueryAIResponse
	if err := json.Unmarshal(body, &queryResponse); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to unmarshal response body: %s", err.Error()))
		return dto.QueryAIResponse{}, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return queryResponse, nil
}
