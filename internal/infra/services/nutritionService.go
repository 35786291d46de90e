package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"health-connector/internal/domain/dto"
	"health-connector/internal/infra/logger"
	"health-connector/internal/util"
)

// Fallbacks when the estimator stays unreachable: approximate data beats
// losing the record.
var defaultNutrition = dto.NutritionFacts{Calories: 250, Carbs: 60, Protein: 3, Fat: 1}

const defaultPortionGrams = 100.0

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NutritionService asks an OpenAI-compatible model for per-100g macros or a
// gram equivalent of a free-form portion. Both calls use fixed prompt
// templates demanding strict JSON, parse defensively, retry twice with a
// fixed 1s delay and then fall back to defaults instead of failing.
type NutritionService struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	BaseURL    string
	APIKey     string
	Model      string
	Retry      util.RetryPolicy
}

func NewNutritionService(logger *logger.Logger, httpClient *http.Client, baseURL, apiKey, model string) *NutritionService {
	return &NutritionService{
		Logger:     logger,
		HttpClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Model:      model,
		Retry:      util.RetryPolicy{MaxRetries: 2, Delay: time.Second},
	}
}

// EstimateNutrition returns per-100g macro values for a food name the
// catalog could not resolve.
func (ns *NutritionService) EstimateNutrition(ctx context.Context, foodName string) dto.NutritionFacts {
	prompt := fmt.Sprintf(`다음 음식의 100g 기준 영양 정보를 정확히 계산해주세요.

음식명: %s
기준량: 100g

일반적인 영양 정보를 바탕으로 다음 형식의 JSON으로만 응답해주세요:
{
  "calories": 100g당_칼로리(kcal),
  "carbs": 100g당_탄수화물(g),
  "protein": 100g당_단백질(g),
  "fat": 100g당_지방(g)
}

값은 소수점 첫째자리까지 반올림하여 제공해주세요.`, foodName)

	var facts dto.NutritionFacts
	err := ns.Retry.Do(ctx, func() error {
		content, err := ns.complete(ctx, prompt)
		if err != nil {
			return err
		}
		return parseStrictJSON(content, &facts)
	})
	if err != nil {
		ns.Logger.Warn(fmt.Sprintf("Nutrition estimation for %q failed after retries, using defaults: %v", foodName, err))
		return defaultNutrition
	}
	if facts.Calories <= 0 {
		return defaultNutrition
	}
	return facts
}

// EstimatePortionGrams converts a free-form quantity like "한 그릇" into
// grams. Explicit gram markers skip the model entirely.
func (ns *NutritionService) EstimatePortionGrams(ctx context.Context, foodName, amountText string) float64 {
	if grams, ok := util.GramsFromText(amountText); ok {
		return grams
	}

	normalized := util.NormalizeAmount(amountText)
	prompt := fmt.Sprintf(`"%s"의 "%s"은(는) 대략 몇 그램인지 추정해주세요.

다음 형식의 JSON으로만 응답해주세요:
{
  "grams": 추정_그램수
}`, foodName, normalized)

	var parsed struct {
		Grams float64 `json:"grams"`
	}
	err := ns.Retry.Do(ctx, func() error {
		content, err := ns.complete(ctx, prompt)
		if err != nil {
			return err
		}
		return parseStrictJSON(content, &parsed)
	})
	if err != nil || parsed.Grams <= 0 {
		ns.Logger.Warn(fmt.Sprintf("Portion estimation for %q %q failed, using %vg", foodName, amountText, defaultPortionGrams))
		return defaultPortionGrams
	}
	return parsed.Grams
}

func (ns *NutritionService) complete(ctx context.Context, prompt string) (string, error) {
	payload := completionRequest{
		Model: ns.Model,
		Messages: []completionMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   200,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ns.BaseURL+"/v1/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ns.APIKey)

	res, err := ns.HttpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(res.Body)
		return "", &util.HTTPStatusError{StatusCode: res.StatusCode, Body: string(raw)}
	}

	var completion completionResponse
	if err := json.NewDecoder(res.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response carries no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// parseStrictJSON extracts the first JSON object out of the model reply. The
// model occasionally wraps its JSON in prose or markdown fences, so the slice
// between the first '{' and the last '}' is what gets parsed.
func parseStrictJSON(content string, out any) error {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object in model reply")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), out); err != nil {
		return fmt.Errorf("failed to parse model reply: %w", err)
	}
	return nil
}
