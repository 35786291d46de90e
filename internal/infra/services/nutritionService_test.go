package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"health-connector/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

func completionBody(content string) string {
	encoded, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(encoded)
}

func newTestNutritionService(t *testing.T, serverURL string) *NutritionService {
	t.Helper()
	ns := NewNutritionService(logger.NewLogger(context.Background(), false), &http.Client{}, serverURL, "test-key", "test-model")
	ns.Retry.Delay = time.Millisecond
	return ns
}

func TestEstimateNutrition_ParsesModelReply(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, completionBody(`{"calories": 45.5, "carbs": 10.2, "protein": 0.9, "fat": 0.1}`))
	})
	defer server.Close()

	ns := newTestNutritionService(t, server.URL)
	facts := ns.EstimateNutrition(context.Background(), "사과")

	assert.Equal(t, 45.5, facts.Calories)
	assert.Equal(t, 10.2, facts.Carbs)
	assert.Equal(t, 0.9, facts.Protein)
	assert.Equal(t, 0.1, facts.Fat)
}

func TestEstimateNutrition_StripsProseAroundJSON(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody("영양 정보입니다:\n```json\n{\"calories\": 120, \"carbs\": 25, \"protein\": 2, \"fat\": 0.5}\n```"))
	})
	defer server.Close()

	ns := newTestNutritionService(t, server.URL)
	facts := ns.EstimateNutrition(context.Background(), "바나나")

	assert.Equal(t, 120.0, facts.Calories)
}

func TestEstimateNutrition_FallsBackToDefaultsAfterRetries(t *testing.T) {
	attempts := 0
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	defer server.Close()

	ns := newTestNutritionService(t, server.URL)
	facts := ns.EstimateNutrition(context.Background(), "정체불명의음식")

	// Initial attempt plus two retries, then the fixed defaults.
	assert.Equal(t, 3, attempts)
	assert.Equal(t, defaultNutrition, facts)
}

func TestEstimateNutrition_RejectsNonPositiveCalories(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody(`{"calories": 0, "carbs": 0, "protein": 0, "fat": 0}`))
	})
	defer server.Close()

	ns := newTestNutritionService(t, server.URL)
	facts := ns.EstimateNutrition(context.Background(), "물")

	assert.Equal(t, defaultNutrition, facts)
}

func TestEstimatePortionGrams_ExplicitGramsSkipModel(t *testing.T) {
	called := false
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer server.Close()

	ns := newTestNutritionService(t, server.URL)
	grams := ns.EstimatePortionGrams(context.Background(), "닭가슴살", "150g")

	assert.Equal(t, 150.0, grams)
	assert.False(t, called)
}

func TestEstimatePortionGrams_NormalizesAmountBeforeAsking(t *testing.T) {
	var prompt string
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		prompt = body.Messages[0].Content
		fmt.Fprint(w, completionBody(`{"grams": 350}`))
	})
	defer server.Close()

	ns := newTestNutritionService(t, server.URL)
	grams := ns.EstimatePortionGrams(context.Background(), "김치찌개", "한 사발")

	assert.Equal(t, 350.0, grams)
	assert.Contains(t, prompt, "한그릇")
}

func TestEstimatePortionGrams_FallsBackToDefault(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	defer server.Close()

	ns := newTestNutritionService(t, server.URL)
	grams := ns.EstimatePortionGrams(context.Background(), "김치찌개", "한그릇")

	assert.Equal(t, defaultPortionGrams, grams)
}

func TestParseStrictJSON(t *testing.T) {
	var out struct {
		Grams float64 `json:"grams"`
	}

	require.NoError(t, parseStrictJSON(`prose before {"grams": 12} prose after`, &out))
	assert.Equal(t, 12.0, out.Grams)

	assert.Error(t, parseStrictJSON("no json here", &out))
	assert.Error(t, parseStrictJSON("}{", &out))
}
