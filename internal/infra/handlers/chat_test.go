package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"health-connector/internal/domain/dto"
	"health-connector/internal/domain/entities"
	"health-connector/internal/infra/logger"
	"health-connector/internal/infra/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	startResponse  dto.ChatMessageResponse
	submitResponse dto.ChatMessageResponse
	submitErr      error
}

func (f *fakePipeline) StartSession(ctx context.Context, userID int64, recordType entities.RecordType) (dto.ChatMessageResponse, error) {
	return f.startResponse, nil
}

func (f *fakePipeline) SubmitUtterance(ctx context.Context, sessionID string, text string) (dto.ChatMessageResponse, error) {
	if f.submitErr != nil {
		return dto.ChatMessageResponse{}, f.submitErr
	}
	return f.submitResponse, nil
}

func (f *fakePipeline) ResetSession(ctx context.Context, sessionID string, recordType entities.RecordType) (dto.ChatMessageResponse, error) {
	return f.startResponse, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	request := httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	handler(recorder, request)
	return recorder
}

func newTestChatHandlers(pipeline *fakePipeline) *ChatHandlers {
	return NewChatHandlers(logger.NewLogger(context.Background(), false), pipeline)
}

func TestChatMessage_StartsSessionWithoutID(t *testing.T) {
	ch := newTestChatHandlers(&fakePipeline{
		startResponse: dto.ChatMessageResponse{SessionID: "s1", Reply: "안녕하세요!", State: "idle"},
	})

	recorder := postJSON(t, ch.Message, dto.ChatMessageRequest{UserID: 42, RecordType: "exercise"})

	require.Equal(t, http.StatusOK, recorder.Code)
	var response dto.ChatMessageResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "s1", response.SessionID)
	assert.Equal(t, "안녕하세요!", response.Reply)
}

func TestChatMessage_SubmitsUtteranceWithID(t *testing.T) {
	ch := newTestChatHandlers(&fakePipeline{
		submitResponse: dto.ChatMessageResponse{SessionID: "s1", Reply: "몇 회 하셨나요?", State: "extracting"},
	})

	recorder := postJSON(t, ch.Message, dto.ChatMessageRequest{SessionID: "s1", UserID: 42, Text: "벤치프레스 했어"})

	require.Equal(t, http.StatusOK, recorder.Code)
	var response dto.ChatMessageResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "extracting", response.State)
}

func TestChatMessage_BusySessionReturns429(t *testing.T) {
	ch := newTestChatHandlers(&fakePipeline{submitErr: services.ErrSessionBusy})

	recorder := postJSON(t, ch.Message, dto.ChatMessageRequest{SessionID: "s1", UserID: 42, Text: "저장"})

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
}

func TestChatMessage_UnknownSessionReturns404(t *testing.T) {
	ch := newTestChatHandlers(&fakePipeline{submitErr: services.ErrSessionNotFound})

	recorder := postJSON(t, ch.Message, dto.ChatMessageRequest{SessionID: "missing", UserID: 42, Text: "안녕"})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestChatMessage_InvalidRecordType(t *testing.T) {
	ch := newTestChatHandlers(&fakePipeline{})

	recorder := postJSON(t, ch.Message, dto.ChatMessageRequest{UserID: 42, RecordType: "sleep"})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestChatMessage_MalformedBody(t *testing.T) {
	ch := newTestChatHandlers(&fakePipeline{})

	request := httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewReader([]byte(`{"user_id":`)))
	recorder := httptest.NewRecorder()
	ch.Message(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestChatReset(t *testing.T) {
	ch := newTestChatHandlers(&fakePipeline{
		startResponse: dto.ChatMessageResponse{SessionID: "s1", Reply: "안녕하세요!", State: "idle"},
	})

	body, _ := json.Marshal(dto.ChatResetRequest{SessionID: "s1", RecordType: "diet"})
	request := httptest.NewRequest(http.MethodPost, "/chat/reset", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	ch.Reset(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}
