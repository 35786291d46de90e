package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"health-connector/internal/domain/dto"
	"health-connector/internal/domain/entities"
	Iservices "health-connector/internal/domain/interfaces/services"
	"health-connector/internal/infra/logger"
	"health-connector/internal/util"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	ErrSessionBusy     = errors.New("a submission is already in flight for this session")
	ErrSessionNotFound = errors.New("chat session not found")
)

const (
	networkErrorMessage = "서버 연결에 실패했습니다. 잠시 후 다시 시도해주세요."
	genericConfirmText  = "입력하신 내용을 확인해주세요."

	exerciseGreeting = "안녕하세요! 💪 오늘 어떤 운동을 하셨나요?\n\n운동 이름, 무게, 세트수, 회수, 운동시간을 알려주세요!"
	dietGreeting     = "안녕하세요! 😊 오늘 어떤 음식을 드셨나요?\n\n언제, 무엇을, 얼마나 드셨는지 자유롭게 말씀해 주세요!\n\n정보 저장이 필요하면 \"저장\", \"기록해줘\", \"완료\", \"끝\" 중 하나를 입력해 주세요."
)

// sessionRuntime guards one session against overlapping submissions. Extra
// sends while busy are rejected, not queued.
type sessionRuntime struct {
	mu   sync.Mutex
	busy bool
}

func (rt *sessionRuntime) tryAcquire() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.busy {
		return false
	}
	rt.busy = true
	return true
}

func (rt *sessionRuntime) release() {
	rt.mu.Lock()
	rt.busy = false
	rt.mu.Unlock()
}

// ChatPipelineService drives the turn-based dialogue that fills a structured
// draft from free text: it detects save commands before spending an AI turn,
// gates saves on required fields, merges partial extractions into the active
// draft, and hands completed drafts to the record service.
type ChatPipelineService struct {
	Logger   *logger.Logger
	Sessions Iservices.IChatSessionService
	QueryAI  Iservices.IQueryAIService
	Records  Iservices.IRecordService
	Retry    util.RetryPolicy
	runtimes cmap.ConcurrentMap[string, *sessionRuntime]
}

func NewChatPipelineService(logger *logger.Logger, sessions Iservices.IChatSessionService, queryAI Iservices.IQueryAIService, records Iservices.IRecordService) *ChatPipelineService {
	return &ChatPipelineService{
		Logger:   logger,
		Sessions: sessions,
		QueryAI:  queryAI,
		Records:  records,
		Retry:    util.RetryPolicy{MaxRetries: 2, Delay: time.Second, Retryable: util.IsTransient},
		runtimes: cmap.New[*sessionRuntime](),
	}
}

// StartSession opens a fresh dialogue for the given record type and returns
// the greeting turn.
func (cp *ChatPipelineService) StartSession(ctx context.Context, userID int64, recordType entities.RecordType) (dto.ChatMessageResponse, error) {
	session := entities.ChatSession{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		RecordType: recordType,
		State:      entities.StateIdle,
		UpdatedAt:  time.Now(),
	}
	session.AppendAssistant(greetingFor(recordType))

	if err := cp.Sessions.Create(session); err != nil {
		return dto.ChatMessageResponse{}, fmt.Errorf("failed to create chat session: %w", err)
	}
	return cp.snapshot(session, greetingFor(recordType), false), nil
}

// ResetSession atomically clears the dialogue and drafts and re-opens the
// session for the given record type. Switching record type goes through here,
// which is also what lifts the terminal saved state.
func (cp *ChatPipelineService) ResetSession(ctx context.Context, sessionID string, recordType entities.RecordType) (dto.ChatMessageResponse, error) {
	session, err := cp.Sessions.FindSession(sessionID)
	if err != nil {
		return dto.ChatMessageResponse{}, ErrSessionNotFound
	}

	session.Reset(recordType)
	session.AppendAssistant(greetingFor(recordType))

	if _, err := cp.Sessions.UpdateSession(sessionID, session); err != nil {
		return dto.ChatMessageResponse{}, fmt.Errorf("failed to reset chat session: %w", err)
	}
	return cp.snapshot(session, greetingFor(recordType), false), nil
}

// SubmitUtterance processes one user turn. Empty text is a no-op; a second
// call while a submission is in flight returns ErrSessionBusy.
func (cp *ChatPipelineService) SubmitUtterance(ctx context.Context, sessionID string, text string) (dto.ChatMessageResponse, error) {
	text = strings.TrimSpace(text)

	rt := cp.runtimeFor(sessionID)
	if !rt.tryAcquire() {
		return dto.ChatMessageResponse{}, ErrSessionBusy
	}
	defer rt.release()

	session, err := cp.Sessions.FindSession(sessionID)
	if err != nil {
		return dto.ChatMessageResponse{}, ErrSessionNotFound
	}

	if text == "" {
		return cp.snapshot(session, "", false), nil
	}

	if util.HasSaveIntent(text) {
		if session.HasSaved {
			// Saved is terminal for this session; the keyword must not
			// trigger a second create call.
			return cp.snapshot(session, "이미 저장된 기록입니다. 새로운 기록을 시작하려면 기록 유형을 다시 선택해주세요.", false), nil
		}
		if cp.hasUsableDraft(&session) {
			return cp.saveTurn(ctx, session, text)
		}
	}

	return cp.dialogueTurn(ctx, session, text)
}

// saveTurn short-circuits directly to the record service instead of spending
// a dialogue turn on a command that means "persist what we have".
func (cp *ChatPipelineService) saveTurn(ctx context.Context, session entities.ChatSession, text string) (dto.ChatMessageResponse, error) {
	session.AppendUser(text)

	if missing := cp.missingFields(&session); len(missing) > 0 {
		reply := fmt.Sprintf("저장하기 전에 %s 정보가 필요해요. 알려주시겠어요?", strings.Join(missing, ", "))
		session.AppendAssistant(reply)
		session.State = entities.StateExtracting
		session.UpdatedAt = time.Now()
		cp.persist(session)
		response := cp.snapshot(session, reply, false)
		response.MissingFields = missing
		return response, nil
	}

	session.State = entities.StateSaving

	var reply string
	var saveErr error
	switch session.RecordType {
	case entities.RecordTypeExercise:
		summary, err := cp.Records.SaveExercise(ctx, session.UserID, session.ActiveExerciseDraft())
		saveErr = err
		if err == nil {
			reply = fmt.Sprintf("운동 기록이 저장되었습니다! 💪 (%s)", summary)
		}
	case entities.RecordTypeDiet:
		items := session.ActiveDietItems()
		result := cp.Records.SaveDiet(ctx, session.UserID, items)
		if result.AllSaved() {
			reply = fmt.Sprintf("식단 기록 %d건이 저장되었습니다! 🍽️", len(result.Items))
		} else {
			failed := result.FailedNames()
			saveErr = fmt.Errorf("failed items: %s", strings.Join(failed, ", "))
			reply = fmt.Sprintf("일부 식단 기록 저장에 실패했습니다: %s. 다시 시도해주세요.", strings.Join(failed, ", "))
			// Items the backend already persisted must not be part of the
			// retry; only the failed ones stay in the session.
			session.MealFoods = failedDietItems(items, failed)
			session.DietDraft = nil
			session.LastFoods = nil
		}
	default:
		return dto.ChatMessageResponse{}, fmt.Errorf("unknown record type %q", session.RecordType)
	}

	if saveErr != nil {
		cp.Logger.Error(fmt.Sprintf("Save failed for session %s: %v", session.SessionID, saveErr))
		if reply == "" {
			reply = "서버에 데이터를 저장하는 데 실패했습니다. 다시 시도해주세요."
		}
		// The draft survives a failed save so the user can just re-issue
		// the save keyword.
		session.State = entities.StateError
		session.AppendAssistant(reply)
		session.UpdatedAt = time.Now()
		cp.persist(session)
		return cp.snapshot(session, reply, false), nil
	}

	session.MarkSaved()
	cp.persist(session)
	return cp.snapshot(session, reply, false), nil
}

// dialogueTurn sends the utterance plus history to the AI backend and folds
// the extraction into the session.
func (cp *ChatPipelineService) dialogueTurn(ctx context.Context, session entities.ChatSession, text string) (dto.ChatMessageResponse, error) {
	// The user turn lands in the transcript before the network call, so the
	// dialogue always shows it even when the backend call fails.
	session.AppendUser(text)
	if session.State == entities.StateIdle {
		session.State = entities.StateExtracting
	}
	cp.persist(session)

	request := cp.buildRequest(&session, text)

	var response dto.QueryAIResponse
	err := cp.Retry.Do(ctx, func() error {
		var callErr error
		response, callErr = cp.QueryAI.ExecuteQueryAI(ctx, request)
		return callErr
	})
	if err != nil {
		cp.Logger.Error(fmt.Sprintf("AI dialogue call failed for session %s: %v", session.SessionID, err))
		snapshot := cp.snapshot(session, networkErrorMessage, true)
		return snapshot, nil
	}

	extraction, err := dto.NormalizeExtraction(session.RecordType, response.ParsedData)
	if err != nil {
		cp.Logger.Warn(fmt.Sprintf("Ignoring unparseable extraction for session %s: %v", session.SessionID, err))
	}
	if !extraction.Empty() {
		cp.mergeExtraction(&session, extraction)
	}

	display := displayMessage(response, extraction)
	session.AppendAssistant(display)

	if response.Complete() {
		session.State = entities.StateConfirming
	} else if session.State != entities.StateConfirming {
		session.State = entities.StateExtracting
	}
	session.UpdatedAt = time.Now()
	cp.persist(session)

	snapshot := cp.snapshot(session, display, false)
	snapshot.MissingFields = response.MissingFields
	return snapshot, nil
}

func (cp *ChatPipelineService) buildRequest(session *entities.ChatSession, text string) dto.QueryAIRequest {
	history := make([]dto.HistoryTurn, 0, len(session.Transcript))
	for _, turn := range session.Transcript {
		history = append(history, dto.HistoryTurn{Role: turn.Role, Content: turn.Message})
	}

	step := "extraction"
	if session.State == entities.StateConfirming {
		step = "confirmation"
	}

	var currentData json.RawMessage
	switch session.RecordType {
	case entities.RecordTypeExercise:
		if draft := session.ActiveExerciseDraft(); draft != nil {
			currentData, _ = json.Marshal(draft)
		}
	case entities.RecordTypeDiet:
		if !session.DietDraft.Empty() {
			currentData, _ = json.Marshal(session.DietDraft)
		}
	}

	return dto.QueryAIRequest{
		Message:             text,
		ConversationHistory: history,
		RecordType:          string(session.RecordType),
		ChatStep:            step,
		CurrentData:         currentData,
		UserID:              session.UserID,
	}
}

// mergeExtraction applies only the keys the response actually carried;
// absent keys preserve the prior draft values.
func (cp *ChatPipelineService) mergeExtraction(session *entities.ChatSession, extraction dto.Extraction) {
	switch session.RecordType {
	case entities.RecordTypeExercise:
		if extraction.Exercise == nil || extraction.Exercise.Empty() {
			return
		}
		if session.ExerciseDraft == nil {
			session.ExerciseDraft = &entities.ExerciseDraft{}
		}
		session.ExerciseDraft.Merge(extraction.Exercise)
		copied := *session.ExerciseDraft
		session.LastExercise = &copied
	case entities.RecordTypeDiet:
		if len(extraction.Foods) == 0 {
			return
		}
		// A different food arriving while the current draft is complete
		// starts the next item; the finished one joins the meal list instead
		// of being overwritten.
		first := extraction.Foods[0]
		if dietDraftComplete(session.DietDraft) && first.FoodName != "" && first.FoodName != session.DietDraft.FoodName {
			session.MealFoods = append(session.MealFoods, *session.DietDraft)
			session.DietDraft = nil
		}
		if len(extraction.Foods) > 1 {
			// A multi-food turn lands in the meal list wholesale; the last
			// item stays active for follow-up corrections.
			session.MealFoods = append(session.MealFoods, extraction.Foods[:len(extraction.Foods)-1]...)
		}
		last := extraction.Foods[len(extraction.Foods)-1]
		if session.DietDraft == nil {
			session.DietDraft = &entities.DietDraft{}
		}
		session.DietDraft.Merge(&last)
		session.LastFoods = append([]entities.DietDraft(nil), extraction.Foods...)
	}
}

func dietDraftComplete(draft *entities.DietDraft) bool {
	return draft != nil && draft.FoodName != "" && draft.Amount != "" && draft.MealTime != ""
}

// failedDietItems filters a submitted batch down to the items the backend
// rejected, by food name.
func failedDietItems(items []entities.DietDraft, failedNames []string) []entities.DietDraft {
	failed := make(map[string]bool, len(failedNames))
	for _, name := range failedNames {
		failed[name] = true
	}
	var kept []entities.DietDraft
	for _, item := range items {
		if failed[item.FoodName] {
			kept = append(kept, item)
		}
	}
	return kept
}

func (cp *ChatPipelineService) hasUsableDraft(session *entities.ChatSession) bool {
	switch session.RecordType {
	case entities.RecordTypeExercise:
		return session.ActiveExerciseDraft() != nil
	case entities.RecordTypeDiet:
		return len(session.ActiveDietItems()) > 0
	}
	return false
}

// missingFields names exactly what blocks a save. Cardio workouts are exempt
// from the body-part requirement.
func (cp *ChatPipelineService) missingFields(session *entities.ChatSession) []string {
	var missing []string
	switch session.RecordType {
	case entities.RecordTypeExercise:
		draft := session.ActiveExerciseDraft()
		if draft == nil || draft.Exercise == "" {
			missing = append(missing, "운동명")
		}
		if draft != nil && !util.IsCardioCategory(draft.Category) {
			if _, ok := util.BodyPartForLabel(draft.Subcategory); !ok {
				if _, ok := util.BodyPartForLabel(draft.Category); !ok {
					missing = append(missing, "운동 부위")
				}
			}
		}
	case entities.RecordTypeDiet:
		var needName, needAmount, needMealTime bool
		items := session.ActiveDietItems()
		if len(items) == 0 {
			needName, needAmount, needMealTime = true, true, true
		}
		for _, item := range items {
			needName = needName || item.FoodName == ""
			needAmount = needAmount || item.Amount == ""
			needMealTime = needMealTime || item.MealTime == ""
		}
		if needName {
			missing = append(missing, "음식명")
		}
		if needAmount {
			missing = append(missing, "섭취량")
		}
		if needMealTime {
			missing = append(missing, "섭취시간")
		}
	}
	return missing
}

func (cp *ChatPipelineService) persist(session entities.ChatSession) {
	if _, err := cp.Sessions.UpdateSession(session.SessionID, session); err != nil {
		cp.Logger.Error(fmt.Sprintf("Failed to persist session %s: %v", session.SessionID, err))
	}
}

func (cp *ChatPipelineService) runtimeFor(sessionID string) *sessionRuntime {
	rt := &sessionRuntime{}
	if existing, ok := cp.runtimes.Get(sessionID); ok {
		return existing
	}
	cp.runtimes.SetIfAbsent(sessionID, rt)
	existing, _ := cp.runtimes.Get(sessionID)
	return existing
}

func (cp *ChatPipelineService) snapshot(session entities.ChatSession, reply string, networkError bool) dto.ChatMessageResponse {
	response := dto.ChatMessageResponse{
		SessionID:    session.SessionID,
		Reply:        reply,
		State:        string(session.State),
		Saved:        session.HasSaved,
		NetworkError: networkError,
	}
	if session.ExerciseDraft != nil {
		response.ExerciseDraft = session.ExerciseDraft
	}
	if session.DietDraft != nil {
		response.DietDraft = session.DietDraft
	}
	if len(session.MealFoods) > 0 {
		response.MealFoods = session.MealFoods
	}
	return response
}

// displayMessage derives what the user sees. Raw structured payloads never
// reach the dialogue: a JSON-looking message is replaced by the nested
// user-facing text when present, else a synthesized confirmation naming the
// extracted food or exercise, else a generic confirm prompt.
func displayMessage(response dto.QueryAIResponse, extraction dto.Extraction) string {
	message := strings.TrimSpace(response.Message)
	looksStructured := strings.HasPrefix(message, "{") && strings.HasSuffix(message, "}")
	if message != "" && !looksStructured {
		return message
	}

	if extraction.DisplayText != "" {
		return extraction.DisplayText
	}
	if len(extraction.Foods) > 0 && extraction.Foods[0].FoodName != "" {
		return fmt.Sprintf("%s을(를) 드신 것으로 기록할까요?", extraction.Foods[0].FoodName)
	}
	if extraction.Exercise != nil && extraction.Exercise.Exercise != "" {
		return fmt.Sprintf("%s을(를) 하신 것으로 기록할까요?", extraction.Exercise.Exercise)
	}
	return genericConfirmText
}

func greetingFor(recordType entities.RecordType) string {
	if recordType == entities.RecordTypeDiet {
		return dietGreeting
	}
	return exerciseGreeting
}
