package provider

import (
	"context"

	"health-connector/internal/domain/dto"
)

type IHealthAPIProvider interface {
	Login(ctx context.Context, request dto.LoginRequest) (dto.LoginResponse, error)

	FindOrCreateExercise(ctx context.Context, request dto.FindOrCreateExerciseRequest) (dto.ExerciseCatalog, error)
	CreateExerciseSession(ctx context.Context, userID int64, request dto.ExerciseSessionCreateRequest) (dto.ExerciseSession, error)
	ListExerciseSessions(ctx context.Context, userID int64, period string) ([]dto.ExerciseSession, error)

	SearchFoodItems(ctx context.Context, keyword string) ([]dto.FoodItem, error)
	CreateFoodItem(ctx context.Context, request dto.FoodItemCreateRequest) (dto.FoodItem, error)
	CreateDietRecord(ctx context.Context, request dto.DietRecordCreateRequest) (dto.DietRecord, error)
	ListDailyDietRecords(ctx context.Context, userID int64, date string) ([]dto.DietRecord, error)

	CreateHealthRecord(ctx context.Context, request dto.HealthRecordCreateRequest) (dto.HealthRecord, error)
	CreateUserGoal(ctx context.Context, request dto.UserGoalCreateRequest) (dto.UserGoal, error)

	GetStatistics(ctx context.Context, userID int64, period string) (dto.HealthStatistics, error)
	InvalidateStatistics(userID int64)

	ListNotifications(ctx context.Context, userID int64) ([]dto.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error
	DeleteNotification(ctx context.Context, notificationID int64) error
}
