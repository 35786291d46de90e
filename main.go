package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"health-connector/internal/config"
	"health-connector/internal/domain/entities"
	Iservices "health-connector/internal/domain/interfaces/services"
	"health-connector/internal/infra/handlers"
	"health-connector/internal/infra/logger"
	"health-connector/internal/infra/provider"
	"health-connector/internal/infra/repository"
	"health-connector/internal/infra/routes"
	"health-connector/internal/infra/services"
	"health-connector/internal/infra/store"
	"health-connector/internal/middleware"
	client "health-connector/internal/pkg"

	"github.com/gorilla/mux"
)

func main() {
	config.LoadEnv()

	ctx := context.Background()
	log := logger.NewLogger(ctx, true)

	mongoClient := client.MongoClient()
	chatSessionDB := mongoClient.Database("ChatSessions")

	localStore, err := store.NewLocalStore(config.GetEnvDefault("LOCAL_STORE_PATH", "health-connector.db"))
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to open local store: %v", err))
	}
	defer localStore.Close()

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	chatSessionRepo := repository.NewMongoRepository[entities.ChatSession](chatSessionDB)

	httpClient := http.Client{Timeout: 30 * time.Second}

	var identitySvc Iservices.IIdentityService = services.NewIdentityService(localStore, log)
	var chatSessionSvc Iservices.IChatSessionService = services.NewChatSessionService(chatSessionRepo, ctx, log)
	var queryAISvc Iservices.IQueryAIService = services.NewQueryAIService(log, &httpClient)

	apiProvider := provider.NewHealthAPIProvider(log, &httpClient, config.GetEnv("HEALTH_API_HOST"), identitySvc)

	var nutritionSvc Iservices.INutritionService = services.NewNutritionService(
		log,
		&httpClient,
		config.GetEnv("LLM_API_HOST"),
		config.GetEnv("LLM_API_KEY"),
		config.GetEnvDefault("LLM_MODEL", "gpt-4o-mini"),
	)
	var recordSvc Iservices.IRecordService = services.NewRecordService(log, apiProvider, nutritionSvc)
	var pipelineSvc Iservices.IChatPipelineService = services.NewChatPipelineService(log, chatSessionSvc, queryAISvc, recordSvc)

	notificationSvc := services.NewNotificationService(log, apiProvider, identitySvc)
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	chatHandlers := handlers.NewChatHandlers(log, pipelineSvc)
	authHandlers := handlers.NewAuthHandlers(log, apiProvider, identitySvc)
	recordHandlers := handlers.NewRecordHandlers(log, apiProvider, identitySvc, notificationSvc)

	routes := routes.NewRoutes(
		router,
		chatHandlers,
		authHandlers,
		recordHandlers,
	)

	routes.Init()

	port := config.GetEnv("PORT")
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}
}
