package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planner-project/backend/schedule-service/handlers"
	"planner-project/backend/schedule-service/logging"
	"planner-project/backend/schedule-service/middleware"
	"planner-project/backend/schedule-service/repositories"
	"planner-project/backend/schedule-service/services"
	"planner-project/backend/schedule-service/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Schedule Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := requireEnv("MONGO_URI")
	mongoDBName := requireEnv("MONGO_DB_NAME")
	serverPort := requireEnv("SERVER_PORT")
	notificationsURL := requireEnv("NOTIFICATIONS_SERVICE_URL")

	// The signing key has no fallback on purpose; a process without it must
	// not come up.
	if err := utils.InitSigningKey(os.Getenv("JWT_SECRET")); err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set: %v", err)
	}

	reminderCron := os.Getenv("REMINDER_CRON")
	if reminderCron == "" {
		reminderCron = "* * * * *"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	taskRepo := repositories.NewMongoTaskRepository(db.Collection("tasks"))
	scheduleRepo := repositories.NewMongoScheduleRepository(db.Collection("schedules"))
	groupRepo := repositories.NewMongoGroupRepository(db.Collection("groupMembers"))

	notificationsBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifications-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	notificationClient := services.NewNotificationClient(notificationsURL, notificationsBreaker)

	checker := services.NewConflictChecker()
	taskService := services.NewTaskService(taskRepo)
	scheduleService := services.NewScheduleService(scheduleRepo, groupRepo, checker)
	groupService := services.NewGroupService(groupRepo)
	reminderService := services.NewReminderService(taskRepo, notificationClient)

	taskHandler := handlers.NewTaskHandler(taskService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	groupHandler := handlers.NewGroupHandler(groupService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/tasks", taskHandler.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}/status", taskHandler.ChangeTaskStatus).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{taskID}/progress", taskHandler.UpdateTaskProgress).Methods(http.MethodPatch)

	api.HandleFunc("/schedules", scheduleHandler.GetSchedules).Methods(http.MethodGet)
	api.HandleFunc("/schedules", scheduleHandler.CreateSchedule).Methods(http.MethodPost)
	api.HandleFunc("/schedules/conflicts", scheduleHandler.CheckConflicts).Methods(http.MethodPost)
	api.HandleFunc("/schedules/{scheduleID}", scheduleHandler.UpdateSchedule).Methods(http.MethodPut)
	api.HandleFunc("/schedules/{scheduleID}", scheduleHandler.DeleteSchedule).Methods(http.MethodDelete)

	api.HandleFunc("/groups/{groupID}/members", groupHandler.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupID}/members", groupHandler.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupID}/members/{userID}", groupHandler.RemoveMember).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{groupID}/members/{userID}/promote", groupHandler.PromoteMember).Methods(http.MethodPatch)
	api.HandleFunc("/groups/{groupID}/members/{userID}/demote", groupHandler.DemoteMember).Methods(http.MethodPatch)
	api.HandleFunc("/groups/{groupID}/members/{userID}/schedule-permission", groupHandler.SetSchedulePermission).Methods(http.MethodPatch)
	api.HandleFunc("/groups/{groupID}/transfer-admin", groupHandler.TransferAdmin).Methods(http.MethodPost)

	// The sweep runs on a single scheduler; SkipIfStillRunning guarantees a
	// new tick never starts while the previous one is in flight.
	sweeper := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := sweeper.AddFunc(reminderCron, func() {
		if err := reminderService.RunSweep(context.Background()); err != nil {
			logging.Logger.Errorf("Event ID: SWEEP_FAILED, Description: Reminder sweep finished with errors, will retry on next tick: %v", err)
		}
	}); err != nil {
		logging.Logger.Fatalf("Event ID: SCHEDULER_INIT_FAILED, Description: Invalid reminder cron expression %q: %v", reminderCron, err)
	}
	sweeper.Start()
	logging.Logger.Infof("Event ID: SCHEDULER_STARTED, Description: Reminder sweep scheduled with expression %q.", reminderCron)

	serverAddress := fmt.Sprintf(":%s", serverPort)
	server := &http.Server{
		Addr:    serverAddress,
		Handler: enableCORS(r),
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Logger.Infof("Event ID: SERVICE_SHUTDOWN, Description: Signal %s received, shutting down.", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_ERROR, Description: HTTP server shutdown failed: %v", err)
	}

	// Let an in-flight sweep tick finish rather than abandoning a partial
	// bulk update.
	<-sweeper.Stop().Done()
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Schedule Service stopped.")
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %s is not set in the environment variables.", key)
	}
	return value
}
