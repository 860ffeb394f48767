package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"

	"github.com/meetroom/reservation-service/config"
	"github.com/meetroom/reservation-service/internal/handler"
	"github.com/meetroom/reservation-service/internal/middleware"
	"github.com/meetroom/reservation-service/internal/notifier"
	"github.com/meetroom/reservation-service/internal/repository"
	"github.com/meetroom/reservation-service/internal/scheduler"
	"github.com/meetroom/reservation-service/internal/service"
	"github.com/meetroom/reservation-service/pkg/cache"
	"github.com/meetroom/reservation-service/pkg/database"
	"github.com/meetroom/reservation-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ publisher: lifecycle events for downstream consumers.
	// Optional: the service runs without a broker.
	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	}

	// Repositories
	reservationRepo := repository.NewReservationRepository(db)
	roomRepo := repository.NewCachedRoomRepository(
		repository.NewRoomRepository(db),
		cache.NewRedisClient(cfg.RedisAddr),
	)

	// Service
	reservationSvc := service.NewReservationService(reservationRepo, roomRepo, publisher)

	// Reminder sweep
	location, err := time.LoadLocation(cfg.ReminderTimezone)
	if err != nil {
		log.Fatalf("invalid REMINDER_TZ %q: %v", cfg.ReminderTimezone, err)
	}
	slack := notifier.NewSlackNotifier(cfg.SlackWebhookURL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.NewReminderScheduler(reservationRepo, slack, location).Start(ctx)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "reservation-service"})
	})

	auth := middleware.JWTAuth(cfg.JWTSecret)
	handler.NewReservationHandler(reservationSvc).RegisterRoutes(e, auth)
	handler.NewRoomHandler(roomRepo).RegisterRoutes(e, auth)

	log.Printf("Reservation Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
