package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"campusbook/internal/database"
	"campusbook/internal/domain"
	"campusbook/internal/middleware"
	"campusbook/internal/modules/appointment"
	"campusbook/internal/modules/auth"
	"campusbook/internal/modules/chat"
	"campusbook/internal/modules/notification"
	"campusbook/internal/modules/schedule"
	jwtsvc "campusbook/internal/pkg/jwt"
	"campusbook/internal/pkg/mailer"
	"campusbook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Slot{},
		&domain.Appointment{},
		&domain.Message{},
		&notification.Notification{},
	); err != nil {
		log.Fatal("AutoMigrate failed: ", err)
	}

	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	notifRepo := notification.NewRepository(db)
	txManager := repository.NewGormTxManager(db)

	j := jwtsvc.New(secret, 24*time.Hour)
	mail := mailer.New(
		os.Getenv("SMTP_HOST"),
		os.Getenv("SMTP_PORT"),
		os.Getenv("SMTP_FROM"),
		os.Getenv("SMTP_PASSWORD"),
	)

	hub := chat.NewHub()

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	notifService := notification.NewService(notifRepo, userRepo, hub, mail)
	notifHandler := notification.NewHandler(notifService)

	scheduleService := schedule.NewService(slotRepo, userRepo)
	scheduleHandler := schedule.NewHandler(scheduleService)

	apptService := appointment.NewService(
		appointment.NewTxRunner(txManager),
		apptRepo,
		slotRepo,
		userRepo,
		notifService,
	)
	apptHandler := appointment.NewHandler(apptService)

	chatService := chat.NewService(msgRepo, userRepo, hub)
	chatHandler := chat.NewHandler(chatService, hub)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			scheduleHandler.RegisterRoutes(protected)
			apptHandler.RegisterRoutes(protected)
			notifHandler.RegisterRoutes(protected)
			chatHandler.RegisterRoutes(protected)

			admin := protected.Group("/")
			admin.Use(middleware.AdminOnly())
			{
				authHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
