package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"whentomeet/config"
	authadapter "whentomeet/internal/adapters/auth"
	emailadapter "whentomeet/internal/adapters/email"
	mapsadapter "whentomeet/internal/adapters/maps"
	"whentomeet/internal/adapters/push"
	httpdelivery "whentomeet/internal/delivery/http"
	"whentomeet/internal/delivery/http/controllers"
	"whentomeet/internal/delivery/http/middleware"
	"whentomeet/internal/repository/postgres"
	"whentomeet/internal/services"

	_ "whentomeet/docs"
)

// @title WhenToMeet API
// @version 1.0
// @description Scheduling coordination backend: availability polls, appointments, invitations, and inbox notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	wtmRepo := postgres.NewWTMRepository(db)
	apptRepo := postgres.NewAppointmentRepository(db)

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.Mailer.SESRegion,
			AccessKeyID:        cfg.Mailer.SESAccessKeyID,
			SecretAccessKey:    cfg.Mailer.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Mailer.SESInsecureTLS,
		},
	})
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	emailSvc := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())

	hasher := authadapter.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	userSvc := services.NewUserService(userRepo, wtmRepo, hasher, emailSvc, logger)
	wtmSvc := services.NewWTMService(wtmRepo, userRepo, emailSvc, logger)
	apptSvc := services.NewAppointmentService(apptRepo, userRepo, emailSvc, logger)

	mapsClient := mapsadapter.NewClient(nil, cfg.MapsAPIKey)
	alarmSvc := services.NewAlarmService(mapsClient, mapsClient, push.NewLogPusher(logger), logger)

	mux := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Auth:         controllers.NewAuthController(logger, userSvc, issuer, cfg.TokenExpiry),
		Users:        controllers.NewUserController(logger, userSvc),
		WTMs:         controllers.NewWTMController(logger, wtmSvc),
		Appointments: controllers.NewAppointmentController(logger, apptSvc),
		Maps:         controllers.NewMapsController(logger, mapsClient, alarmSvc),
		Verifier:     verifier,
		AuthLimiter:  middleware.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst),
	})

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
