package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/clinicore/booking/internal/config"
	"github.com/clinicore/booking/internal/db"
	"github.com/clinicore/booking/internal/handler"
	"github.com/clinicore/booking/internal/meeting"
	"github.com/clinicore/booking/internal/model"
	"github.com/clinicore/booking/internal/notify"
	"github.com/clinicore/booking/internal/repository"
	"github.com/clinicore/booking/internal/service"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	appCfg := config.LoadAppConfig()

	loc, err := time.LoadLocation(appCfg.TimeZone)
	if err != nil {
		log.Fatal().Err(err).Str("zone", appCfg.TimeZone).Msg("load timezone")
	}

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load db config")
	}

	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init db")
	}

	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("auto migrate")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("sql DB")
	}
	defer sqlDB.Close()

	doctorRepo := repository.NewGormDoctorRepository(gormDB)
	patientRepo := repository.NewGormPatientRepository(gormDB)
	serviceRepo := repository.NewGormServiceRepository(gormDB)
	scheduleRepo := repository.NewGormScheduleRepository(gormDB)
	slotRepo := repository.NewGormSlotRepository(gormDB)
	apptRepo := repository.NewGormAppointmentRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)

	checker := service.NewAvailabilityChecker(doctorRepo, serviceRepo, slotRepo, apptRepo, loc)
	appointmentSvc := service.NewAppointmentService(
		gormDB,
		checker,
		apptRepo,
		slotRepo,
		scheduleRepo,
		doctorRepo,
		patientRepo,
		eventRepo,
		notify.NewLogNotifier(log),
		meeting.NewStaticProvider(),
		loc,
		log,
		time.Duration(appCfg.SideEffectTimeoutSec)*time.Second,
	)
	assignmentSvc := service.NewAssignmentService(apptRepo, slotRepo)
	scheduleSvc := service.NewScheduleService(scheduleRepo, slotRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	api := r.Group("/api/v1")
	handler.New(appointmentSvc, assignmentSvc, scheduleSvc).Register(api)

	srv := &http.Server{
		Addr:    appCfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", appCfg.HTTPAddr).Msg("booking core listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http serve")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
