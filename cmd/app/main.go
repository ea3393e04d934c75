package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	config "github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/configs"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/api"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/repositories"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/cache"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/services"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/usecase"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/pkg/db"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/pkg/queue"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	conf := config.LoadConfig(".")
	if conf == nil {
		panic("Failed to load config")
	}
	log := config.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbManager := db.NewDatabaseManager(log)
	defer dbManager.CloseAll()

	clinicConfig := db.DBConfig{
		Host:     conf.DBHost,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		DBName:   conf.DBName,
		Port:     conf.DBPort,
		SSLMode:  conf.DBSSLMode,
	}

	if err := dbManager.Connect(db.ClinicDB, clinicConfig,
		&models.Queue{}, &models.Patient{}, &models.MessageTemplate{}, &models.MessageCondition{},
		&models.MessageSession{}, &models.Message{}, &models.Channel{}, &models.DispatchReceipt{},
	); err != nil {
		panic(fmt.Sprintf("Failed to connect to clinic database: %v", err))
	}

	clinicDB, _ := dbManager.GetDB(db.ClinicDB)

	var rdb *redis.Client
	if conf.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		})
		defer rdb.Close()
	}

	dispatchEvents := make(chan *amqp.Delivery, 10)
	rabbitMQ := queue.NewRabbitMQ(conf, log, dispatchEvents)
	if err := rabbitMQ.Dial(); err != nil {
		log.Fatalf("[RABBITMQ] - Error connecting to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	if err := rabbitMQ.Consume(conf.DispatchQueue); err != nil {
		log.Fatalf("[RABBITMQ] - Error consuming dispatch queue: %v", err)
	}

	queueRepo := repositories.NewQueueRepository(clinicDB)
	patientRepo := repositories.NewPatientRepository(clinicDB)
	templateRepo := repositories.NewTemplateRepository(clinicDB)
	conditionRepo := repositories.NewConditionRepository(clinicDB)
	sessionRepo := repositories.NewSessionRepository(clinicDB)
	messageRepo := repositories.NewMessageRepository(clinicDB)
	channelRepo := repositories.NewChannelRepository(clinicDB)
	receiptRepo := repositories.NewReceiptRepository(clinicDB)

	accounts := services.NewAccountsClient(conf)
	renderer := services.NewTemplateRenderer()

	receiptTTL := time.Duration(conf.ReceiptTTLHours) * time.Hour
	var receiptCache usecase.ReceiptCache
	if rdb != nil {
		receiptCache = cache.NewReceiptCache(rdb, receiptTTL, log)
	}

	dispatcher := usecase.NewDispatchBatchUseCase(
		queueRepo, patientRepo, templateRepo, conditionRepo, sessionRepo, channelRepo, receiptRepo,
		accounts, accounts, renderer,
		receiptCache, rabbitMQ, receiptTTL, log,
	)
	pauser := usecase.NewPauseUseCase(channelRepo, sessionRepo, messageRepo, log)
	retrier := usecase.NewRetryFailedUseCase(sessionRepo, messageRepo, patientRepo, log)
	canceller := usecase.NewCancelSessionUseCase(sessionRepo, log)

	go processDispatchEvents(dispatchEvents, dispatcher, log)

	handler := api.NewHandler(dispatcher, pauser, retrier, canceller, sessionRepo, messageRepo)
	router := api.NewRouter(handler, rdb, conf.DispatchRatePerMin, log)

	server := &http.Server{
		Addr:    ":" + conf.ServerPort,
		Handler: router,
	}

	go func() {
		log.Infof("[SERVER] - Dispatch engine listening on :%s", conf.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[SERVER] - Error running HTTP server: %v", err)
		}
	}()

	if err := waitForShutdown(ctx, cancel, server, rabbitMQ, log); err != nil {
		log.Fatalf("[SHUTDOWN] - Error during shutdown: %v", err)
	}
}

func processDispatchEvents(msgs <-chan *amqp.Delivery, dispatcher *usecase.DispatchBatchUseCase, log *logrus.Logger) {
	var wg sync.WaitGroup
	numWorkers := 10
	workerPool := make(chan struct{}, numWorkers)

	for msg := range msgs {
		wg.Add(1)
		workerPool <- struct{}{}

		go func(msg *amqp.Delivery) {
			defer wg.Done()
			defer func() { <-workerPool }()

			log.Info("[EVENT] - Received a dispatch request event")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			handler := usecase.NewReceiptDispatchEventUseCase(dispatcher, log)
			if err := handler.Execute(ctx, string(msg.Body)); err != nil {
				log.Errorf("[EVENT] - Error processing dispatch event: %v", err)
				msg.Nack(false, false)
				return
			}

			if err := msg.Ack(false); err != nil {
				log.Errorf("[EVENT] - Error acknowledging message: %v", err)
			}
		}(msg)
	}

	wg.Wait()
	close(workerPool)
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *http.Server, rabbit *queue.RabbitMQ, log *logrus.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("[SHUTDOWN] - Received shutdown signal")
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[SHUTDOWN] - Error shutting down HTTP server: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := rabbit.Close(); err != nil {
			log.Errorf("[SHUTDOWN] - Error closing RabbitMQ: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
		log.Info("[SHUTDOWN] - RabbitMQ closed successfully")
	case <-shutdownCtx.Done():
		log.Warn("[SHUTDOWN] - Timeout while waiting for RabbitMQ to close")
	}

	return nil
}
