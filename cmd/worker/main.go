// Package main (in worker-subfolder) launches the history thumbnail worker
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "github.com/UnendingLoop/DeSilhouette/internal/config"
	"github.com/UnendingLoop/DeSilhouette/internal/kafka"
	"github.com/UnendingLoop/DeSilhouette/internal/repository"
	"github.com/UnendingLoop/DeSilhouette/internal/service"
	"github.com/UnendingLoop/DeSilhouette/internal/storage"
	"github.com/UnendingLoop/DeSilhouette/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	rawConfig := config.New()
	rawConfig.EnableEnv("")
	if err := rawConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}
	cfg := appconfig.Load(rawConfig)

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Listening to interruptions through context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к базе
	dbConn := repository.ConnectWithRetries(rawConfig, 5, 10*time.Second)
	// подключиться к хранилищу
	strg := storage.NewObjectStorage(rawConfig, 10*time.Second)
	// создаем экземпляр репо и сервиса, публиковать воркеру нечего
	repo := repository.NewPostgresRunRepo(dbConn)
	var svc HistoryWorkerService = service.NewHistoryService(repo, worker.NoopPublisher{}, strg)

	// ждем пока кафка раздуплится
	broker := rawConfig.GetString("KAFKA_BROKER")
	if !kafka.WaitKafkaReady(ctx, broker, 10*time.Second) {
		log.Fatalln("Interrupted while waiting for Kafka. Exiting...")
	}
	// подключиться к кафке как читатель
	queue := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	topic := rawConfig.GetString("KAFKA_TOPIC")
	groupID := rawConfig.GetString("KAFKA_GROUPID")
	cons := wbfkafka.NewConsumer([]string{broker}, topic, groupID)

	cons.StartConsuming(ctx, queue, retryStrategy)

	// Собираем воедино все что нужно воркеру и запускаем его
	thumbWorker := worker.NewWorkerInstance(strg, svc, queue, cons)
	go thumbWorker.StartWorker(ctx)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(cons, dbConn)
	log.Println("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := cons.Close(); err != nil {
		log.Println("Failed to close Kafka-reader:", err)
	}
	log.Println("Kafka-consumer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
