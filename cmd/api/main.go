// Package main (in api-subfolder) launches the workspace HTTP server together with the history API
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

	"github.com/UnendingLoop/DeSilhouette/internal/blobstore"
	appconfig "github.com/UnendingLoop/DeSilhouette/internal/config"
	"github.com/UnendingLoop/DeSilhouette/internal/kafka"
	"github.com/UnendingLoop/DeSilhouette/internal/mwlogger"
	"github.com/UnendingLoop/DeSilhouette/internal/remover"
	"github.com/UnendingLoop/DeSilhouette/internal/repository"
	"github.com/UnendingLoop/DeSilhouette/internal/service"
	"github.com/UnendingLoop/DeSilhouette/internal/session"
	"github.com/UnendingLoop/DeSilhouette/internal/storage"
	"github.com/UnendingLoop/DeSilhouette/internal/transport"
	"github.com/UnendingLoop/DeSilhouette/internal/workspace"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
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
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к базе и накатить миграцию
	dbConn := repository.ConnectWithRetries(rawConfig, 5, 10*time.Second)
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)
	repo := repository.NewPostgresRunRepo(dbConn)

	// подключиться к хранилищу и подчистить ссылки прошлого запуска
	strg := storage.NewObjectStorage(rawConfig, 10*time.Second)
	if n, err := strg.Purge(ctx, blobstore.RefPrefix); err != nil {
		zlog.Logger.Warn().Err(err).Msg("Failed to purge stale image references")
	} else if n > 0 {
		zlog.Logger.Info().Int("count", n).Msg("Stale image references purged")
	}

	// ждем пока кафка раздуплится
	broker := rawConfig.GetString("KAFKA_BROKER")
	if !kafka.WaitKafkaReady(ctx, broker, 10*time.Second) {
		log.Fatalln("Interrupted while waiting for Kafka. Exiting...")
	}
	topic := rawConfig.GetString("KAFKA_TOPIC")
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	// история обработок
	var history HistoryAPIService = service.NewHistoryService(repo, pub, strg)

	// воркспейсы: удалённый API, ссылки в minio, реестр сессий
	rm := remover.NewClient(cfg.RequestTimeout)
	refs := blobstore.NewObjects(strg)
	registry := session.NewRegistry(cfg.SessionTTL, func(id string, ui workspace.UI) *workspace.Controller {
		return workspace.NewController(id, ui, rm, refs, cfg.Endpoints, history)
	})

	// cоздаем хендлеры HTTP
	ws := transport.NewWorkspaceHandler(registry, refs, cfg.MaxUploadSize)
	hist := transport.NewHistoryHandler(history)

	// сетапим сервер
	engine := ginext.New(cfg.GinMode)
	engine.MaxMultipartMemory = cfg.MaxUploadSize

	engine.GET("/ping", ws.SimplePinger)

	engine.POST("/sessions", ws.CreateSession)
	engine.GET("/sessions/:id", ws.GetSession)
	engine.DELETE("/sessions/:id", ws.CloseSession)
	engine.PUT("/sessions/:id/mode", ws.SetMode)
	engine.POST("/sessions/:id/upload-click", ws.UploadClick)
	engine.POST("/sessions/:id/file", ws.FileChange)
	engine.POST("/sessions/:id/drop", ws.Drop)
	engine.POST("/sessions/:id/dragover", ws.DragOver)
	engine.POST("/sessions/:id/dragleave", ws.DragLeave)
	engine.POST("/sessions/:id/process", ws.Process)
	engine.POST("/sessions/:id/reset", ws.Reset)
	engine.POST("/sessions/:id/scroll", ws.Scroll)
	engine.GET("/sessions/:id/download", ws.Download)
	engine.GET("/blobs/:ref", ws.Blob)

	engine.GET("/history", hist.GetAllRuns)                  // список с пагинацией и сортировкой
	engine.GET("/history/:id/result", hist.LoadResult)       // сохранённый результат
	engine.GET("/history/:id/thumbnail", hist.LoadThumbnail) // превьюшка, 404 пока не готова
	engine.DELETE("/history/:id", hist.Delete)               // удаление записи и объектов

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		zlog.Logger.Info().Str("addr", srv.Addr).Msg("Server running")
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// фоновые задачи: подвисшие превьюшки и брошенные сессии
	go recoveryLoop(ctx, history)
	go sweepLoop(ctx, registry)

	// ждем отмены контекста для запуска грейсфул закрытия
	<-ctx.Done()

	shutdown(srv, registry, pub, dbConn)
	log.Println("Exiting api...")
}

func recoveryLoop(ctx context.Context, svc HistoryAPIService) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Recovery loop crashed:", r)
		}
	}()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.ReviveOrphans(context.Background(), 20)
		}
	}
}

func sweepLoop(ctx context.Context, registry *session.Registry) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Sweep loop crashed:", r)
		}
	}()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := registry.Sweep(context.Background(), now); n > 0 {
				zlog.Logger.Info().Int("closed", n).Int("left", registry.Len()).Msg("Idle sessions swept")
			}
		}
	}
}

func shutdown(srv *http.Server, registry *session.Registry, pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Failed to shutdown HTTP-server correctly:", err)
	}

	// ссылки всех сессий освобождаются до закрытия хранилища
	registry.CloseAll(shutdownCtx)
	log.Println("Workspace sessions closed.")

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-writer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
