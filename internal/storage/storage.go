// Package storage provides connection to the object storage with retries
package storage

import (
	"log"
	"time"

	"github.com/UnendingLoop/DeSilhouette/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
)

// NewObjectStorage - ждёт minio бесконечно, пауза между попытками delay
func NewObjectStorage(cfg *config.Config, delay time.Duration) *miniostorage.MinioStorage {
	for {
		log.Println("Connecting to object storage...")
		client, err := miniostorage.NewMinioClient(cfg)
		if err != nil {
			log.Printf("Failed to init connection to object storage: %v\nNext retry in %v...", err, delay)
			time.Sleep(delay)
			continue
		}
		log.Println("Successfully connected to object storage!")
		return client
	}
}
