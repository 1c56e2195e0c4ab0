// Package kafka prepares the thumbnail-task topic and waits for the broker to come up
package kafka

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"
)

// TopicsRequest - запрос на создание топиков с одной партицией и без реплик
func TopicsRequest(topics ...string) *kafkago.CreateTopicsRequest {
	req := &kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}
	for _, t := range topics {
		if t == "" {
			continue
		}
		req.Topics = append(req.Topics, kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	return req
}

// InitKafkaTopics - создаёт топики, уже существующие считаются успехом
func InitKafkaTopics(ctx context.Context, brokerAddr string, delay time.Duration, topics ...string) {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}
	req := TopicsRequest(topics...)
	if len(req.Topics) == 0 {
		zlog.Logger.Warn().Msg("No kafka topics to create")
		return
	}

	for {
		resp, err := client.CreateTopics(ctx, req)
		if err != nil {
			zlog.Logger.Warn().Err(err).Dur("retry_in", delay).Msg("Failed to run topics creation request")
			if !sleepCtx(ctx, delay) {
				zlog.Logger.Warn().Msg("InitKafkaTopics canceled")
				return
			}
			continue
		}

		if topicErrors(resp.Errors) == 0 {
			zlog.Logger.Info().Strs("topics", topics).Msg("Kafka topics are ready")
			return
		}
		if !sleepCtx(ctx, delay) {
			return
		}
	}
}

// WaitKafkaReady - блокируется пока брокер не начнёт принимать соединения или не отменят контекст
func WaitKafkaReady(ctx context.Context, brokerAddr string, delay time.Duration) bool {
	for {
		conn, err := kafkago.DialContext(ctx, "tcp", brokerAddr)
		if err == nil {
			if errConn := conn.Close(); errConn != nil {
				zlog.Logger.Warn().Err(errConn).Msg("Failed to close connection after testing Kafka readiness")
			}
			zlog.Logger.Info().Str("broker", brokerAddr).Msg("Kafka is ready")
			return true
		}

		zlog.Logger.Info().Dur("retry_in", delay).Msg("Kafka not ready")
		if !sleepCtx(ctx, delay) {
			return false
		}
	}
}

func topicErrors(errs map[string]error) int {
	failed := 0
	for topic, err := range errs {
		if err == nil || errors.Is(err, kafkago.TopicAlreadyExists) {
			continue
		}
		zlog.Logger.Error().Err(err).Str("topic", topic).Msg("Topic creation error")
		failed++
	}
	return failed
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
