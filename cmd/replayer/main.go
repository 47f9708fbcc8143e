package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/zavvdev/circular-history/internal/config"
	"github.com/zavvdev/circular-history/internal/events"
	"github.com/zavvdev/circular-history/internal/metrics"
)

type appConfig struct {
	HTTPPort         string        `config_key:"http.listen-port"`
	BootstrapServers string        `config_key:"kafka.consumer.bootstrap-servers"`
	ConsumerGroupID  string        `config_key:"kafka.consumer.group-id"`
	ConsumeTopic     string        `config_key:"kafka.consumer.topic"`
	RetryDelay       time.Duration `config_key:"kafka.consumer.retry-delay"`
	HistoryCapacity  int           `config_key:"history.capacity"`
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Parse[appConfig](config.EnvMap{})
	if err != nil {
		return fmt.Errorf("parse app config: %v", err)
	}
	if cfg.HistoryCapacity == 0 {
		cfg.HistoryCapacity = 256
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 5 * time.Second
	}

	ops := metrics.NewOps(5 * 60)

	tl, err := newTimeline(cfg.HistoryCapacity, ops)
	if err != nil {
		return fmt.Errorf("build timeline: %w", err)
	}

	server, err := newTimelineServer(fmt.Sprintf(":%s", cfg.HTTPPort), tl, ops)
	if err != nil {
		return fmt.Errorf("serve timeline endpoints: %w", err)
	}
	defer func() {
		if err := server.Shutdown(ctx); err != nil {
			fmt.Printf("error: shutdown timeline server: %v\n", err)
		}
	}()

	consumer, err := buildConsumer(cfg)
	if err != nil {
		return fmt.Errorf("build Kafka consumer: %v", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			fmt.Printf("error: close consumer: %v\n", err)
		}
	}()

	for !isCancelled(ctx) {
		edit, err := consumer.Consume(ctx)
		if err != nil {
			fmt.Printf("error: consume: %v", err)
			<-time.After(cfg.RetryDelay)
			continue
		}

		if err := tl.CommitEdit(edit); err != nil {
			fmt.Printf("error: commit edit from %q: %v\n", edit.Author, err)
			continue
		}

		if err := consumer.Commit(ctx); err != nil {
			return fmt.Errorf("commit offset: %v", err)
		}
	}

	return nil
}

type kafkaConsumer struct {
	kc *kafka.Consumer
}

func (kc kafkaConsumer) Close() error {
	return kc.kc.Close()
}

func (kc kafkaConsumer) Consume(ctx context.Context) (events.Edit, error) {
	for !isCancelled(ctx) {
		event := kc.kc.Poll(50)
		switch event := event.(type) {
		case *kafka.Message:
			edit := events.Edit{}
			if err := json.Unmarshal(event.Value, &edit); err != nil {
				fmt.Printf("error: consume: %v\n", err)
				continue
			}
			return edit, nil
		case kafka.PartitionEOF:
			<-time.After(time.Second)
		case kafka.Error:
			fmt.Printf("error: consume: %v\n", event.Error())
		}
	}

	return events.Edit{}, ctx.Err()
}

func (kc kafkaConsumer) Commit(_ context.Context) error {
	_, err := kc.kc.Commit()
	if err != nil {
		return err
	}
	return nil
}

func buildConsumer(cfg appConfig) (kafkaConsumer, error) {

	kc, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"group.id":           cfg.ConsumerGroupID,
		"auto.offset.reset":  "latest",
		"enable.auto.commit": "false",
	})
	if err != nil {
		return kafkaConsumer{}, fmt.Errorf("create Kafka consumer: %w", err)
	}

	err = kc.Subscribe(cfg.ConsumeTopic, func(c *kafka.Consumer, e kafka.Event) error {
		fmt.Printf("rebalance: %v\n", e)
		return nil
	})
	if err != nil {
		return kafkaConsumer{}, fmt.Errorf("subscribe: %w", err)
	}

	return kafkaConsumer{
		kc: kc,
	}, nil
}

func isCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
