package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/zavvdev/circular-history/internal/config"
	"github.com/zavvdev/circular-history/internal/events"
	"github.com/zavvdev/circular-history/internal/history"
)

type appConfig struct {
	BootstrapServers string `config_key:"kafka.producer.bootstrap-servers"`
	ProduceTopic     string `config_key:"kafka.producer.topic"`
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

	producer, err := buildProducer(cfg)
	if err != nil {
		return fmt.Errorf("build Kafka producer: %v", err)
	}

	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer producer.Close()

		docIDs := []string{
			"faa108f9-0815-4035-89c4-403b4f2f7948",
			"e62358f4-47bb-4a45-9db3-a1c5ad6cdab2",
			"139b70a3-60e8-47a0-9b7d-d8a369d18417",
			"432556b3-0a3b-4dbb-83fc-187115228f67",
		}
		authors := []string{
			"alix",
			"bo",
			"casey",
		}

		const maxRPS = 1000
		sends, err := history.New[time.Time](maxRPS, history.Object)
		if err != nil {
			panic(fmt.Errorf("failed to build send-timestamp history: %v", err))
		}

		for !isCancelled(ctx) {

			// Keep publishing "naturally" at ~90% of the rate limit so the
			// limiter engages without sending in predictable batches.
			naturalDelay := (rand.Int63n(time.Second.Nanoseconds()/maxRPS) * 9) / 10
			<-time.After(time.Duration(naturalDelay))

			docID := docIDs[rand.Int()%len(docIDs)]
			author := authors[rand.Int()%len(authors)]
			body := fmt.Sprintf("[%v]: revision of %q by %q", time.Now(), docID, author)

			msgValue, err := json.Marshal(events.Edit{
				DocID:  docID,
				Author: author,
				Body:   body,
			})
			if err != nil {
				panic(fmt.Errorf("failed to marshal events.Edit to JSON: %v", err))
			}

			timestamp := time.Now()

			if sends.Len() == maxRPS {
				anchor := oldestSend(sends)
				nextAllowedSend := anchor.Add(time.Second)
				delay := nextAllowedSend.Sub(timestamp)
				if delay > 0 {
					fmt.Printf("info: delaying %v for rate limit\n", delay)
					<-time.After(delay)
				}
			}

			err = producer.Produce(&kafka.Message{
				TopicPartition: kafka.TopicPartition{
					Topic: &cfg.ProduceTopic,
				},
				Value:     msgValue,
				Timestamp: timestamp,
			}, nil)
			if err != nil {
				fmt.Printf("error: produce edit: %v", err)
				continue
			}

			if _, err := sends.Commit(timestamp); err != nil {
				panic(fmt.Errorf("failed to record send timestamp: %v", err))
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range producer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					fmt.Printf("error: produce edit: %v\n", ev.TopicPartition.Error)
				}
			}
		}
	}()

	wg.Wait()

	return nil
}

// oldestSend reads the oldest surviving send timestamp. The producer never
// navigates sends, so the slot after the cursor's is the oldest once the
// buffer has wrapped.
func oldestSend(sends *history.Buffer[time.Time]) time.Time {
	slots := sends.Dump(false)
	return slots[(sends.CurrentIndex()+1)%sends.Cap()].Value
}

func buildProducer(cfg appConfig) (*kafka.Producer, error) {
	kp, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.BootstrapServers,
	})
	if err != nil {
		return nil, fmt.Errorf("create Kafka producer: %w", err)
	}
	return kp, nil
}

func isCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
