package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"postbridge/config"
	"postbridge/internal/domain/dto"
	"postbridge/internal/domain/repository/broker"
	redisbroker "postbridge/internal/infrastructure/broker"
	"postbridge/pkg/logger"
)

// HandleWatch consumes ingestion events as a member of the configured group
// and prints one line per stored file.
func HandleWatch(args []string) {
	if len(args) < 3 {
		ExitOnError(errors.New("at least 1 arguments expected\nuse help command for more information"))
	}

	cfg, err := config.Load(args[2])
	if err != nil {
		ExitOnError(err)
	}

	logger.InitGlobalLogger(&cfg.Logger)

	if !cfg.BrokerEnabled() {
		ExitOnError(errors.New("BROKER_URI is not set"))
	}

	client, err := redisbroker.NewClient(cfg.BrokerConfig)
	if err != nil {
		ExitOnError(err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := "watch-" + uuid.NewString()[:8]

	var receiver broker.Receiver = redisbroker.NewReceiver(client)

	messages, err := receiver.Messages(ctx, consumer)
	if err != nil {
		ExitOnError(err)
	}

	for msg := range messages {
		var ev dto.IngestEvent
		if err := json.Unmarshal([]byte(msg.Body()), &ev); err != nil {
			logger.Warn("skipping malformed ingest event", "id", msg.ID(), "err", err)
		} else {
			fmt.Printf("%s %s %dx%d %s\n", ev.File.ID, ev.File.FileType, ev.File.Width, ev.File.Height, ev.File.URL) //nolint
		}

		if err := msg.Ack(); err != nil {
			logger.Error("failed to ack ingest event", "id", msg.ID(), "err", err)
		}
	}
}
