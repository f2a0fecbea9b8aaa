package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"osprey/api/grpcserver"
	"osprey/domain/book"
	"osprey/infra/feed"
	"osprey/infra/journal"
	"osprey/jobs/broadcaster"
	"osprey/service"
)

type config struct {
	listenAddr   string
	storage      string
	capacity     int
	journalDir   string
	brokers      []string
	eventsTopic  string
	intentsTopic string
	consumerGrp  string
	logLevel     string
}

func loadConfig() config {
	return config{
		listenAddr:   getEnv("OSPREY_LISTEN_ADDR", ":9090"),
		storage:      getEnv("OSPREY_STORAGE", "intrusive"),
		capacity:     getEnvInt("OSPREY_CAPACITY", 1<<20),
		journalDir:   getEnv("OSPREY_JOURNAL_DIR", "./journal"),
		brokers:      splitNonEmpty(getEnv("OSPREY_KAFKA_BROKERS", "")),
		eventsTopic:  getEnv("OSPREY_EVENTS_TOPIC", "book.events"),
		intentsTopic: getEnv("OSPREY_INTENTS_TOPIC", "book.intents"),
		consumerGrp:  getEnv("OSPREY_CONSUMER_GROUP", "osprey-matcher"),
		logLevel:     getEnv("OSPREY_LOG_LEVEL", "info"),
	}
}

func main() {
	cfg := loadConfig()

	level, err := zerolog.ParseLevel(cfg.logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	store, err := buildStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	svc := service.New(store, log)

	jnl, err := journal.Open(cfg.journalDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.journalDir).Msg("journal init failed")
	}
	defer jnl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.brokers) > 0 {
		bc, err := broadcaster.New(svc.Events(), jnl, cfg.brokers, cfg.eventsTopic, log)
		if err != nil {
			log.Fatal().Err(err).Msg("broadcaster init failed")
		}
		bc.Start()
		defer func() {
			if err := bc.Stop(); err != nil {
				log.Error().Err(err).Msg("broadcaster stop failed")
			}
		}()

		reader := feed.NewReader(cfg.brokers, cfg.consumerGrp, cfg.intentsTopic, svc, log)
		go func() {
			if err := reader.Run(ctx); err != nil {
				log.Error().Err(err).Msg("intent feed stopped")
			}
		}()
	} else {
		log.Warn().Msg("no kafka brokers configured, journaling events locally")
		go drainToJournal(ctx, svc, jnl, log)
	}

	lis, err := net.Listen("tcp", cfg.listenAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.listenAddr).Msg("listen failed")
	}
	srv := grpcserver.NewGRPCServer(svc, log)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		srv.GracefulStop()
	}()

	log.Info().
		Str("addr", cfg.listenAddr).
		Str("storage", cfg.storage).
		Msg("order entry listening")
	if err := srv.Serve(lis); err != nil {
		log.Fatal().Err(err).Msg("serve failed")
	}
	log.Info().Interface("stats", svc.Stats()).Msg("stopped")
}

func buildStorage(cfg config) (book.Storage, error) {
	switch cfg.storage {
	case "intrusive":
		return book.NewIntrusiveStorage(cfg.capacity), nil
	case "slab":
		return book.NewIntrusiveStorageGrowable(), nil
	case "tree":
		return book.NewTreeStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.storage)
	}
}

// drainToJournal keeps the event queue bounded when no broker is
// configured. Entries stay pending for a later broadcaster run.
func drainToJournal(ctx context.Context, svc *service.OrderService, jnl *journal.Journal, log zerolog.Logger) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				ev, ok := svc.Events().TryDequeue()
				if !ok {
					break
				}
				if err := jnl.Append(ev); err != nil {
					log.Error().Err(err).Uint64("seq", ev.Seq).Msg("journal append failed")
					break
				}
			}
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
