package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/database"
	"github.com/emergency0committee-hub/eec-backend/internal/logger"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
)

func main() {
	var count int
	var rotating bool
	flag.IntVar(&count, "count", 10, "Number of one-time codes to generate")
	flag.BoolVar(&rotating, "rotating", false, "Print the current rotating code instead of generating one-time codes")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	accessService := service.NewAccessService(repository.NewAccessCodeRepository(pool), cfg, log)

	if rotating {
		current, next, err := accessService.CurrentRotating()
		if err != nil {
			log.Fatal().Err(err).Msg("Rotating codes are not configured (set ROTATING_CODE_SEED)")
		}
		fmt.Printf("Current: %s  (valid until %s)\n", current.Code, current.ValidUntil.Format(time.RFC3339))
		fmt.Printf("Next:    %s\n", next.Code)
		return
	}

	codes, err := accessService.GenerateBatch(ctx, count)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate codes")
	}

	fmt.Printf("=== %d One-Time Codes ===\n", len(codes))
	for _, c := range codes {
		fmt.Println(c.Code)
	}
}
