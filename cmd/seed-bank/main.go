package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/database"
	"github.com/emergency0committee-hub/eec-backend/internal/logger"
	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
)

// seedFile is the on-disk shape of the question bank.
type seedFile struct {
	Sections []seedSection `json:"sections"`
}

type seedSection struct {
	Code      string            `json:"code"`
	Title     string            `json:"title"`
	Kind      model.SectionKind `json:"kind"`
	Questions []seedQuestion    `json:"questions"`
}

type seedQuestion struct {
	Text         string          `json:"text"`
	Category     string          `json:"category,omitempty"`
	Area         string          `json:"area,omitempty"`
	Domain       string          `json:"domain,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
	CorrectIndex int             `json:"correct_index,omitempty"`
}

func main() {
	var file string
	flag.StringVar(&file, "file", "seed/bank.json", "Path to the bank seed file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse seed file")
	}
	if len(seed.Sections) == 0 {
		log.Fatal().Msg("Seed file has no sections")
	}

	sections := make([]model.Section, 0, len(seed.Sections))
	var questions []model.Question

	for i, sec := range seed.Sections {
		section := model.Section{
			ID:       uuid.New(),
			Code:     sec.Code,
			Title:    sec.Title,
			Kind:     sec.Kind,
			OrderNum: i + 1,
		}
		sections = append(sections, section)

		for j, q := range sec.Questions {
			questions = append(questions, model.Question{
				ID:           uuid.New(),
				SectionID:    section.ID,
				Text:         q.Text,
				Kind:         sec.Kind,
				Category:     q.Category,
				Area:         q.Area,
				Domain:       q.Domain,
				Options:      q.Options,
				CorrectIndex: q.CorrectIndex,
				OrderNum:     j + 1,
			})
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	bankRepo := repository.NewBankRepository(pool)
	if err := bankRepo.ReplaceBank(ctx, sections, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to replace bank")
	}

	fmt.Printf("Seeded %d sections, %d questions\n", len(sections), len(questions))
}
