package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"tennis-elo-service/elo"
	"tennis-elo-service/pipeline"

	"github.com/gofiber/fiber/v2"
)

// UpdateService orchestrates one ingestion run: fetch the dataset,
// normalize and sort the rows, replay them through the engine. Runs are
// single-writer; the running flag rejects a second concurrent run.
type UpdateService struct {
	Engine  *elo.Engine
	Dataset pipeline.DatasetConfig

	running atomic.Bool
}

func NewUpdateService(engine *elo.Engine, dataset pipeline.DatasetConfig) *UpdateService {
	return &UpdateService{Engine: engine, Dataset: dataset}
}

// RunUpdate executes a full ingestion run and returns the number of
// committed matches.
func (s *UpdateService) RunUpdate(ctx context.Context) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, fmt.Errorf("an update run is already in progress")
	}
	defer s.running.Store(false)

	log.Println("Starting ratings update run...")

	csvPath, err := pipeline.FetchDataset(ctx, s.Dataset)
	if err != nil {
		return 0, fmt.Errorf("dataset fetch failed: %w", err)
	}

	rows, err := pipeline.LoadRows(csvPath)
	if err != nil {
		return 0, fmt.Errorf("dataset load failed: %w", err)
	}

	normalizer, err := pipeline.NormalizerForSchema(s.Dataset.Schema)
	if err != nil {
		return 0, err
	}
	inputs, skipped := pipeline.NormalizeRows(normalizer, rows)

	processed, err := s.Engine.ProcessBatch(ctx, inputs)
	if err != nil {
		return processed, fmt.Errorf("batch processing failed after %d matches: %w", processed, err)
	}

	if err := os.Remove(csvPath); err != nil {
		log.Printf("⚠️ Could not remove %s: %v", csvPath, err)
	}

	log.Printf("✅ Update run complete: %d matches processed, %d rows skipped", processed, skipped)
	return processed, nil
}

// TriggerUpdate kicks an ingestion run in the background. Returns 409 when
// a run is already in progress — concurrent ingestion is not supported.
func (s *UpdateService) TriggerUpdate(c *fiber.Ctx) error {
	if s.running.Load() {
		return c.Status(409).JSON(fiber.Map{"error": "update already running"})
	}

	go func() {
		if _, err := s.RunUpdate(context.Background()); err != nil {
			log.Printf("❌ Update run failed: %v", err)
		}
	}()

	return c.Status(202).JSON(fiber.Map{"status": "update started"})
}
