package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"tennis-elo-service/elo"
	"tennis-elo-service/utils"
)

// Dataset source kinds.
const (
	SourceKaggle = "kaggle"
	SourceS3     = "s3"
)

// DatasetConfig selects where the raw match CSV comes from and which
// schema normalizer to run over it.
type DatasetConfig struct {
	Source        string // kaggle | s3
	Schema        string // daily_pull | atp_tour
	DataDir       string
	KaggleUser    string
	KaggleKey     string
	KaggleDataset string // e.g. "dissfya/atp-tennis-2000-2023daily-pull"
	S3Key         string
}

// FetchDataset downloads the configured dataset and returns the path to
// the extracted CSV file.
func FetchDataset(ctx context.Context, cfg DatasetConfig) (string, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if err := os.MkdirAll(cfg.DataDir, os.ModePerm); err != nil {
		return "", err
	}

	switch cfg.Source {
	case SourceS3:
		return fetchFromS3(ctx, cfg)
	case SourceKaggle, "":
		return fetchFromKaggle(ctx, cfg)
	}
	return "", fmt.Errorf("unknown dataset source %q", cfg.Source)
}

func fetchFromKaggle(ctx context.Context, cfg DatasetConfig) (string, error) {
	if cfg.KaggleDataset == "" {
		return "", errors.New("KAGGLE_DATASET not configured")
	}

	url := fmt.Sprintf("https://www.kaggle.com/api/v1/datasets/download/%s", cfg.KaggleDataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(cfg.KaggleUser, cfg.KaggleKey)

	log.Printf("Downloading dataset: %s", cfg.KaggleDataset)
	resp, err := utils.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dataset download returned status %d", resp.StatusCode)
	}

	zipPath := filepath.Join(cfg.DataDir, "dataset.zip")
	out, err := os.Create(zipPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", err
	}
	out.Close()

	if err := utils.Unzip(zipPath, cfg.DataDir); err != nil {
		return "", fmt.Errorf("failed to extract dataset: %w", err)
	}
	if err := os.Remove(zipPath); err != nil {
		log.Printf("⚠️ Could not remove %s: %v", zipPath, err)
	}

	return findCSV(cfg.DataDir)
}

func fetchFromS3(ctx context.Context, cfg DatasetConfig) (string, error) {
	if cfg.S3Key == "" {
		return "", errors.New("DATASET_S3_KEY not configured")
	}
	destPath := filepath.Join(cfg.DataDir, filepath.Base(cfg.S3Key))
	if err := utils.DownloadDatasetObject(ctx, cfg.S3Key, destPath); err != nil {
		return "", err
	}
	log.Printf("Dataset snapshot downloaded: %s", destPath)
	return destPath, nil
}

func findCSV(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", errors.New("no CSV file found in downloaded dataset")
}

// LoadRows reads a header-keyed CSV into raw rows. Rows with the wrong
// field count are tolerated rather than failing the whole file.
func LoadRows(csvPath string) ([]RawRow, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(RawRow, len(header))
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = field
			}
		}
		rows = append(rows, row)
	}
	log.Printf("Loaded %d rows from %s", len(rows), csvPath)
	return rows, nil
}

// NormalizeRows runs the normalizer over every row, dropping and counting
// skipped rows, and returns the inputs sorted ascending by date — the
// order the engine requires.
func NormalizeRows(normalizer Normalizer, rows []RawRow) ([]elo.MatchInput, int) {
	inputs := make([]elo.MatchInput, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		in, err := normalizer.Normalize(row)
		if err != nil {
			skipped++
			continue
		}
		inputs = append(inputs, *in)
	}
	SortByDate(inputs)
	log.Printf("Extracted %d valid matches (skipped %d)", len(inputs), skipped)
	return inputs, skipped
}
