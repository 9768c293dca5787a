package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/el-pablos/TelegramME-sub000/internal/scrape"
)

// Run is one recorded scrape or distribute operation.
type Run struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	PanelHost  string     `json:"panel_host"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Scraped    int        `json:"scraped"`
	Skipped    int        `json:"skipped"`
	Errored    int        `json:"errored"`
}

// RunResult is one per-server outcome inside a run.
type RunResult struct {
	RunID      string `json:"run_id"`
	ServerName string `json:"server_name"`
	ServerUUID string `json:"server_uuid"`
	FileName   string `json:"file_name"`
	FoundPath  string `json:"found_path"`
	ByteSize   int    `json:"byte_size"`
}

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (ar *AuditRepository) StartRun(kind, panelHost string) (string, error) {
	runID := uuid.NewString()
	_, err := ar.db.Exec(`
		INSERT INTO runs (id, kind, panel_host) VALUES (?, ?, ?)
	`, runID, kind, panelHost)
	if err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return runID, nil
}

func (ar *AuditRepository) RecordResult(runID string, result scrape.ScrapeResult) error {
	_, err := ar.db.Exec(`
		INSERT INTO run_results (run_id, server_name, server_uuid, file_name, local_path, found_path, byte_size)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, result.ServerName, result.ServerUUID, result.FileName, result.LocalPath, result.FoundPath, result.ByteSize)
	if err != nil {
		return fmt.Errorf("failed to record run result: %w", err)
	}
	return nil
}

func (ar *AuditRepository) FinishRun(runID string, counters scrape.Counters) error {
	_, err := ar.db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP,
		    scraped = ?,
		    skipped = ?,
		    errored = ?
		WHERE id = ?
	`, counters.Scraped, counters.Skipped, counters.Errored, runID)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

func (ar *AuditRepository) RecentRuns(limit int) ([]Run, error) {
	rows, err := ar.db.Query(`
		SELECT id, kind, panel_host, started_at, finished_at, scraped, skipped, errored
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var finishedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.Kind, &run.PanelHost, &run.StartedAt, &finishedAt, &run.Scraped, &run.Skipped, &run.Errored); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (ar *AuditRepository) ResultsForRun(runID string) ([]RunResult, error) {
	rows, err := ar.db.Query(`
		SELECT run_id, server_name, server_uuid, file_name, found_path, byte_size
		FROM run_results
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var result RunResult
		if err := rows.Scan(&result.RunID, &result.ServerName, &result.ServerUUID, &result.FileName, &result.FoundPath, &result.ByteSize); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
