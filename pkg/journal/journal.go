// Package journal хранит историю запусков агента в SQLite.
//
// Одна строка на запуск: тема, получатель, статус и финальный ответ агента.
// Журнал опционален (journal.path в config.yaml).
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Status - состояние запуска.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// ErrNotFound возвращается, если запуска с таким id нет.
var ErrNotFound = errors.New("run not found")

// Run - одна запись журнала.
type Run struct {
	ID         string
	Topic      string
	Recipient  string
	Status     Status
	Output     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // Zero пока запуск идёт
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	topic       TEXT NOT NULL,
	recipient   TEXT NOT NULL,
	status      TEXT NOT NULL,
	output      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at);
`

// Фиксированная ширина, чтобы ORDER BY по строке совпадал с порядком во времени.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal - обёртка над *sql.DB.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open открывает (или создаёт) базу по пути path и применяет схему.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// SQLite не любит параллельных писателей
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close закрывает базу.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Start записывает новый запуск в статусе running и возвращает его.
func (j *Journal) Start(ctx context.Context, topic, recipient string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Topic:     topic,
		Recipient: recipient,
		Status:    StatusRunning,
		StartedAt: j.now().UTC(),
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, topic, recipient, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Topic, run.Recipient, string(run.Status), run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish фиксирует результат запуска. runErr != nil переводит запуск в failed.
func (j *Journal) Finish(ctx context.Context, id, output string, runErr error) error {
	status := StatusDone
	errText := ""
	if runErr != nil {
		status = StatusFailed
		errText = runErr.Error()
	}

	res, err := j.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, output = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), output, errText, j.now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get возвращает запуск по id.
func (j *Journal) Get(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, topic, recipient, status, output, error, started_at, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// List возвращает последние limit запусков, новые первыми.
// limit <= 0 означает "все".
func (j *Journal) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // в SQLite LIMIT -1 = без ограничения
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, topic, recipient, status, output, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run               Run
		status            string
		started, finished string
	)
	if err := s.Scan(&run.ID, &run.Topic, &run.Recipient, &status, &run.Output, &run.Error, &started, &finished); err != nil {
		return Run{}, err
	}
	run.Status = Status(status)

	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at of %s: %w", run.ID, err)
	}
	if finished != "" {
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return Run{}, fmt.Errorf("parse finished_at of %s: %w", run.ID, err)
		}
	}
	return run, nil
}
