// Package sqlite is the embedded store backend, built on the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "modernc.org/sqlite"

	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/store/migration"
	"github.com/kbukum/paiflow/workflow"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	store.RegisterFactory(store.DriverSQLite, func(ctx context.Context, cfg store.Config, log *logger.Logger) (store.Store, error) {
		return Open(ctx, cfg.DSN, log)
	})
}

// Store is a store.Store backed by SQLite.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at dsn and migrates it. Use
// ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite allows one writer, and each :memory: connection is its own
	// database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: pragma: %w", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, log), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// Migrate applies the embedded schema migrations to db.
func Migrate(db *sql.DB) error {
	if err := migration.Up(db, migrationsFS, "migrations", driver); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

func driver(db *sql.DB) (database.Driver, error) {
	return migratesqlite.WithInstance(db, &migratesqlite.Config{})
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) CreateWorkflow(ctx context.Context, wf *workflow.Workflow) error {
	store.PrepareCreate(wf, store.Now())
	graph, err := store.EncodeGraph(wf.Graph)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, description, engine_type, flow_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		wf.ID, wf.Name, wf.Description, wf.EngineType, graph,
		wf.CreatedAt.UnixMilli(), wf.UpdatedAt.UnixMilli(),
	)
	return store.FromDatabase(err, "workflow", wf.ID)
}

const workflowColumns = `id, name, description, engine_type, flow_data, created_at, updated_at`

func (s *Store) GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workflowColumns+` FROM workflows WHERE id = ?`, id)
	wf, err := scanWorkflow(row)
	if err != nil {
		return nil, store.FromDatabase(err, "workflow", id)
	}
	return wf, nil
}

func (s *Store) ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+workflowColumns+` FROM workflows ORDER BY created_at, rowid`)
	if err != nil {
		return nil, store.FromDatabase(err, "workflow", "")
	}
	defer rows.Close()

	out := []*workflow.Workflow{}
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, store.FromDatabase(err, "workflow", "")
		}
		out = append(out, wf)
	}
	return out, store.FromDatabase(rows.Err(), "workflow", "")
}

func (s *Store) UpdateWorkflow(ctx context.Context, wf *workflow.Workflow) error {
	graph, err := store.EncodeGraph(wf.Graph)
	if err != nil {
		return err
	}
	now := store.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE workflows SET name = ?, description = ?, engine_type = ?, flow_data = ?, updated_at = ?
		WHERE id = ?`,
		wf.Name, wf.Description, wf.EngineType, graph, now.UnixMilli(), wf.ID,
	)
	if err := affected(res, err, wf.ID); err != nil {
		return err
	}
	var created int64
	if err := s.db.QueryRowContext(ctx, `SELECT created_at FROM workflows WHERE id = ?`, wf.ID).Scan(&created); err != nil {
		return store.FromDatabase(err, "workflow", wf.ID)
	}
	wf.CreatedAt = fromMillis(created)
	wf.UpdatedAt = now
	return nil
}

func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	return affected(res, err, id)
}

func (s *Store) Insert(ctx context.Context, rec *workflow.ExecutionRecord) (string, error) {
	store.PrepareInsert(rec, store.Now())
	results, err := store.EncodeNodeResults(rec.NodeResults)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO executions (id, workflow_id, engine, input_data, output_data, status, node_results, error_message, duration, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.WorkflowID, rec.Engine, store.NullJSON(rec.Input), store.NullJSON(rec.Output),
		string(rec.Status), results, rec.ErrorMessage, rec.Duration, rec.ExecutedAt.UnixMilli(),
	)
	if err != nil {
		return "", store.FromDatabase(err, "execution", rec.ID)
	}
	return rec.ID, nil
}

const recordColumns = `id, workflow_id, engine, input_data, output_data, status, node_results, error_message, duration, executed_at`

func (s *Store) GetRecord(ctx context.Context, id string) (*workflow.ExecutionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM executions WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, store.FromDatabase(err, "execution", id)
	}
	return rec, nil
}

func (s *Store) ListRecords(ctx context.Context, workflowID string, limit int) ([]*workflow.ExecutionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM executions
		WHERE workflow_id = ? ORDER BY executed_at DESC, rowid DESC LIMIT ?`,
		workflowID, store.Limit(limit),
	)
	if err != nil {
		return nil, store.FromDatabase(err, "execution", "")
	}
	defer rows.Close()

	out := []*workflow.ExecutionRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, store.FromDatabase(err, "execution", "")
		}
		out = append(out, rec)
	}
	return out, store.FromDatabase(rows.Err(), "execution", "")
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row scanner) (*workflow.Workflow, error) {
	var (
		wf               workflow.Workflow
		graph            string
		created, updated int64
	)
	if err := row.Scan(&wf.ID, &wf.Name, &wf.Description, &wf.EngineType, &graph, &created, &updated); err != nil {
		return nil, err
	}
	g, err := store.DecodeGraph(graph)
	if err != nil {
		return nil, err
	}
	wf.Graph = g
	wf.CreatedAt = fromMillis(created)
	wf.UpdatedAt = fromMillis(updated)
	return &wf, nil
}

func scanRecord(row scanner) (*workflow.ExecutionRecord, error) {
	var (
		rec           workflow.ExecutionRecord
		input, output *string
		status        string
		results       string
		executed      int64
	)
	if err := row.Scan(&rec.ID, &rec.WorkflowID, &rec.Engine, &input, &output, &status,
		&results, &rec.ErrorMessage, &rec.Duration, &executed); err != nil {
		return nil, err
	}
	nr, err := store.DecodeNodeResults(results)
	if err != nil {
		return nil, err
	}
	rec.Input = store.RawJSON(input)
	rec.Output = store.RawJSON(output)
	rec.Status = workflow.Status(status)
	rec.NodeResults = nr
	rec.ExecutedAt = fromMillis(executed)
	return &rec, nil
}

func affected(res sql.Result, err error, id string) error {
	if err != nil {
		return store.FromDatabase(err, "workflow", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.FromDatabase(err, "workflow", id)
	}
	if n == 0 {
		return store.WorkflowNotFound(id)
	}
	return nil
}

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
