// Package postgres is the server store backend on a pgx connection pool.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/store/migration"
	"github.com/kbukum/paiflow/workflow"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	store.RegisterFactory(store.DriverPostgres, func(ctx context.Context, cfg store.Config, log *logger.Logger) (store.Store, error) {
		return Open(ctx, cfg.DSN, int32(cfg.MaxOpenConns), log)
	})
}

// Store is a store.Store backed by PostgreSQL.
type Store struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn, applies migrations and returns the store.
func Open(ctx context.Context, dsn string, maxConns int32, log *logger.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if err := Migrate(pool); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool, log), nil
}

// New wraps an already migrated pool.
func New(pool *pgxpool.Pool, log *logger.Logger) *Store {
	return &Store{db: pool, log: log}
}

// Migrate applies the embedded schema migrations through a database/sql
// view of pool.
func Migrate(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := migration.Up(db, migrationsFS, "migrations", driver); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

func driver(db *sql.DB) (database.Driver, error) {
	return migratepgx.WithInstance(db, &migratepgx.Config{})
}

func (s *Store) CreateWorkflow(ctx context.Context, wf *workflow.Workflow) error {
	store.PrepareCreate(wf, store.Now())
	graph, err := store.EncodeGraph(wf.Graph)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO workflows (id, name, description, engine_type, flow_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`,
		wf.ID, wf.Name, wf.Description, wf.EngineType, graph, wf.CreatedAt, wf.UpdatedAt,
	)
	return store.FromDatabase(err, "workflow", wf.ID)
}

const workflowColumns = `id, name, description, engine_type, flow_data::text, created_at, updated_at`

func (s *Store) GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error) {
	row := s.db.QueryRow(ctx, `SELECT `+workflowColumns+` FROM workflows WHERE id = $1`, id)
	wf, err := scanWorkflow(row)
	if err != nil {
		return nil, store.FromDatabase(err, "workflow", id)
	}
	return wf, nil
}

func (s *Store) ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error) {
	rows, err := s.db.Query(ctx, `SELECT `+workflowColumns+` FROM workflows ORDER BY created_at, seq`)
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
	err = s.db.QueryRow(ctx, `
		UPDATE workflows SET name = $1, description = $2, engine_type = $3, flow_data = $4::jsonb, updated_at = $5
		WHERE id = $6 RETURNING created_at`,
		wf.Name, wf.Description, wf.EngineType, graph, now, wf.ID,
	).Scan(&wf.CreatedAt)
	if err != nil {
		return store.FromDatabase(err, "workflow", wf.ID)
	}
	wf.CreatedAt = wf.CreatedAt.UTC()
	wf.UpdatedAt = now
	return nil
}

func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return store.FromDatabase(err, "workflow", id)
	}
	if tag.RowsAffected() == 0 {
		return store.WorkflowNotFound(id)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, rec *workflow.ExecutionRecord) (string, error) {
	store.PrepareInsert(rec, store.Now())
	results, err := store.EncodeNodeResults(rec.NodeResults)
	if err != nil {
		return "", err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO executions (id, workflow_id, engine, input_data, output_data, status, node_results, error_message, duration, executed_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7::jsonb, $8, $9, $10)`,
		rec.ID, rec.WorkflowID, rec.Engine, store.NullJSON(rec.Input), store.NullJSON(rec.Output),
		string(rec.Status), results, rec.ErrorMessage, rec.Duration, rec.ExecutedAt,
	)
	if err != nil {
		return "", store.FromDatabase(err, "execution", rec.ID)
	}
	return rec.ID, nil
}

const recordColumns = `id, workflow_id, engine, input_data::text, output_data::text, status, node_results::text, error_message, duration, executed_at`

func (s *Store) GetRecord(ctx context.Context, id string) (*workflow.ExecutionRecord, error) {
	row := s.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM executions WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, store.FromDatabase(err, "execution", id)
	}
	return rec, nil
}

func (s *Store) ListRecords(ctx context.Context, workflowID string, limit int) ([]*workflow.ExecutionRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+recordColumns+` FROM executions
		WHERE workflow_id = $1 ORDER BY executed_at DESC, seq DESC LIMIT $2`,
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

func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func scanWorkflow(row pgx.Row) (*workflow.Workflow, error) {
	var (
		wf    workflow.Workflow
		graph string
	)
	if err := row.Scan(&wf.ID, &wf.Name, &wf.Description, &wf.EngineType, &graph, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
		return nil, err
	}
	g, err := store.DecodeGraph(graph)
	if err != nil {
		return nil, err
	}
	wf.Graph = g
	wf.CreatedAt = wf.CreatedAt.UTC()
	wf.UpdatedAt = wf.UpdatedAt.UTC()
	return &wf, nil
}

func scanRecord(row pgx.Row) (*workflow.ExecutionRecord, error) {
	var (
		rec           workflow.ExecutionRecord
		input, output *string
		status        string
		results       string
	)
	if err := row.Scan(&rec.ID, &rec.WorkflowID, &rec.Engine, &input, &output, &status,
		&results, &rec.ErrorMessage, &rec.Duration, &rec.ExecutedAt); err != nil {
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
	rec.ExecutedAt = rec.ExecutedAt.UTC()
	return &rec, nil
}
