package task

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/errors"
)

// SQLiteStore implements Store on a SQLite database. The version
// compare-and-swap runs as a conditional UPDATE, so concurrent writers
// are serialized by the database rather than a process-local lock.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "create data directory", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "open task database", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// migrate creates the task_instances table and its query indexes
func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS task_instances (
			instance_id      TEXT PRIMARY KEY,
			template_id      TEXT NOT NULL,
			template_task_id TEXT NOT NULL,
			anchor_id        TEXT NOT NULL,
			cycle_key        TEXT NOT NULL DEFAULT '',
			title            TEXT NOT NULL,
			category         TEXT NOT NULL,
			due_date         DATETIME,
			status           TEXT NOT NULL,
			snoozed_until    DATETIME,
			completed_at     DATETIME,
			created_at       DATETIME NOT NULL,
			version          INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_instances_anchor_status
			ON task_instances(anchor_id, status);
		CREATE INDEX IF NOT EXISTS idx_instances_due
			ON task_instances(due_date);
		CREATE INDEX IF NOT EXISTS idx_instances_snoozed
			ON task_instances(status, snoozed_until);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(errors.ErrCodeStoreCorrupt, "migrate task database", err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection, for health checks
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const instanceColumns = `instance_id, template_id, template_task_id, anchor_id, cycle_key,
	title, category, due_date, status, snoozed_until, completed_at, created_at, version`

// Create inserts a new instance
func (s *SQLiteStore) Create(ctx context.Context, inst *Instance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_instances (`+instanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.InstanceID.String(),
		inst.TemplateID,
		inst.TemplateTaskID,
		inst.AnchorID,
		inst.CycleKey.String(),
		inst.Title,
		inst.Category.String(),
		nullTime(inst.DueDate),
		inst.Status.String(),
		nullTime(inst.SnoozedUntil),
		nullTime(inst.CompletedAt),
		inst.CreatedAt.UTC(),
		inst.Version,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return errors.New(errors.ErrCodeInstanceExists, fmt.Sprintf("instance %s already exists", inst.InstanceID))
		}
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "insert task instance", err)
	}
	return nil
}

// Get retrieves an instance by ID
func (s *SQLiteStore) Get(ctx context.Context, id domain.InstanceID) (*Instance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+instanceColumns+`
		FROM task_instances WHERE instance_id = ?`, id.String())

	inst, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewInstanceNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "read task instance", err)
	}
	return inst, nil
}

// Update performs a compare-and-swap on the version counter
func (s *SQLiteStore) Update(ctx context.Context, inst *Instance, expectedVersion int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE task_instances
		SET status = ?, snoozed_until = ?, completed_at = ?, version = ?
		WHERE instance_id = ? AND version = ?`,
		inst.Status.String(),
		nullTime(inst.SnoozedUntil),
		nullTime(inst.CompletedAt),
		expectedVersion+1,
		inst.InstanceID.String(),
		expectedVersion,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "update task instance", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "update task instance", err)
	}
	if affected == 1 {
		return nil
	}

	// No row matched: distinguish a missing instance from a stale version.
	var current int64
	err = s.db.QueryRowContext(ctx,
		`SELECT version FROM task_instances WHERE instance_id = ?`,
		inst.InstanceID.String()).Scan(&current)
	if err == sql.ErrNoRows {
		return errors.NewInstanceNotFoundError(inst.InstanceID.String())
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "read task instance version", err)
	}
	return errors.NewConcurrentModificationError(inst.InstanceID.String(), expectedVersion, current)
}

// ListByAnchor returns all instances for an anchor ordered by due date
// then creation time
func (s *SQLiteStore) ListByAnchor(ctx context.Context, anchorID string) ([]*Instance, error) {
	return s.list(ctx, `
		SELECT `+instanceColumns+`
		FROM task_instances
		WHERE anchor_id = ?
		ORDER BY due_date IS NULL, due_date, created_at, instance_id`, anchorID)
}

// ListByAnchorCycle returns the instances of one routine cycle
func (s *SQLiteStore) ListByAnchorCycle(ctx context.Context, anchorID string, cycleKey domain.CycleKey) ([]*Instance, error) {
	return s.list(ctx, `
		SELECT `+instanceColumns+`
		FROM task_instances
		WHERE anchor_id = ? AND cycle_key = ?
		ORDER BY due_date IS NULL, due_date, created_at, instance_id`, anchorID, cycleKey.String())
}

// ListExpiredSnoozes returns snoozed instances whose window has ended
func (s *SQLiteStore) ListExpiredSnoozes(ctx context.Context, now time.Time) ([]*Instance, error) {
	return s.list(ctx, `
		SELECT `+instanceColumns+`
		FROM task_instances
		WHERE status = ? AND snoozed_until IS NOT NULL AND snoozed_until <= ?
		ORDER BY snoozed_until, instance_id`, domain.StatusSnoozed.String(), now.UTC())
}

// ListDueBefore returns open instances due strictly before t
func (s *SQLiteStore) ListDueBefore(ctx context.Context, t time.Time) ([]*Instance, error) {
	return s.list(ctx, `
		SELECT `+instanceColumns+`
		FROM task_instances
		WHERE status NOT IN (?, ?) AND due_date IS NOT NULL AND due_date < ?
		ORDER BY due_date, created_at, instance_id`,
		domain.StatusCompleted.String(), domain.StatusDismissed.String(), t.UTC())
}

// list runs a SELECT over instanceColumns and scans all rows
func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]*Instance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "query task instances", err)
	}
	defer rows.Close()

	var out []*Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreCorrupt, "scan task instance", err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, "iterate task instances", err)
	}
	return out, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanInstance reads one row in instanceColumns order
func scanInstance(row rowScanner) (*Instance, error) {
	var (
		inst         Instance
		instanceID   string
		cycleKey     string
		category     string
		status       string
		dueDate      sql.NullTime
		snoozedUntil sql.NullTime
		completedAt  sql.NullTime
	)

	err := row.Scan(
		&instanceID,
		&inst.TemplateID,
		&inst.TemplateTaskID,
		&inst.AnchorID,
		&cycleKey,
		&inst.Title,
		&category,
		&dueDate,
		&status,
		&snoozedUntil,
		&completedAt,
		&inst.CreatedAt,
		&inst.Version,
	)
	if err != nil {
		return nil, err
	}

	inst.InstanceID = domain.InstanceID(instanceID)
	inst.CycleKey = domain.CycleKey(cycleKey)
	inst.Category = domain.TaskCategory(category)
	inst.Status = domain.Status(status)
	inst.DueDate = timePtr(dueDate)
	inst.SnoozedUntil = timePtr(snoozedUntil)
	inst.CompletedAt = timePtr(completedAt)

	return &inst, nil
}

// nullTime converts a *time.Time into its SQL representation
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// timePtr converts a SQL nullable time back into a *time.Time
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time.UTC()
	return &out
}

// Compile-time verification that SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
