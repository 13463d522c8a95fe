package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heimdex/pagexport/internal/session"
)

type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	ListQueuedRuns(ctx context.Context) ([]*Run, error)
	FindRunByDocument(ctx context.Context, path string, mtime time.Time) (*Run, error)
	UpdateRunStatus(ctx context.Context, id, status, errorMsg string) error
	MarkRunStarted(ctx context.Context, id string) (bool, error)
	FinishRun(ctx context.Context, run *Run) error
	DeleteRun(ctx context.Context, id string) error
	CountRunsByStatus(ctx context.Context) (map[string]int, error)

	SaveResults(ctx context.Context, runID string, warnings []*Warning, comps []*Composition) error
	ListWarnings(ctx context.Context, runID string) ([]*Warning, error)
	ListCompositions(ctx context.Context, runID string) ([]*Composition, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const runColumns = `id, document_path, document_mtime, title, root_id, status, options,
	composition_count, image_count, error_count, warning_count, graphics_memory,
	manifest_path, report_path, error, created_at, updated_at, started_at, finished_at`

func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	options, err := json.Marshal(run.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, document_path, document_mtime, title, root_id, status, options, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.DocumentPath, run.DocumentMtime.UnixNano(), run.Title, run.RootID, run.Status, string(options),
		run.CreatedAt.Format(time.RFC3339), run.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (r *SQLiteRepository) FindRunByDocument(ctx context.Context, path string, mtime time.Time) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE document_path = ? AND document_mtime = ?
		ORDER BY created_at DESC LIMIT 1
	`, path, mtime.UnixNano())
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (r *SQLiteRepository) ListQueuedRuns(ctx context.Context) ([]*Run, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE status = 'queued' ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var mtime int64
	var options string
	var manifestPath, reportPath, errMsg, startedAt, finishedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&run.ID, &run.DocumentPath, &mtime, &run.Title, &run.RootID, &run.Status, &options,
		&run.CompositionCount, &run.ImageCount, &run.ErrorCount, &run.WarningCount, &run.GraphicsMemory,
		&manifestPath, &reportPath, &errMsg, &createdAt, &updatedAt, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	run.DocumentMtime = time.Unix(0, mtime)
	run.Options = session.DefaultOptions()
	if err := json.Unmarshal([]byte(options), &run.Options); err != nil {
		return nil, fmt.Errorf("run %s: invalid options: %w", run.ID, err)
	}
	run.ManifestPath = manifestPath.String
	run.ReportPath = reportPath.String
	run.Error = errMsg.String
	run.CreatedAt = parseTime(createdAt)
	run.UpdatedAt = parseTime(updatedAt)
	run.StartedAt = parseNullTime(startedAt)
	run.FinishedAt = parseNullTime(finishedAt)
	return &run, nil
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRepository) UpdateRunStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(errorMsg), now(), id)
	return err
}

// MarkRunStarted moves a queued run to running. It reports false when the run
// is no longer queued, for example because it was cancelled meanwhile.
func (r *SQLiteRepository) MarkRunStarted(ctx context.Context, id string) (bool, error) {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = 'running', error = NULL, started_at = ?, updated_at = ?
		WHERE id = ? AND status = 'queued'
	`, ts, ts, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLiteRepository) FinishRun(ctx context.Context, run *Run) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, composition_count = ?, image_count = ?, error_count = ?,
			warning_count = ?, graphics_memory = ?, manifest_path = ?, report_path = ?, error = ?,
			finished_at = ?, updated_at = ?
		WHERE id = ?
	`, run.Status, run.CompositionCount, run.ImageCount, run.ErrorCount,
		run.WarningCount, run.GraphicsMemory, nullString(run.ManifestPath), nullString(run.ReportPath), nullString(run.Error),
		ts, ts, run.ID)
	return err
}

func (r *SQLiteRepository) DeleteRun(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CountRunsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM runs GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// SaveResults replaces the stored warnings and compositions of a run.
func (r *SQLiteRepository) SaveResults(ctx context.Context, runID string, warnings []*Warning, comps []*Composition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM warnings WHERE run_id = ?", runID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM compositions WHERE run_id = ?", runID); err != nil {
		return err
	}

	for _, w := range warnings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO warnings (id, run_id, seq, category, is_error, composition_id, composition_name,
				layer_id, layer_name, info, message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, w.ID, runID, w.Seq, w.Category, boolToInt(w.IsError), w.CompositionID, w.CompositionName,
			w.LayerID, w.LayerName, w.Info, w.Message)
		if err != nil {
			return fmt.Errorf("failed to insert warning %d: %w", w.Seq, err)
		}
	}
	for _, c := range comps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO compositions (run_id, seq, composition_id, name, kind, width, height,
				frame_rate, duration, layer_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, c.Seq, c.CompositionID, c.Name, c.Kind, c.Width, c.Height, c.FrameRate, c.Duration, c.LayerCount)
		if err != nil {
			return fmt.Errorf("failed to insert composition %d: %w", c.CompositionID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListWarnings(ctx context.Context, runID string) ([]*Warning, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, seq, category, is_error, composition_id, composition_name,
			layer_id, layer_name, info, message
		FROM warnings WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []*Warning
	for rows.Next() {
		var w Warning
		var isError int
		if err := rows.Scan(&w.ID, &w.RunID, &w.Seq, &w.Category, &isError, &w.CompositionID, &w.CompositionName,
			&w.LayerID, &w.LayerName, &w.Info, &w.Message); err != nil {
			return nil, err
		}
		w.IsError = isError == 1
		warnings = append(warnings, &w)
	}
	return warnings, rows.Err()
}

func (r *SQLiteRepository) ListCompositions(ctx context.Context, runID string) ([]*Composition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, seq, composition_id, name, kind, width, height, frame_rate, duration, layer_count
		FROM compositions WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []*Composition
	for rows.Next() {
		var c Composition
		if err := rows.Scan(&c.RunID, &c.Seq, &c.CompositionID, &c.Name, &c.Kind, &c.Width, &c.Height,
			&c.FrameRate, &c.Duration, &c.LayerCount); err != nil {
			return nil, err
		}
		comps = append(comps, &c)
	}
	return comps, rows.Err()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseTime accepts RFC 3339 and the datetime('now') form written by SQL.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.DateTime, s)
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
