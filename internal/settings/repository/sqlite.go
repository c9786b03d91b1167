package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bim-schedules/internal/settings/models"
)

// ============================================================
// SQLite Repository
// ============================================================

var ErrNotFound = errors.New("table not found")

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init запускает миграции.
func (r *Repository) Init(migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.Exec(string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]models.NamedTable, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, display_name, config, updated_at
        FROM named_tables
        ORDER BY name
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []models.NamedTable
	for rows.Next() {
		var t models.NamedTable
		var config string
		if err := rows.Scan(&t.ID, &t.Name, &t.DisplayName, &config, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Config = []byte(config)
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*models.NamedTable, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, display_name, config, updated_at
        FROM named_tables
        WHERE id = ?
    `, id)

	var t models.NamedTable
	var config string
	if err := row.Scan(&t.ID, &t.Name, &t.DisplayName, &config, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Config = []byte(config)
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, t *models.NamedTable) error {
	t.UpdatedAt = time.Now().UnixMilli()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO named_tables (id, name, display_name, config, updated_at)
        VALUES (?, ?, ?, ?, ?)
    `, t.ID, t.Name, t.DisplayName, string(t.Config), t.UpdatedAt)
	return err
}

func (r *Repository) Update(ctx context.Context, t *models.NamedTable) error {
	t.UpdatedAt = time.Now().UnixMilli()
	res, err := r.db.ExecContext(ctx, `
        UPDATE named_tables
        SET name = ?, display_name = ?, config = ?, updated_at = ?
        WHERE id = ?
    `, t.Name, t.DisplayName, string(t.Config), t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM named_tables WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
