// Package repository provides data access for targets.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sebasr/target-manager/internal/config"
	"github.com/sebasr/target-manager/internal/database"
	"github.com/sebasr/target-manager/internal/models"
)

// SQLTargetRepository implements TargetRepository on top of database/sql.
// Queries are written with '?' placeholders and rebound for PostgreSQL.
type SQLTargetRepository struct {
	db       *sql.DB
	postgres bool
	now      func() time.Time

	mu       sync.Mutex
	lastSeen int64
}

// NewSQLTargetRepository creates a repository for an open database
func NewSQLTargetRepository(db *database.DB) *SQLTargetRepository {
	return &SQLTargetRepository{
		db:       db.DB,
		postgres: db.Driver == config.DriverPostgres,
		now:      time.Now,
	}
}

// NewPostgresTargetRepository creates a PostgreSQL target repository
func NewPostgresTargetRepository(db *sql.DB) *SQLTargetRepository {
	return &SQLTargetRepository{db: db, postgres: true, now: time.Now}
}

// NewSQLiteTargetRepository creates a SQLite target repository
func NewSQLiteTargetRepository(db *sql.DB) *SQLTargetRepository {
	return &SQLTargetRepository{db: db, now: time.Now}
}

const targetColumns = `id, latitude, longitude, altitude, frequency, speed, bearing, ip_address`

// List returns every target ordered by creation time
func (r *SQLTargetRepository) List(ctx context.Context) ([]*models.Target, error) {
	query := `SELECT ` + targetColumns + ` FROM targets ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	targets := []*models.Target{}
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return targets, nil
}

// GetByID retrieves a target by its ID
func (r *SQLTargetRepository) GetByID(ctx context.Context, id string) (*models.Target, error) {
	query := r.rebind(`SELECT ` + targetColumns + ` FROM targets WHERE id = ?`)

	t, err := scanTarget(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create stores a new target
func (r *SQLTargetRepository) Create(ctx context.Context, target *models.Target) error {
	query := r.rebind(`
		INSERT INTO targets (
			id, latitude, longitude, altitude, frequency, speed, bearing, ip_address, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(
		ctx,
		query,
		target.ID,
		target.Latitude,
		target.Longitude,
		target.Altitude,
		target.Frequency,
		target.Speed,
		target.Bearing,
		target.IPAddress,
		r.createdAt(),
	)
	return err
}

// createdAt returns a strictly increasing timestamp so that listing order
// matches insertion order even when the clock does not advance.
func (r *SQLTargetRepository) createdAt() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UnixNano()
	if ts <= r.lastSeen {
		ts = r.lastSeen + 1
	}
	r.lastSeen = ts
	return ts
}

// Update replaces every field of an existing target
func (r *SQLTargetRepository) Update(ctx context.Context, target *models.Target) error {
	query := r.rebind(`
		UPDATE targets
		SET latitude = ?, longitude = ?, altitude = ?, frequency = ?,
			speed = ?, bearing = ?, ip_address = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(
		ctx,
		query,
		target.Latitude,
		target.Longitude,
		target.Altitude,
		target.Frequency,
		target.Speed,
		target.Bearing,
		target.IPAddress,
		target.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete removes a target by its ID
func (r *SQLTargetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM targets WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// rebind rewrites '?' placeholders into PostgreSQL's $n form
func (r *SQLTargetRepository) rebind(query string) string {
	if !r.postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner) (*models.Target, error) {
	var t models.Target
	err := row.Scan(
		&t.ID,
		&t.Latitude,
		&t.Longitude,
		&t.Altitude,
		&t.Frequency,
		&t.Speed,
		&t.Bearing,
		&t.IPAddress,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTargetNotFound
	}
	return nil
}
