package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/semmidev/custos/internal/domain"
)

// Postgres persists DatabaseConnection and Backup records. Databases and
// Backups implement domain.DatabaseStore and domain.BackupStore over a
// shared pool; every operation is atomic at the single-record level.
type Postgres struct {
	pool      *pgxpool.Pool
	Databases *DatabaseRegistry
	Backups   *BackupRegistry
}

type DatabaseRegistry struct {
	pool *pgxpool.Pool
}

type BackupRegistry struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse registry config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create registry pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping registry: %w", err)
	}

	return &Postgres{
		pool:      pool,
		Databases: &DatabaseRegistry{pool: pool},
		Backups:   &BackupRegistry{pool: pool},
	}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

const databaseColumns = `id, name, engine, host, port, username, password, database_name, backup_interval, last_backup_at, created_at, updated_at`

func (p *DatabaseRegistry) List(ctx context.Context) ([]domain.DatabaseConnection, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+databaseColumns+` FROM databases ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close()

	var conns []domain.DatabaseConnection
	for rows.Next() {
		conn, err := scanDatabase(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, *conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate databases: %w", err)
	}
	return conns, nil
}

func (p *DatabaseRegistry) FindByID(ctx context.Context, id string) (*domain.DatabaseConnection, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+databaseColumns+` FROM databases WHERE id = $1`, id)

	conn, err := scanDatabase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("database %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return conn, nil
}

func (p *DatabaseRegistry) Create(ctx context.Context, conn *domain.DatabaseConnection) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO databases (`+databaseColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		conn.ID, conn.Name, conn.Engine, conn.Host, conn.Port, conn.Username,
		conn.Password, conn.DatabaseName, conn.Interval, conn.LastBackupAt,
		conn.CreatedAt, conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert database: %w", err)
	}
	return nil
}

func (p *DatabaseRegistry) Update(ctx context.Context, conn *domain.DatabaseConnection) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE databases
		 SET name = $2, engine = $3, host = $4, port = $5, username = $6,
		     password = $7, database_name = $8, backup_interval = $9, updated_at = $10
		 WHERE id = $1`,
		conn.ID, conn.Name, conn.Engine, conn.Host, conn.Port, conn.Username,
		conn.Password, conn.DatabaseName, conn.Interval, conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update database: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("database %s: %w", conn.ID, domain.ErrNotFound)
	}
	return nil
}

func (p *DatabaseRegistry) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM databases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete database: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("database %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (p *DatabaseRegistry) TouchLastBackup(ctx context.Context, id string, at time.Time) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE databases SET last_backup_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch last backup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("database %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (p *BackupRegistry) Create(ctx context.Context, b *domain.Backup) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO backups (id, database_id, key, bucket, etag, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.DatabaseID, b.Key, b.Bucket, b.ETag, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert backup: %w", err)
	}
	return nil
}

func (p *BackupRegistry) FindByID(ctx context.Context, id string) (*domain.Backup, error) {
	var b domain.Backup
	err := p.pool.QueryRow(ctx,
		`SELECT id, database_id, key, bucket, etag, created_at
		 FROM backups WHERE id = $1`, id,
	).Scan(&b.ID, &b.DatabaseID, &b.Key, &b.Bucket, &b.ETag, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("backup %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get backup %s: %w", id, err)
	}
	return &b, nil
}

func (p *BackupRegistry) ListByDatabase(ctx context.Context, databaseID string) ([]domain.Backup, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, database_id, key, bucket, etag, created_at
		 FROM backups WHERE database_id = $1 ORDER BY created_at`, databaseID)
	if err != nil {
		return nil, fmt.Errorf("list backups for %s: %w", databaseID, err)
	}
	defer rows.Close()

	var backups []domain.Backup
	for rows.Next() {
		var b domain.Backup
		if err := rows.Scan(&b.ID, &b.DatabaseID, &b.Key, &b.Bucket, &b.ETag, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backups: %w", err)
	}
	return backups, nil
}

func scanDatabase(row pgx.Row) (*domain.DatabaseConnection, error) {
	var conn domain.DatabaseConnection
	err := row.Scan(&conn.ID, &conn.Name, &conn.Engine, &conn.Host, &conn.Port,
		&conn.Username, &conn.Password, &conn.DatabaseName, &conn.Interval,
		&conn.LastBackupAt, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan database: %w", err)
	}
	return &conn, nil
}
