package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dlfarias/teamvault/internal/utils"
)

// PostgresCatalog stores sync state in PostgreSQL through a pgx pool.
// The schema is applied idempotently at open, so a fresh database needs
// no manual migration step.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS professor (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS curso (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name TEXT NOT NULL,
	teams_id TEXT UNIQUE,
	created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS class (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name TEXT NOT NULL,
	curso_id UUID REFERENCES curso(id) ON DELETE CASCADE,
	professor_id UUID REFERENCES professor(id) ON DELETE SET NULL,
	semester TEXT NOT NULL,
	class_year INTEGER NOT NULL,
	teams_channel_id TEXT UNIQUE,
	kind TEXT NOT NULL DEFAULT 'standard',
	created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS archive (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	class_id UUID NOT NULL REFERENCES class(id) ON DELETE CASCADE,
	file_name TEXT NOT NULL,
	file_extension TEXT NOT NULL,
	local_path TEXT,
	storage_key TEXT,
	drive_item_id TEXT NOT NULL UNIQUE,
	etag TEXT,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_archive_drive_item ON archive(drive_item_id);
CREATE INDEX IF NOT EXISTS idx_archive_class ON archive(class_id);
`

// OpenPostgres creates the connection pool and applies the schema
func OpenPostgres(ctx context.Context, dsn string) (*PostgresCatalog, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, catalogErr("parse dsn", err)
	}
	cfg.MinConns = 2
	cfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, catalogErr("connect", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, catalogErr("apply schema", err)
	}
	return &PostgresCatalog{pool: pool}, nil
}

func (c *PostgresCatalog) Close() error {
	c.pool.Close()
	return nil
}

func (c *PostgresCatalog) GetFingerprint(ctx context.Context, driveItemID string) (string, bool, error) {
	var etag string
	err := c.pool.QueryRow(ctx,
		`SELECT etag FROM archive WHERE drive_item_id = $1`, driveItemID).Scan(&etag)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, catalogErr("get fingerprint", err)
	}
	return etag, true, nil
}

func (c *PostgresCatalog) UpsertArchive(ctx context.Context, rec ArchiveRecord) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO archive
			(class_id, file_name, file_extension, local_path, storage_key, drive_item_id, etag)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		ON CONFLICT (drive_item_id) DO UPDATE
			SET file_name      = EXCLUDED.file_name,
			    file_extension = EXCLUDED.file_extension,
			    local_path     = EXCLUDED.local_path,
			    storage_key    = EXCLUDED.storage_key,
			    etag           = EXCLUDED.etag,
			    updated_at     = NOW()`,
		rec.CollectionID, rec.FileName, rec.FileExtension, rec.LocalPath,
		rec.StorageKey, rec.DriveItemID, rec.ETag)
	if err != nil {
		return catalogErr("upsert archive", err)
	}
	return nil
}

func (c *PostgresCatalog) UpsertUnit(ctx context.Context, name, teamID string) (string, error) {
	var id string
	err := c.pool.QueryRow(ctx, `
		INSERT INTO curso (name, teams_id)
		VALUES ($1, $2)
		ON CONFLICT (teams_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, name, teamID).Scan(&id)
	if err != nil {
		return "", catalogErr("upsert unit", err)
	}
	return id, nil
}

func (c *PostgresCatalog) UpsertOwner(ctx context.Context, name, email string) (string, error) {
	var id string
	err := c.pool.QueryRow(ctx, `
		INSERT INTO professor (name, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, name, email).Scan(&id)
	if err != nil {
		return "", catalogErr("upsert owner", err)
	}
	return id, nil
}

func (c *PostgresCatalog) UpsertCollection(ctx context.Context, rec CollectionRecord) (string, error) {
	var id string
	err := c.pool.QueryRow(ctx, `
		INSERT INTO class
			(name, curso_id, professor_id, semester, class_year, teams_channel_id, kind)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7)
		ON CONFLICT (teams_channel_id) DO UPDATE
			SET name         = EXCLUDED.name,
			    professor_id = EXCLUDED.professor_id,
			    semester     = EXCLUDED.semester,
			    class_year   = EXCLUDED.class_year,
			    kind         = EXCLUDED.kind
		RETURNING id`,
		rec.Name, rec.UnitID, rec.OwnerID, rec.Semester, rec.ClassYear,
		rec.ChannelID, string(rec.Kind)).Scan(&id)
	if err != nil {
		return "", catalogErr("upsert collection", err)
	}
	return id, nil
}

func catalogErr(op string, err error) error {
	return utils.NewAppError(utils.NewSyncError(utils.ErrCodeCatalogFailure,
		fmt.Sprintf("catalog %s: %v", op, err)).Build())
}
