package catalog

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteCatalog stores sync state in a local SQLite file. It exists for
// development and offline runs where no Postgres is reachable; the schema
// mirrors the Postgres backend with ids generated client-side.
type SQLiteCatalog struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS professor (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS curso (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	teams_id TEXT UNIQUE,
	created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS class (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	curso_id TEXT REFERENCES curso(id),
	professor_id TEXT REFERENCES professor(id),
	semester TEXT NOT NULL,
	class_year INTEGER NOT NULL,
	teams_channel_id TEXT UNIQUE,
	kind TEXT NOT NULL DEFAULT 'standard',
	created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS archive (
	id TEXT PRIMARY KEY,
	class_id TEXT NOT NULL REFERENCES class(id),
	file_name TEXT NOT NULL,
	file_extension TEXT NOT NULL,
	local_path TEXT,
	storage_key TEXT,
	drive_item_id TEXT NOT NULL UNIQUE,
	etag TEXT,
	created_at TEXT DEFAULT (datetime('now')),
	updated_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_archive_drive_item ON archive(drive_item_id);
CREATE INDEX IF NOT EXISTS idx_archive_class ON archive(class_id);
`

// OpenSQLite opens (or creates) the catalog file and applies the schema
func OpenSQLite(path string) (*SQLiteCatalog, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, catalogErr("create directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, catalogErr("open", err)
	}
	// modernc sqlite serializes writes; one connection avoids lock errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, catalogErr("apply schema", err)
	}
	return &SQLiteCatalog{db: db}, nil
}

func (c *SQLiteCatalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *SQLiteCatalog) GetFingerprint(ctx context.Context, driveItemID string) (string, bool, error) {
	var etag sql.NullString
	err := c.db.QueryRowContext(ctx,
		`SELECT etag FROM archive WHERE drive_item_id = ?`, driveItemID).Scan(&etag)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, catalogErr("get fingerprint", err)
	}
	return etag.String, true, nil
}

func (c *SQLiteCatalog) UpsertArchive(ctx context.Context, rec ArchiveRecord) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO archive
			(id, class_id, file_name, file_extension, local_path, storage_key, drive_item_id, etag)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)
		ON CONFLICT (drive_item_id) DO UPDATE
			SET file_name      = excluded.file_name,
			    file_extension = excluded.file_extension,
			    local_path     = excluded.local_path,
			    storage_key    = excluded.storage_key,
			    etag           = excluded.etag,
			    updated_at     = datetime('now')`,
		uuid.NewString(), rec.CollectionID, rec.FileName, rec.FileExtension,
		rec.LocalPath, rec.StorageKey, rec.DriveItemID, rec.ETag)
	if err != nil {
		return catalogErr("upsert archive", err)
	}
	return nil
}

func (c *SQLiteCatalog) UpsertUnit(ctx context.Context, name, teamID string) (string, error) {
	var id string
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO curso (id, name, teams_id)
		VALUES (?, ?, ?)
		ON CONFLICT (teams_id) DO UPDATE SET name = excluded.name
		RETURNING id`, uuid.NewString(), name, teamID).Scan(&id)
	if err != nil {
		return "", catalogErr("upsert unit", err)
	}
	return id, nil
}

func (c *SQLiteCatalog) UpsertOwner(ctx context.Context, name, email string) (string, error) {
	var id string
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO professor (id, name, email)
		VALUES (?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET name = excluded.name
		RETURNING id`, uuid.NewString(), name, email).Scan(&id)
	if err != nil {
		return "", catalogErr("upsert owner", err)
	}
	return id, nil
}

func (c *SQLiteCatalog) UpsertCollection(ctx context.Context, rec CollectionRecord) (string, error) {
	var id string
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO class
			(id, name, curso_id, professor_id, semester, class_year, teams_channel_id, kind)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?)
		ON CONFLICT (teams_channel_id) DO UPDATE
			SET name         = excluded.name,
			    professor_id = excluded.professor_id,
			    semester     = excluded.semester,
			    class_year   = excluded.class_year,
			    kind         = excluded.kind
		RETURNING id`,
		uuid.NewString(), rec.Name, rec.UnitID, rec.OwnerID, rec.Semester,
		rec.ClassYear, rec.ChannelID, string(rec.Kind)).Scan(&id)
	if err != nil {
		return "", catalogErr("upsert collection", err)
	}
	return id, nil
}
