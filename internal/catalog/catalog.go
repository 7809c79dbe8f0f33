package catalog

import (
	"context"
	"strings"

	"github.com/dlfarias/teamvault/internal/types"
)

// Catalog is the persisted sync-state collaborator. Every call is
// insert-or-update keyed on a natural external id; the upsert-on-conflict
// behavior of the backend is the sole serialization point for concurrent
// writes to the same item.
type Catalog interface {
	// GetFingerprint returns the stored change token for a drive item,
	// or ok=false when the item has never been synced.
	GetFingerprint(ctx context.Context, driveItemID string) (fingerprint string, ok bool, err error)

	// UpsertArchive records a successful sync. The storage locator and the
	// fingerprint change together or not at all.
	UpsertArchive(ctx context.Context, rec ArchiveRecord) error

	// UpsertUnit registers a team, returning its internal id.
	UpsertUnit(ctx context.Context, name, teamID string) (string, error)

	// UpsertOwner registers a professor, returning their internal id.
	UpsertOwner(ctx context.Context, name, email string) (string, error)

	// UpsertCollection registers a channel or library, returning its internal id.
	UpsertCollection(ctx context.Context, rec CollectionRecord) (string, error)

	Close() error
}

// ArchiveRecord is the durable row describing one synced item
type ArchiveRecord struct {
	CollectionID  string
	FileName      string
	FileExtension string
	LocalPath     string // empty in object-storage-only mode
	StorageKey    string // set iff the storage write succeeded
	DriveItemID   string
	ETag          string
}

// CollectionRecord describes one discovered file root
type CollectionRecord struct {
	Name      string
	UnitID    string
	OwnerID   string // empty when no owner could be resolved
	Semester  string
	ClassYear int
	ChannelID string
	Kind      types.CollectionKind
}

// Open selects a backend from the DSN: postgres://... (or postgresql://...)
// opens a Postgres pool, anything else is treated as a SQLite file path.
func Open(ctx context.Context, dsn string) (Catalog, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(dsn)
}
