package sync

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"

	"github.com/dlfarias/teamvault/internal/catalog"
	"github.com/dlfarias/teamvault/internal/logging"
	"github.com/dlfarias/teamvault/internal/types"
	"github.com/dlfarias/teamvault/internal/utils"
)

// Downloader fetches raw file content from the remote store
type Downloader interface {
	Download(ctx context.Context, driveID, itemID string) ([]byte, error)
}

// FingerprintStore is the catalog slice the syncer needs
type FingerprintStore interface {
	GetFingerprint(ctx context.Context, driveItemID string) (string, bool, error)
	UpsertArchive(ctx context.Context, rec catalog.ArchiveRecord) error
}

// ObjectPutter is the storage slice the syncer needs
type ObjectPutter interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// SyncStatus classifies the outcome for one file
type SyncStatus string

const (
	StatusOK      SyncStatus = "ok"
	StatusSkipped SyncStatus = "skipped"
	StatusError   SyncStatus = "error"
)

// SyncResult reports what happened to one file
type SyncResult struct {
	Status SyncStatus
	Key    string
	Err    error
}

// Syncer moves one file from the remote store into object storage and the
// catalog. A single Syncer is shared by every walker goroutine; the weighted
// semaphore caps simultaneous downloads across the whole run.
type Syncer struct {
	downloader Downloader
	store      ObjectPutter
	catalog    FingerprintStore
	slots      *semaphore.Weighted
	stats      *RunStats
	logger     logging.Logger
	dryRun     bool
}

// NewSyncer builds a syncer with a download concurrency cap
func NewSyncer(dl Downloader, store ObjectPutter, cat FingerprintStore,
	concurrency int64, stats *RunStats, logger logging.Logger, dryRun bool) *Syncer {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Syncer{
		downloader: dl,
		store:      store,
		catalog:    cat,
		slots:      semaphore.NewWeighted(concurrency),
		stats:      stats,
		logger:     logger,
		dryRun:     dryRun,
	}
}

// SyncItem brings one file up to date. The fingerprint is checked before a
// download slot is taken so unchanged files never occupy one, and checked
// again after acquiring because another goroutine may have synced the same
// item while this one waited.
//
// The catalog row is written only after storage reports success; a failed
// upload leaves the old row intact so the next run retries the file.
//
// The returned error is non-nil only for failures that must stop the run.
// Per-file failures are recorded in the result and the stats.
func (s *Syncer) SyncItem(ctx context.Context, collectionID, keyDir string, item types.DriveItem) (SyncResult, error) {
	fingerprint := item.Fingerprint()

	stored, found, err := s.catalog.GetFingerprint(ctx, item.ID)
	if err != nil {
		return s.fail(item, err)
	}
	if found && stored == fingerprint {
		s.stats.FilesSkipped.Add(1)
		return SyncResult{Status: StatusSkipped}, nil
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return s.fail(item, err)
	}
	defer s.slots.Release(1)

	// Re-check under the slot: a concurrent walker may have raced us here
	stored, found, err = s.catalog.GetFingerprint(ctx, item.ID)
	if err != nil {
		return s.fail(item, err)
	}
	if found && stored == fingerprint {
		s.stats.FilesSkipped.Add(1)
		return SyncResult{Status: StatusSkipped}, nil
	}

	key := utils.AppendKey(keyDir, item.Name)
	if s.dryRun {
		s.logger.Info("would sync file",
			logging.F("key", key), logging.F("size", item.Size))
		s.stats.FilesNew.Add(1)
		return SyncResult{Status: StatusOK, Key: key}, nil
	}

	data, err := s.downloader.Download(ctx, item.DriveID, item.ID)
	if err != nil {
		return s.fail(item, err)
	}

	locator, err := s.store.Put(ctx, key, data)
	if err != nil {
		return s.fail(item, err)
	}

	err = s.catalog.UpsertArchive(ctx, catalog.ArchiveRecord{
		CollectionID:  collectionID,
		FileName:      utils.SanitizeName(item.Name),
		FileExtension: utils.FileExtension(item.Name),
		LocalPath:     locator,
		StorageKey:    key,
		DriveItemID:   item.ID,
		ETag:          fingerprint,
	})
	if err != nil {
		return s.fail(item, err)
	}

	s.stats.FilesNew.Add(1)
	s.logger.Debug("synced file",
		logging.F("key", key), logging.F("size", item.Size))
	return SyncResult{Status: StatusOK, Key: key}, nil
}

// fail records a per-file failure, except credential expiry which aborts
// the whole run
func (s *Syncer) fail(item types.DriveItem, err error) (SyncResult, error) {
	if utils.IsCode(err, utils.ErrCodeCredentialExpired) {
		return SyncResult{Status: StatusError, Err: err}, err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return SyncResult{Status: StatusError, Err: err}, err
	}
	s.stats.FilesErrored.Add(1)
	s.logger.Warn("file sync failed",
		logging.F("name", item.Name),
		logging.F("itemId", item.ID),
		logging.F("code", utils.CodeOf(err)),
		logging.F("error", err.Error()))
	return SyncResult{Status: StatusError, Err: err}, nil
}
