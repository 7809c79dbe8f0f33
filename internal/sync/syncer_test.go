package sync

import (
	"context"
	"testing"

	"github.com/dlfarias/teamvault/internal/logging"
	th "github.com/dlfarias/teamvault/internal/testing"
	"github.com/dlfarias/teamvault/internal/testing/mocks"
	"github.com/dlfarias/teamvault/internal/utils"
)

func newTestSyncer(remote *mocks.MockRemote, store *mocks.MockStore, cat *mocks.MockCatalog) (*Syncer, *RunStats) {
	stats := NewRunStats()
	s := NewSyncer(remote, store, cat, 4, stats, logging.NewNoOpLogger(), false)
	return s, stats
}

func TestSyncItemNewFile(t *testing.T) {
	remote := &mocks.MockRemote{
		DownloadFunc: func(ctx context.Context, driveID, itemID string) ([]byte, error) {
			return []byte("lecture notes"), nil
		},
	}
	store := mocks.NewMockStore()
	cat := mocks.NewMockCatalog()
	syncer, stats := newTestSyncer(remote, store, cat)

	item := th.TestFile("item-1", "Notes.pdf", "etag-1")
	result, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix/team/channel", item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusOK {
		t.Errorf("expected status ok, got %s", result.Status)
	}
	if result.Key != "prefix/team/channel/Notes.pdf" {
		t.Errorf("unexpected key: %s", result.Key)
	}
	if got := string(store.Objects["prefix/team/channel/Notes.pdf"]); got != "lecture notes" {
		t.Errorf("stored content mismatch: %q", got)
	}
	if len(cat.Archives) != 1 {
		t.Fatalf("expected 1 archive record, got %d", len(cat.Archives))
	}
	rec := cat.Archives[0]
	if rec.ETag != "etag-1" || rec.DriveItemID != "item-1" || rec.FileExtension != "pdf" {
		t.Errorf("unexpected archive record: %+v", rec)
	}
	if stats.FilesNew.Load() != 1 {
		t.Errorf("expected FilesNew=1, got %d", stats.FilesNew.Load())
	}
}

func TestSyncItemUnchangedSkips(t *testing.T) {
	remote := &mocks.MockRemote{}
	store := mocks.NewMockStore()
	cat := mocks.NewMockCatalog()
	cat.Fingerprints["item-1"] = "etag-1"
	syncer, stats := newTestSyncer(remote, store, cat)

	item := th.TestFile("item-1", "Notes.pdf", "etag-1")
	result, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix", item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusSkipped {
		t.Errorf("expected status skipped, got %s", result.Status)
	}
	if remote.DownloadCalls.Load() != 0 {
		t.Errorf("expected no downloads, got %d", remote.DownloadCalls.Load())
	}
	if len(store.Objects) != 0 {
		t.Errorf("expected no stored objects, got %d", len(store.Objects))
	}
	if stats.FilesSkipped.Load() != 1 {
		t.Errorf("expected FilesSkipped=1, got %d", stats.FilesSkipped.Load())
	}
}

func TestSyncItemChangedFingerprintRefetches(t *testing.T) {
	remote := &mocks.MockRemote{}
	store := mocks.NewMockStore()
	cat := mocks.NewMockCatalog()
	cat.Fingerprints["item-1"] = "etag-old"
	syncer, stats := newTestSyncer(remote, store, cat)

	item := th.TestFile("item-1", "Notes.pdf", "etag-new")
	result, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix", item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusOK {
		t.Errorf("expected status ok, got %s", result.Status)
	}
	if remote.DownloadCalls.Load() != 1 {
		t.Errorf("expected 1 download, got %d", remote.DownloadCalls.Load())
	}
	if cat.Fingerprints["item-1"] != "etag-new" {
		t.Errorf("fingerprint not updated: %s", cat.Fingerprints["item-1"])
	}
	if stats.FilesNew.Load() != 1 {
		t.Errorf("expected FilesNew=1, got %d", stats.FilesNew.Load())
	}
}

func TestSyncItemStorageFailureSkipsCatalog(t *testing.T) {
	remote := &mocks.MockRemote{}
	store := mocks.NewMockStore()
	store.PutFunc = func(ctx context.Context, key string, data []byte) (string, error) {
		return "", utils.NewAppError(utils.NewSyncError(utils.ErrCodeStorageFailure, "disk full").Build())
	}
	cat := mocks.NewMockCatalog()
	syncer, stats := newTestSyncer(remote, store, cat)

	item := th.TestFile("item-1", "Notes.pdf", "etag-1")
	result, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix", item)
	if err != nil {
		t.Fatalf("per-file failure must not abort the run: %v", err)
	}
	if result.Status != StatusError {
		t.Errorf("expected status error, got %s", result.Status)
	}
	if len(cat.Archives) != 0 {
		t.Errorf("catalog must not be written after a storage failure, got %d records", len(cat.Archives))
	}
	if stats.FilesErrored.Load() != 1 {
		t.Errorf("expected FilesErrored=1, got %d", stats.FilesErrored.Load())
	}
}

func TestSyncItemCredentialExpiryPropagates(t *testing.T) {
	remote := &mocks.MockRemote{
		DownloadFunc: func(ctx context.Context, driveID, itemID string) ([]byte, error) {
			return nil, utils.NewAppError(utils.NewSyncError(utils.ErrCodeCredentialExpired, "token expired").
				WithHTTPStatus(401).Build())
		},
	}
	store := mocks.NewMockStore()
	cat := mocks.NewMockCatalog()
	syncer, stats := newTestSyncer(remote, store, cat)

	item := th.TestFile("item-1", "Notes.pdf", "etag-1")
	_, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix", item)
	if !utils.IsCode(err, utils.ErrCodeCredentialExpired) {
		t.Fatalf("expected credential expiry to propagate, got %v", err)
	}
	if stats.FilesErrored.Load() != 0 {
		t.Errorf("credential expiry is not a per-file error, got FilesErrored=%d", stats.FilesErrored.Load())
	}
}

func TestSyncItemDryRun(t *testing.T) {
	remote := &mocks.MockRemote{}
	store := mocks.NewMockStore()
	cat := mocks.NewMockCatalog()
	stats := NewRunStats()
	syncer := NewSyncer(remote, store, cat, 4, stats, logging.NewNoOpLogger(), true)

	item := th.TestFile("item-1", "Notes.pdf", "etag-1")
	result, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix", item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusOK {
		t.Errorf("expected status ok, got %s", result.Status)
	}
	if remote.DownloadCalls.Load() != 0 || len(store.Objects) != 0 || len(cat.Archives) != 0 {
		t.Error("dry run must not download, store, or write the catalog")
	}
}

func TestSyncItemFingerprintFallsBackToID(t *testing.T) {
	remote := &mocks.MockRemote{}
	store := mocks.NewMockStore()
	cat := mocks.NewMockCatalog()
	syncer, _ := newTestSyncer(remote, store, cat)

	item := th.TestFile("item-1", "Notes.pdf", "")
	if _, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix", item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Fingerprints["item-1"] != "item-1" {
		t.Errorf("expected item ID as fingerprint fallback, got %q", cat.Fingerprints["item-1"])
	}

	// Second pass with the same item must skip
	result, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix", item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusSkipped {
		t.Errorf("expected skip on unchanged fallback fingerprint, got %s", result.Status)
	}
}

func TestSyncItemNetworkErrorRecorded(t *testing.T) {
	remote := &mocks.MockRemote{
		DownloadFunc: func(ctx context.Context, driveID, itemID string) ([]byte, error) {
			return nil, utils.NewAppError(utils.NewSyncError(utils.ErrCodeRetryExhausted,
				"request download failed after 5 attempts").Build())
		},
	}
	store := mocks.NewMockStore()
	cat := mocks.NewMockCatalog()
	syncer, stats := newTestSyncer(remote, store, cat)

	item := th.TestFile("item-1", "Notes.pdf", "etag-1")
	result, err := syncer.SyncItem(th.TestContext(), "collection-1", "prefix", item)
	if err != nil {
		t.Fatalf("per-file failure must not abort the run: %v", err)
	}
	if result.Status != StatusError {
		t.Errorf("expected status error, got %s", result.Status)
	}
	if !utils.IsCode(result.Err, utils.ErrCodeRetryExhausted) {
		t.Errorf("expected retry-exhausted in result, got %v", result.Err)
	}
	if stats.FilesErrored.Load() != 1 {
		t.Errorf("expected FilesErrored=1, got %d", stats.FilesErrored.Load())
	}
}
