package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	cat, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return cat
}

func seedCollection(t *testing.T, cat *SQLiteCatalog) string {
	t.Helper()
	ctx := context.Background()
	unitID, err := cat.UpsertUnit(ctx, "Cálculo I", "team-1")
	if err != nil {
		t.Fatalf("upsert unit: %v", err)
	}
	collectionID, err := cat.UpsertCollection(ctx, CollectionRecord{
		Name:      "General",
		UnitID:    unitID,
		Semester:  "2",
		ClassYear: 2026,
		ChannelID: "chan-1",
		Kind:      "standard",
	})
	if err != nil {
		t.Fatalf("upsert collection: %v", err)
	}
	return collectionID
}

func TestSQLiteFingerprintRoundTrip(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()
	collectionID := seedCollection(t, cat)

	if _, found, err := cat.GetFingerprint(ctx, "item-1"); err != nil || found {
		t.Fatalf("fresh catalog must report not found, got found=%v err=%v", found, err)
	}

	rec := ArchiveRecord{
		CollectionID:  collectionID,
		FileName:      "Notes.pdf",
		FileExtension: "pdf",
		StorageKey:    "backup_teams/team/chan/Notes.pdf",
		LocalPath:     "s3://bucket/backup_teams/team/chan/Notes.pdf",
		DriveItemID:   "item-1",
		ETag:          "etag-1",
	}
	if err := cat.UpsertArchive(ctx, rec); err != nil {
		t.Fatalf("upsert archive: %v", err)
	}

	fp, found, err := cat.GetFingerprint(ctx, "item-1")
	if err != nil || !found {
		t.Fatalf("expected fingerprint, got found=%v err=%v", found, err)
	}
	if fp != "etag-1" {
		t.Errorf("got %q", fp)
	}
}

func TestSQLiteArchiveUpsertIsIdempotent(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()
	collectionID := seedCollection(t, cat)

	rec := ArchiveRecord{
		CollectionID:  collectionID,
		FileName:      "Notes.pdf",
		FileExtension: "pdf",
		DriveItemID:   "item-1",
		ETag:          "etag-1",
	}
	if err := cat.UpsertArchive(ctx, rec); err != nil {
		t.Fatal(err)
	}

	rec.ETag = "etag-2"
	rec.FileName = "Notes v2.pdf"
	if err := cat.UpsertArchive(ctx, rec); err != nil {
		t.Fatalf("second upsert must update, not conflict: %v", err)
	}

	fp, found, err := cat.GetFingerprint(ctx, "item-1")
	if err != nil || !found || fp != "etag-2" {
		t.Errorf("got fp=%q found=%v err=%v", fp, found, err)
	}
}

func TestSQLiteUnitUpsertReturnsStableID(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	first, err := cat.UpsertUnit(ctx, "Cálculo I", "team-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := cat.UpsertUnit(ctx, "Cálculo I (renamed)", "team-1")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("same team must keep its row: %s != %s", first, second)
	}
}

func TestSQLiteCollectionUpsertKeepsChannelKey(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()
	unitID, err := cat.UpsertUnit(ctx, "Física", "team-2")
	if err != nil {
		t.Fatal(err)
	}

	rec := CollectionRecord{
		Name: "General", UnitID: unitID, Semester: "1", ClassYear: 2026,
		ChannelID: "chan-x", Kind: "standard",
	}
	first, err := cat.UpsertCollection(ctx, rec)
	if err != nil {
		t.Fatal(err)
	}
	rec.Semester = "2"
	second, err := cat.UpsertCollection(ctx, rec)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("same channel must keep its row: %s != %s", first, second)
	}
}

func TestOpenDispatchesByDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.db")
	cat, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("sqlite dispatch failed: %v", err)
	}
	defer cat.Close()
	if _, ok := cat.(*SQLiteCatalog); !ok {
		t.Errorf("expected SQLite backend for plain path, got %T", cat)
	}
}
