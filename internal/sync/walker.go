package sync

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dlfarias/teamvault/internal/logging"
	"github.com/dlfarias/teamvault/internal/types"
	"github.com/dlfarias/teamvault/internal/utils"
)

// Lister enumerates the children of a drive item
type Lister interface {
	ListChildren(ctx context.Context, driveID, itemID string) ([]types.DriveItem, error)
}

// Walker descends a collection's folder tree, handing every file to the
// syncer. Sibling folders are walked concurrently; the download cap lives in
// the syncer's semaphore, not here, so discovery can run ahead of transfers.
type Walker struct {
	lister Lister
	syncer *Syncer
	logger logging.Logger
}

// NewWalker builds a walker over the given lister and syncer
func NewWalker(lister Lister, syncer *Syncer, logger logging.Logger) *Walker {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Walker{lister: lister, syncer: syncer, logger: logger}
}

// Walk traverses the tree rooted at root. keyDir is the sanitized storage
// prefix for files directly under root; each subfolder appends its own
// sanitized name. A listing failure on one folder skips that subtree and is
// recorded, so one bad folder cannot sink the collection. Only credential
// expiry and context cancellation propagate.
func (w *Walker) Walk(ctx context.Context, collectionID string, root types.DriveItem, keyDir string) error {
	children, err := w.lister.ListChildren(ctx, root.DriveID, root.ID)
	if err != nil {
		if utils.IsCode(err, utils.ErrCodeCredentialExpired) || ctx.Err() != nil {
			return err
		}
		w.syncer.stats.FilesErrored.Add(1)
		w.logger.Warn("folder listing failed, skipping subtree",
			logging.F("folder", root.Name),
			logging.F("code", utils.CodeOf(err)),
			logging.F("error", err.Error()))
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, child := range children {
		child := child
		if child.Folder {
			subDir := utils.AppendKey(keyDir, child.Name)
			g.Go(func() error {
				return w.Walk(ctx, collectionID, child, subDir)
			})
			continue
		}
		g.Go(func() error {
			_, err := w.syncer.SyncItem(ctx, collectionID, keyDir, child)
			return err
		})
	}
	return g.Wait()
}
