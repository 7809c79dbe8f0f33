package sync

import (
	"context"
	"strings"
	stdsync "sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dlfarias/teamvault/internal/catalog"
	"github.com/dlfarias/teamvault/internal/graph"
	"github.com/dlfarias/teamvault/internal/logging"
	"github.com/dlfarias/teamvault/internal/types"
	"github.com/dlfarias/teamvault/internal/utils"
)

// RemoteAPI is the discovery surface of the remote store
type RemoteAPI interface {
	ListJoinedTeams(ctx context.Context) ([]types.Team, error)
	ListChannels(ctx context.Context, teamID string) ([]types.Channel, error)
	GetPrimaryChannel(ctx context.Context, teamID string) (types.Channel, error)
	GetFilesFolder(ctx context.Context, teamID, channelID string) (types.DriveItem, error)
	ListTeamMembers(ctx context.Context, teamID string) ([]types.Member, error)
	GetGroupDrive(ctx context.Context, groupID string) (types.Drive, error)
	GetTeamDrive(ctx context.Context, teamID string) (types.Drive, error)
	GetSiteByURL(ctx context.Context, hostname, sitePath string) (types.Site, error)
	ListSiteDrives(ctx context.Context, siteID string) ([]types.Drive, error)
	GetDriveRoot(ctx context.Context, driveID string) (types.DriveItem, error)
}

// CollectionCatalog is the catalog slice the scraper writes discovery into
type CollectionCatalog interface {
	UpsertUnit(ctx context.Context, name, teamID string) (string, error)
	UpsertOwner(ctx context.Context, name, email string) (string, error)
	UpsertCollection(ctx context.Context, rec catalog.CollectionRecord) (string, error)
}

// Options tunes a scraper run
type Options struct {
	// KeyPrefix namespaces every storage key written by the run
	KeyPrefix string
	// Semester and ClassYear label every collection
	Semester  string
	ClassYear int
	// ForbiddenRetries is how many extra channel-listing attempts a denied
	// team gets before the primary-channel fallback
	ForbiddenRetries    int
	ForbiddenRetryDelay time.Duration
}

// Libraries every site carries by default. The per-channel pass already
// covers their content, so the supplementary pass skips them by name.
var defaultLibraryNames = map[string]bool{
	"documents":        true,
	"shared documents": true,
	"documentos":       true,
}

// Scraper drives one full run: team discovery, channel and library
// resolution, and the walk of every reachable file tree. Teams are processed
// concurrently; only credential expiry aborts the run.
type Scraper struct {
	api     RemoteAPI
	catalog CollectionCatalog
	walker  *Walker
	stats   *RunStats
	logger  logging.Logger
	opts    Options
}

// NewScraper wires the orchestrator
func NewScraper(api RemoteAPI, cat CollectionCatalog, walker *Walker,
	stats *RunStats, logger logging.Logger, opts Options) *Scraper {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Scraper{api: api, catalog: cat, walker: walker, stats: stats, logger: logger, opts: opts}
}

// Run mirrors every joined team. The team listing itself is fatal on error;
// after that each team fails independently.
func (s *Scraper) Run(ctx context.Context) error {
	teams, err := s.api.ListJoinedTeams(ctx)
	if err != nil {
		return err
	}
	s.stats.TeamsTotal.Add(int64(len(teams)))
	s.logger.Info("discovered teams", logging.F("count", len(teams)))

	g, ctx := errgroup.WithContext(ctx)
	for _, team := range teams {
		team := team
		g.Go(func() error {
			return s.syncTeam(ctx, team)
		})
	}
	return g.Wait()
}

// syncTeam mirrors one team: owner and unit records, the per-channel walk,
// then the supplementary site-library pass. Returns an error only for
// credential expiry or cancellation.
func (s *Scraper) syncTeam(ctx context.Context, team types.Team) error {
	log := s.logger.WithContext(ctx)

	ownerID := s.resolveOwner(ctx, team.ID)

	unitID, err := s.catalog.UpsertUnit(ctx, utils.SanitizeName(team.DisplayName), team.ID)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		log.Error("unit record failed, skipping team",
			logging.F("team", team.DisplayName), logging.F("error", err.Error()))
		return nil
	}

	channels, viaFallback, err := s.listChannels(ctx, team.ID)
	if err != nil {
		if utils.IsCode(err, utils.ErrCodeCredentialExpired) || ctx.Err() != nil {
			return err
		}
		// Denial of the channel path does not block the supplementary pass
		s.stats.TeamsDenied.Add(1)
		log.Warn("channel access denied",
			logging.F("team", team.DisplayName),
			logging.F("code", utils.CodeOf(err)))
		channels = nil
	}
	if viaFallback {
		s.stats.TeamsFallback.Add(1)
		log.Info("channel listing denied, using primary channel",
			logging.F("team", team.DisplayName))
	}

	// Channel roots are walked concurrently; the download semaphore inside
	// the syncer is what bounds actual transfers. The hints and the walked
	// set are shared across the group, hence the mutex.
	var mu stdsync.Mutex
	walked := make(map[string]bool)
	var siteHint, urlHint string

	g, gctx := errgroup.WithContext(ctx)
	for _, ch := range channels {
		ch := ch
		g.Go(func() error {
			root, err := s.api.GetFilesFolder(gctx, team.ID, ch.ID)
			if err != nil {
				if utils.IsCode(err, utils.ErrCodeCredentialExpired) || gctx.Err() != nil {
					return err
				}
				log.Warn("channel file root unavailable, skipping channel",
					logging.F("team", team.DisplayName),
					logging.F("channel", ch.DisplayName),
					logging.F("code", utils.CodeOf(err)))
				return nil
			}
			mu.Lock()
			if root.SiteID != "" {
				siteHint = root.SiteID
			}
			if urlHint == "" {
				urlHint = ch.WebURL
			}
			walked[root.DriveID] = true
			mu.Unlock()

			kind := types.CollectionStandard
			if viaFallback {
				kind = types.CollectionPrimaryFallback
			}
			collectionID, err := s.catalog.UpsertCollection(gctx, catalog.CollectionRecord{
				Name:      utils.SanitizeName(ch.DisplayName),
				UnitID:    unitID,
				OwnerID:   ownerID,
				Semester:  s.opts.Semester,
				ClassYear: s.opts.ClassYear,
				ChannelID: ch.ID,
				Kind:      kind,
			})
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				log.Error("collection record failed, skipping channel",
					logging.F("channel", ch.DisplayName), logging.F("error", err.Error()))
				return nil
			}

			keyDir := utils.JoinKey(s.opts.KeyPrefix, team.DisplayName, ch.DisplayName)
			if err := s.walker.Walk(gctx, collectionID, root, keyDir); err != nil {
				return err
			}
			s.stats.CollectionsWalked.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return s.syncSiteLibraries(ctx, team, unitID, ownerID, siteHint, urlHint, walked)
}

// syncSiteLibraries is the supplementary pass: document libraries living on
// the team's site that the per-channel endpoint never surfaces. It always
// runs, even for teams that needed the primary-channel fallback. Failures
// here are logged and swallowed; the pass is best-effort.
func (s *Scraper) syncSiteLibraries(ctx context.Context, team types.Team,
	unitID, ownerID, siteHint, urlHint string, walked map[string]bool) error {
	log := s.logger.WithContext(ctx)

	siteID := s.resolveSiteID(ctx, team.ID, siteHint, urlHint)
	if siteID == "" {
		log.Debug("no site resolved, skipping supplementary pass",
			logging.F("team", team.DisplayName))
		return nil
	}

	drives, err := s.api.ListSiteDrives(ctx, siteID)
	if err != nil {
		if utils.IsCode(err, utils.ErrCodeCredentialExpired) || ctx.Err() != nil {
			return err
		}
		log.Warn("site library listing failed",
			logging.F("team", team.DisplayName),
			logging.F("code", utils.CodeOf(err)))
		return nil
	}

	for _, drive := range drives {
		if walked[drive.ID] || defaultLibraryNames[strings.ToLower(drive.Name)] {
			continue
		}
		root, err := s.api.GetDriveRoot(ctx, drive.ID)
		if err != nil {
			if utils.IsCode(err, utils.ErrCodeCredentialExpired) || ctx.Err() != nil {
				return err
			}
			log.Warn("library root unavailable, skipping",
				logging.F("library", drive.Name),
				logging.F("code", utils.CodeOf(err)))
			continue
		}

		collectionID, err := s.catalog.UpsertCollection(ctx, catalog.CollectionRecord{
			Name:      utils.SanitizeName(drive.Name),
			UnitID:    unitID,
			OwnerID:   ownerID,
			Semester:  s.opts.Semester,
			ClassYear: s.opts.ClassYear,
			ChannelID: drive.ID,
			Kind:      types.CollectionSupplementaryLibrary,
		})
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			log.Error("collection record failed, skipping library",
				logging.F("library", drive.Name), logging.F("error", err.Error()))
			continue
		}

		keyDir := utils.JoinKey(s.opts.KeyPrefix, team.DisplayName, drive.Name)
		walked[drive.ID] = true
		if err := s.walker.Walk(ctx, collectionID, root, keyDir); err != nil {
			return err
		}
		s.stats.CollectionsWalked.Add(1)
	}
	return nil
}

// listChannels lists a team's channels, retrying denials a configured number
// of times before trying the primary channel exactly once. When both fail,
// the original listing error is returned so the caller can classify the
// denial.
func (s *Scraper) listChannels(ctx context.Context, teamID string) ([]types.Channel, bool, error) {
	var lastErr error
	for attempt := 0; attempt <= s.opts.ForbiddenRetries; attempt++ {
		channels, err := s.api.ListChannels(ctx, teamID)
		if err == nil {
			return channels, false, nil
		}
		lastErr = err
		if utils.IsCode(err, utils.ErrCodeCredentialExpired) {
			return nil, false, err
		}
		if !utils.IsCode(err, utils.ErrCodeForbidden) {
			break
		}
		if attempt < s.opts.ForbiddenRetries {
			if err := sleep(ctx, s.opts.ForbiddenRetryDelay); err != nil {
				return nil, false, err
			}
		}
	}

	// Only a denial earns the fallback; transient failures already spent
	// their retry budget inside the client and must surface as-is.
	if !utils.IsCode(lastErr, utils.ErrCodeForbidden) {
		return nil, false, lastErr
	}

	primary, err := s.api.GetPrimaryChannel(ctx, teamID)
	if err != nil {
		if utils.IsCode(err, utils.ErrCodeCredentialExpired) {
			return nil, false, err
		}
		return nil, false, lastErr
	}
	return []types.Channel{primary}, true, nil
}

// resolveOwner finds the team's first owner and records it. Best-effort:
// membership may be hidden, and owners without an email cannot be keyed.
func (s *Scraper) resolveOwner(ctx context.Context, teamID string) string {
	members, err := s.api.ListTeamMembers(ctx, teamID)
	if err != nil {
		s.logger.Debug("membership unavailable",
			logging.F("team", teamID), logging.F("code", utils.CodeOf(err)))
		return ""
	}
	for _, m := range members {
		if m.IsOwner() && m.Email != "" {
			id, err := s.catalog.UpsertOwner(ctx, m.DisplayName, m.Email)
			if err != nil {
				s.logger.Warn("owner record failed",
					logging.F("email", m.Email), logging.F("error", err.Error()))
				return ""
			}
			return id
		}
	}
	return ""
}

// resolveSiteID finds the SharePoint site backing a team, trying the cheap
// signals first: the hint captured from a filesFolder response, then the
// group and team drive endpoints, then resolving the browsable URL.
func (s *Scraper) resolveSiteID(ctx context.Context, teamID, hint, urlHint string) string {
	if hint != "" {
		return hint
	}

	drive, err := s.api.GetGroupDrive(ctx, teamID)
	if err != nil {
		drive, err = s.api.GetTeamDrive(ctx, teamID)
	}
	if err == nil {
		if drive.SiteID != "" {
			return drive.SiteID
		}
		if urlHint == "" {
			urlHint = drive.WebURL
		}
	}

	if urlHint != "" {
		hostname, sitePath, err := graph.ParseSiteURL(urlHint)
		if err == nil {
			if site, err := s.api.GetSiteByURL(ctx, hostname, sitePath); err == nil {
				return site.ID
			}
		}
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
