package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dlfarias/teamvault/internal/catalog"
	"github.com/dlfarias/teamvault/internal/types"
)

// MockRemote mocks the remote API surface with function fields. Unset fields
// return empty results so tests only wire what they assert on.
type MockRemote struct {
	ListJoinedTeamsFunc   func(ctx context.Context) ([]types.Team, error)
	ListChannelsFunc      func(ctx context.Context, teamID string) ([]types.Channel, error)
	GetPrimaryChannelFunc func(ctx context.Context, teamID string) (types.Channel, error)
	GetFilesFolderFunc    func(ctx context.Context, teamID, channelID string) (types.DriveItem, error)
	ListTeamMembersFunc   func(ctx context.Context, teamID string) ([]types.Member, error)
	GetGroupDriveFunc     func(ctx context.Context, groupID string) (types.Drive, error)
	GetTeamDriveFunc      func(ctx context.Context, teamID string) (types.Drive, error)
	GetSiteByURLFunc      func(ctx context.Context, hostname, sitePath string) (types.Site, error)
	ListSiteDrivesFunc    func(ctx context.Context, siteID string) ([]types.Drive, error)
	GetDriveRootFunc      func(ctx context.Context, driveID string) (types.DriveItem, error)
	ListChildrenFunc      func(ctx context.Context, driveID, itemID string) ([]types.DriveItem, error)
	DownloadFunc          func(ctx context.Context, driveID, itemID string) ([]byte, error)

	ListChannelsCalls      atomic.Int64
	GetPrimaryChannelCalls atomic.Int64
	DownloadCalls          atomic.Int64
}

func (m *MockRemote) ListJoinedTeams(ctx context.Context) ([]types.Team, error) {
	if m.ListJoinedTeamsFunc != nil {
		return m.ListJoinedTeamsFunc(ctx)
	}
	return nil, nil
}

func (m *MockRemote) ListChannels(ctx context.Context, teamID string) ([]types.Channel, error) {
	m.ListChannelsCalls.Add(1)
	if m.ListChannelsFunc != nil {
		return m.ListChannelsFunc(ctx, teamID)
	}
	return nil, nil
}

func (m *MockRemote) GetPrimaryChannel(ctx context.Context, teamID string) (types.Channel, error) {
	m.GetPrimaryChannelCalls.Add(1)
	if m.GetPrimaryChannelFunc != nil {
		return m.GetPrimaryChannelFunc(ctx, teamID)
	}
	return types.Channel{}, nil
}

func (m *MockRemote) GetFilesFolder(ctx context.Context, teamID, channelID string) (types.DriveItem, error) {
	if m.GetFilesFolderFunc != nil {
		return m.GetFilesFolderFunc(ctx, teamID, channelID)
	}
	return types.DriveItem{ID: "root-" + channelID, DriveID: "drive-" + channelID, Folder: true}, nil
}

func (m *MockRemote) ListTeamMembers(ctx context.Context, teamID string) ([]types.Member, error) {
	if m.ListTeamMembersFunc != nil {
		return m.ListTeamMembersFunc(ctx, teamID)
	}
	return nil, nil
}

func (m *MockRemote) GetGroupDrive(ctx context.Context, groupID string) (types.Drive, error) {
	if m.GetGroupDriveFunc != nil {
		return m.GetGroupDriveFunc(ctx, groupID)
	}
	return types.Drive{}, nil
}

func (m *MockRemote) GetTeamDrive(ctx context.Context, teamID string) (types.Drive, error) {
	if m.GetTeamDriveFunc != nil {
		return m.GetTeamDriveFunc(ctx, teamID)
	}
	return types.Drive{}, nil
}

func (m *MockRemote) GetSiteByURL(ctx context.Context, hostname, sitePath string) (types.Site, error) {
	if m.GetSiteByURLFunc != nil {
		return m.GetSiteByURLFunc(ctx, hostname, sitePath)
	}
	return types.Site{}, nil
}

func (m *MockRemote) ListSiteDrives(ctx context.Context, siteID string) ([]types.Drive, error) {
	if m.ListSiteDrivesFunc != nil {
		return m.ListSiteDrivesFunc(ctx, siteID)
	}
	return nil, nil
}

func (m *MockRemote) GetDriveRoot(ctx context.Context, driveID string) (types.DriveItem, error) {
	if m.GetDriveRootFunc != nil {
		return m.GetDriveRootFunc(ctx, driveID)
	}
	return types.DriveItem{ID: "root", DriveID: driveID, Folder: true}, nil
}

func (m *MockRemote) ListChildren(ctx context.Context, driveID, itemID string) ([]types.DriveItem, error) {
	if m.ListChildrenFunc != nil {
		return m.ListChildrenFunc(ctx, driveID, itemID)
	}
	return nil, nil
}

func (m *MockRemote) Download(ctx context.Context, driveID, itemID string) ([]byte, error) {
	m.DownloadCalls.Add(1)
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, driveID, itemID)
	}
	return []byte("content"), nil
}

// MockCatalog is an in-memory catalog keyed like the real backends
type MockCatalog struct {
	mu           sync.Mutex
	Fingerprints map[string]string
	Archives     []catalog.ArchiveRecord
	Units        map[string]string
	Owners       map[string]string
	Collections  []catalog.CollectionRecord

	GetFingerprintFunc func(ctx context.Context, driveItemID string) (string, bool, error)
	UpsertArchiveFunc  func(ctx context.Context, rec catalog.ArchiveRecord) error
}

// NewMockCatalog creates an empty in-memory catalog
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Fingerprints: make(map[string]string),
		Units:        make(map[string]string),
		Owners:       make(map[string]string),
	}
}

func (m *MockCatalog) GetFingerprint(ctx context.Context, driveItemID string) (string, bool, error) {
	if m.GetFingerprintFunc != nil {
		return m.GetFingerprintFunc(ctx, driveItemID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fp, ok := m.Fingerprints[driveItemID]
	return fp, ok, nil
}

func (m *MockCatalog) UpsertArchive(ctx context.Context, rec catalog.ArchiveRecord) error {
	if m.UpsertArchiveFunc != nil {
		return m.UpsertArchiveFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Archives = append(m.Archives, rec)
	m.Fingerprints[rec.DriveItemID] = rec.ETag
	return nil
}

func (m *MockCatalog) UpsertUnit(ctx context.Context, name, teamID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "unit-" + teamID
	m.Units[teamID] = name
	return id, nil
}

func (m *MockCatalog) UpsertOwner(ctx context.Context, name, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "owner-" + email
	m.Owners[email] = name
	return id, nil
}

func (m *MockCatalog) UpsertCollection(ctx context.Context, rec catalog.CollectionRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Collections = append(m.Collections, rec)
	return "collection-" + rec.ChannelID, nil
}

func (m *MockCatalog) Close() error {
	return nil
}

// MockStore is an in-memory object store
type MockStore struct {
	mu      sync.Mutex
	Objects map[string][]byte

	PutFunc func(ctx context.Context, key string, data []byte) (string, error)
}

// NewMockStore creates an empty in-memory store
func NewMockStore() *MockStore {
	return &MockStore{Objects: make(map[string][]byte)}
}

func (m *MockStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	return "mem://" + key, nil
}

func (m *MockStore) Close() error {
	return nil
}
