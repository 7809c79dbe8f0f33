package types

// Team represents a joined team (the remote organizational unit)
type Team struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// Channel represents one channel of a team
type Channel struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	MembershipType string `json:"membershipType,omitempty"`
	WebURL         string `json:"webUrl,omitempty"`
}

// CollectionKind distinguishes how a file root was discovered
type CollectionKind string

const (
	// CollectionStandard is a channel found through the regular listing
	CollectionStandard CollectionKind = "standard"
	// CollectionPrimaryFallback is the primary channel used when listing is denied
	CollectionPrimaryFallback CollectionKind = "primaryFallback"
	// CollectionSupplementaryLibrary is a site document library invisible to
	// the per-channel endpoint
	CollectionSupplementaryLibrary CollectionKind = "supplementaryLibrary"
)

// Member is one entry of a team's membership list
type Member struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email,omitempty"`
	UserID      string   `json:"userId,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// IsOwner reports whether the member carries the owner role
func (m Member) IsOwner() bool {
	for _, r := range m.Roles {
		if r == "owner" {
			return true
		}
	}
	return false
}

// Drive is a document library root (a SharePoint drive)
type Drive struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl,omitempty"`
	// SiteID is populated when the API includes sharepointIds; it feeds the
	// supplementary-library discovery pass.
	SiteID string `json:"siteId,omitempty"`
}

// Site is a SharePoint site resolved by URL
type Site struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	WebURL string `json:"webUrl,omitempty"`
}

// DriveItem is one node of a drive hierarchy: a folder or a file.
// It is ephemeral, read from the API and never persisted as-is.
type DriveItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	ETag    string `json:"eTag,omitempty"`
	Size    int64  `json:"size,omitempty"`
	WebURL  string `json:"webUrl,omitempty"`
	DriveID string `json:"driveId,omitempty"`
	// SiteID is the opportunistic hint captured from filesFolder responses
	SiteID string `json:"siteId,omitempty"`
	Folder bool   `json:"folder"`
}

// Fingerprint returns the change token for the item. Some tenants omit the
// eTag; the item ID is the fallback, which cannot detect in-place content
// changes on such items.
func (d DriveItem) Fingerprint() string {
	if d.ETag != "" {
		return d.ETag
	}
	return d.ID
}

// RequestType labels the remote operation for logging and error context
type RequestType string

const (
	RequestTypeListTeams    RequestType = "list_teams"
	RequestTypeListChannels RequestType = "list_channels"
	RequestTypeListChildren RequestType = "list_children"
	RequestTypeListMembers  RequestType = "list_members"
	RequestTypeResolveSite  RequestType = "resolve_site"
	RequestTypeDownload     RequestType = "download"
)

// RequestContext carries identifiers through one remote request path
type RequestContext struct {
	TeamID      string
	DriveID     string
	RequestType RequestType
	TraceID     string
}
