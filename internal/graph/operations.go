package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dlfarias/teamvault/internal/types"
	"github.com/dlfarias/teamvault/internal/utils"
)

// Wire shapes. Raw maps never cross the package boundary; every operation
// converts into the typed records of internal/types.

type wireTeam struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

type wireChannel struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	MembershipType string `json:"membershipType"`
	WebURL         string `json:"webUrl"`
}

type wireMember struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	UserID      string   `json:"userId"`
	Roles       []string `json:"roles"`
}

type wireDrive struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WebURL        string `json:"webUrl"`
	SharePointIDs struct {
		SiteID string `json:"siteId"`
	} `json:"sharePointIds"`
}

type wireSite struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

type wireDriveItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ETag            string          `json:"eTag"`
	Size            int64           `json:"size"`
	WebURL          string          `json:"webUrl"`
	Folder          json.RawMessage `json:"folder"`
	File            json.RawMessage `json:"file"`
	ParentReference struct {
		DriveID string `json:"driveId"`
		SiteID  string `json:"siteId"`
	} `json:"parentReference"`
}

func (w wireDriveItem) toDriveItem() types.DriveItem {
	return types.DriveItem{
		ID:      w.ID,
		Name:    w.Name,
		ETag:    w.ETag,
		Size:    w.Size,
		WebURL:  w.WebURL,
		DriveID: w.ParentReference.DriveID,
		SiteID:  w.ParentReference.SiteID,
		Folder:  len(w.Folder) > 0,
	}
}

// ListJoinedTeams returns every team the credential is a member of
func (c *Client) ListJoinedTeams(ctx context.Context) ([]types.Team, error) {
	reqCtx := NewRequestContext("", "", types.RequestTypeListTeams)
	raw, err := c.getAllPages(ctx, reqCtx, "/me/joinedTeams")
	if err != nil {
		return nil, err
	}
	teams := make([]types.Team, 0, len(raw))
	for _, r := range raw {
		var w wireTeam
		if err := json.Unmarshal(r, &w); err != nil {
			continue
		}
		teams = append(teams, types.Team{ID: w.ID, DisplayName: w.DisplayName, Description: w.Description})
	}
	return teams, nil
}

// ListChannels returns all channels of a team
func (c *Client) ListChannels(ctx context.Context, teamID string) ([]types.Channel, error) {
	reqCtx := NewRequestContext(teamID, "", types.RequestTypeListChannels)
	raw, err := c.getAllPages(ctx, reqCtx, fmt.Sprintf("/teams/%s/channels", teamID))
	if err != nil {
		return nil, err
	}
	channels := make([]types.Channel, 0, len(raw))
	for _, r := range raw {
		var w wireChannel
		if err := json.Unmarshal(r, &w); err != nil {
			continue
		}
		channels = append(channels, types.Channel{
			ID:             w.ID,
			DisplayName:    w.DisplayName,
			MembershipType: w.MembershipType,
			WebURL:         w.WebURL,
		})
	}
	return channels, nil
}

// GetPrimaryChannel returns the always-accessible primary channel of a team.
// Used as a fallback when the channel listing endpoint is forbidden, which
// happens on tenants that restrict the listing for some member roles even
// when the team itself is visible.
func (c *Client) GetPrimaryChannel(ctx context.Context, teamID string) (types.Channel, error) {
	reqCtx := NewRequestContext(teamID, "", types.RequestTypeListChannels)
	var w wireChannel
	if err := c.getJSON(ctx, reqCtx, fmt.Sprintf("/teams/%s/primaryChannel", teamID), &w); err != nil {
		return types.Channel{}, err
	}
	return types.Channel{ID: w.ID, DisplayName: w.DisplayName, MembershipType: w.MembershipType, WebURL: w.WebURL}, nil
}

// GetFilesFolder returns the root DriveItem of a channel's file library. The
// result carries the drive ID and, when the tenant includes it, a site ID
// hint consumed by the supplementary discovery pass.
func (c *Client) GetFilesFolder(ctx context.Context, teamID, channelID string) (types.DriveItem, error) {
	reqCtx := NewRequestContext(teamID, "", types.RequestTypeListChildren)
	var w wireDriveItem
	if err := c.getJSON(ctx, reqCtx, fmt.Sprintf("/teams/%s/channels/%s/filesFolder", teamID, channelID), &w); err != nil {
		return types.DriveItem{}, err
	}
	item := w.toDriveItem()
	item.Folder = true
	return item, nil
}

// ListChildren lists the direct children of a drive item
func (c *Client) ListChildren(ctx context.Context, driveID, itemID string) ([]types.DriveItem, error) {
	reqCtx := NewRequestContext("", driveID, types.RequestTypeListChildren)
	raw, err := c.getAllPages(ctx, reqCtx, fmt.Sprintf("/drives/%s/items/%s/children", driveID, itemID))
	if err != nil {
		return nil, err
	}
	items := make([]types.DriveItem, 0, len(raw))
	for _, r := range raw {
		var w wireDriveItem
		if err := json.Unmarshal(r, &w); err != nil {
			continue
		}
		item := w.toDriveItem()
		if item.DriveID == "" {
			item.DriveID = driveID
		}
		items = append(items, item)
	}
	return items, nil
}

// ListTeamMembers returns a team's membership. Members whose roles include
// "owner" are the unit owners.
func (c *Client) ListTeamMembers(ctx context.Context, teamID string) ([]types.Member, error) {
	reqCtx := NewRequestContext(teamID, "", types.RequestTypeListMembers)
	raw, err := c.getAllPages(ctx, reqCtx, fmt.Sprintf("/teams/%s/members", teamID))
	if err != nil {
		return nil, err
	}
	members := make([]types.Member, 0, len(raw))
	for _, r := range raw {
		var w wireMember
		if err := json.Unmarshal(r, &w); err != nil {
			continue
		}
		members = append(members, types.Member{
			ID:          w.ID,
			DisplayName: w.DisplayName,
			Email:       w.Email,
			UserID:      w.UserID,
			Roles:       w.Roles,
		})
	}
	return members, nil
}

// GetGroupDrive returns the default drive of the group backing a team. The
// groups path has different routing than the teams path and often succeeds
// where the latter 404s on non-standard provisioning.
func (c *Client) GetGroupDrive(ctx context.Context, groupID string) (types.Drive, error) {
	reqCtx := NewRequestContext(groupID, "", types.RequestTypeResolveSite)
	var w wireDrive
	if err := c.getJSON(ctx, reqCtx, fmt.Sprintf("/groups/%s/drive", groupID), &w); err != nil {
		return types.Drive{}, err
	}
	return types.Drive{ID: w.ID, Name: w.Name, WebURL: w.WebURL, SiteID: w.SharePointIDs.SiteID}, nil
}

// GetTeamDrive returns the default drive via the teams endpoint
func (c *Client) GetTeamDrive(ctx context.Context, teamID string) (types.Drive, error) {
	reqCtx := NewRequestContext(teamID, "", types.RequestTypeResolveSite)
	var w wireDrive
	if err := c.getJSON(ctx, reqCtx, fmt.Sprintf("/teams/%s/drive", teamID), &w); err != nil {
		return types.Drive{}, err
	}
	return types.Drive{ID: w.ID, Name: w.Name, WebURL: w.WebURL, SiteID: w.SharePointIDs.SiteID}, nil
}

// GetSiteByURL resolves a site from its browsable URL components, e.g.
// hostname "contoso.sharepoint.com" and path "/sites/452516_4385_2"
func (c *Client) GetSiteByURL(ctx context.Context, hostname, sitePath string) (types.Site, error) {
	reqCtx := NewRequestContext("", "", types.RequestTypeResolveSite)
	var w wireSite
	if err := c.getJSON(ctx, reqCtx, fmt.Sprintf("/sites/%s:%s", hostname, sitePath), &w); err != nil {
		return types.Site{}, err
	}
	return types.Site{ID: w.ID, Name: w.DisplayName, WebURL: w.WebURL}, nil
}

// ListSiteDrives returns every document library on a site
func (c *Client) ListSiteDrives(ctx context.Context, siteID string) ([]types.Drive, error) {
	reqCtx := NewRequestContext("", "", types.RequestTypeResolveSite)
	raw, err := c.getAllPages(ctx, reqCtx, fmt.Sprintf("/sites/%s/drives", siteID))
	if err != nil {
		return nil, err
	}
	drives := make([]types.Drive, 0, len(raw))
	for _, r := range raw {
		var w wireDrive
		if err := json.Unmarshal(r, &w); err != nil {
			continue
		}
		drives = append(drives, types.Drive{ID: w.ID, Name: w.Name, WebURL: w.WebURL, SiteID: w.SharePointIDs.SiteID})
	}
	return drives, nil
}

// GetDriveRoot returns the root item of a drive, the starting point for walking
func (c *Client) GetDriveRoot(ctx context.Context, driveID string) (types.DriveItem, error) {
	reqCtx := NewRequestContext("", driveID, types.RequestTypeListChildren)
	var w wireDriveItem
	if err := c.getJSON(ctx, reqCtx, fmt.Sprintf("/drives/%s/root", driveID), &w); err != nil {
		return types.DriveItem{}, err
	}
	item := w.toDriveItem()
	item.Folder = true
	if item.DriveID == "" {
		item.DriveID = driveID
	}
	return item, nil
}

// Download fetches the raw bytes of a file, following the redirect the API
// returns for content URLs. The byte sequence is returned untransformed.
func (c *Client) Download(ctx context.Context, driveID, itemID string) ([]byte, error) {
	reqCtx := NewRequestContext("", driveID, types.RequestTypeDownload)
	return c.get(ctx, reqCtx, c.absoluteURL(fmt.Sprintf("/drives/%s/items/%s/content", driveID, itemID)), nil)
}

// ParseSiteURL splits a browsable site URL into the hostname and site path
// accepted by GetSiteByURL. Returns an error when the URL carries no /sites/
// segment.
func ParseSiteURL(webURL string) (hostname, sitePath string, err error) {
	parsed, err := url.Parse(webURL)
	if err != nil {
		return "", "", utils.NewAppError(utils.NewSyncError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("unparseable site URL %q", webURL)).Build())
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "sites" {
		return "", "", utils.NewAppError(utils.NewSyncError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("no site path in URL %q", webURL)).Build())
	}
	return parsed.Hostname(), "/" + parts[0] + "/" + parts[1], nil
}
