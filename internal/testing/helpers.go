package testing

import (
	"context"

	"github.com/dlfarias/teamvault/internal/types"
)

// TestContext creates a standard test context
func TestContext() context.Context {
	return context.Background()
}

// TestTeam creates a team fixture
func TestTeam(id, name string) types.Team {
	return types.Team{ID: id, DisplayName: name}
}

// TestChannel creates a channel fixture
func TestChannel(id, name string) types.Channel {
	return types.Channel{ID: id, DisplayName: name, MembershipType: "standard"}
}

// TestOwner creates a member fixture carrying the owner role
func TestOwner(name, email string) types.Member {
	return types.Member{
		ID:          "member-" + email,
		DisplayName: name,
		Email:       email,
		Roles:       []string{"owner"},
	}
}

// TestFile creates a file item fixture
func TestFile(id, name, etag string) types.DriveItem {
	return types.DriveItem{
		ID:      id,
		Name:    name,
		ETag:    etag,
		Size:    1024,
		DriveID: "drive-1",
	}
}

// TestFolder creates a folder item fixture
func TestFolder(id, name string) types.DriveItem {
	return types.DriveItem{
		ID:      id,
		Name:    name,
		DriveID: "drive-1",
		Folder:  true,
	}
}
