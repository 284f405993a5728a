package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const membersPageSize = 1000

// Minimal session interface for role and member lookups.
type memberSession interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
}

type memberDirectory struct {
	session memberSession
}

func newMemberDirectory(s memberSession) *memberDirectory {
	return &memberDirectory{session: s}
}

// RoleMembers returns the IDs of all non-bot members holding role, which may
// be a role ID or a role name (case-insensitive).
func (d *memberDirectory) RoleMembers(guildID, role string) ([]string, error) {
	roleID, err := d.resolveRole(guildID, role)
	if err != nil {
		return nil, err
	}

	var ids []string
	after := ""
	for {
		page, err := d.session.GuildMembers(guildID, after, membersPageSize)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		for _, m := range page {
			if m.User == nil || m.User.Bot {
				continue
			}
			if hasRole(m, roleID) {
				ids = append(ids, m.User.ID)
			}
		}
		if len(page) < membersPageSize {
			break
		}
		after = page[len(page)-1].User.ID
	}
	return ids, nil
}

func (d *memberDirectory) resolveRole(guildID, role string) (string, error) {
	roles, err := d.session.GuildRoles(guildID)
	if err != nil {
		return "", fmt.Errorf("list roles: %w", err)
	}
	for _, r := range roles {
		if r.ID == role {
			return r.ID, nil
		}
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, role) {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("role %q not found in guild %s", role, guildID)
}

func hasRole(m *discordgo.Member, roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
