package commands

import "github.com/bwmarrin/discordgo"

func GetCommands() []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageServer)

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "pair",
			Description:              "Run a new round of 1:1 pairings",
			DMPermission:             boolPtr(false),
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role whose members get paired (defaults to the configured role)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "filler_role",
					Description: "Role whose members can pair with the odd one out",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "carry",
					Description: "Include people left unpaired last round (default true)",
				},
			},
		},
		{
			Name:         "pairme",
			Description:  "Get paired now with someone who is still free",
			DMPermission: boolPtr(false),
		},
		{
			Name:         "pairs",
			Description:  "Show the latest pairings",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "here",
					Description: "Post the pairings in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "dm",
					Description: "Send the pairings to you in a DM",
				},
			},
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
