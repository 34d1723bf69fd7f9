package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	colorSuccess = 0x2ecc71
	colorInfo    = 0x3498db
	colorError   = 0xff0000
)

// handleLink handles the /link command
func (b *DiscordBot) handleLink(ctx context.Context, req request) (*discordgo.MessageEmbed, error) {
	acc, err := b.Accounts.Link(req.OwnerID, req.String("platform"), req.String("username"))
	if err != nil {
		return nil, err
	}

	b.Ops.Notify("<@%s> linked **%s** on `%s`", acc.OwnerID, acc.Username, acc.Platform.Display())

	return &discordgo.MessageEmbed{
		Title:       "✅ Account Linked",
		Description: fmt.Sprintf("Linked **%s** on `%s`.\nUse `/stats` to see your stats.", acc.Username, acc.Platform.Display()),
		Color:       colorSuccess,
	}, nil
}

// handleUnlink handles the /unlink command
func (b *DiscordBot) handleUnlink(ctx context.Context, req request) (*discordgo.MessageEmbed, error) {
	prev, _ := b.Accounts.Get(req.OwnerID)

	removed, err := b.Accounts.Unlink(req.OwnerID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return &discordgo.MessageEmbed{
			Title:       "Nothing to Unlink",
			Description: "You have no linked account.",
			Color:       colorInfo,
		}, nil
	}

	b.Ops.Notify("<@%s> unlinked **%s**", req.OwnerID, prev.Username)

	return &discordgo.MessageEmbed{
		Title:       "🔓 Account Unlinked",
		Description: fmt.Sprintf("**%s** is no longer linked to your Discord account.", prev.Username),
		Color:       colorSuccess,
	}, nil
}

// handlePlatform handles the /platform command
func (b *DiscordBot) handlePlatform(ctx context.Context, req request) (*discordgo.MessageEmbed, error) {
	acc, err := b.Accounts.ChangePlatform(req.OwnerID, req.String("platform"))
	if err != nil {
		return nil, err
	}

	b.Ops.Notify("<@%s> switched **%s** to `%s`", acc.OwnerID, acc.Username, acc.Platform.Display())

	return &discordgo.MessageEmbed{
		Title:       "🔁 Platform Updated",
		Description: fmt.Sprintf("**%s** is now linked on `%s`.", acc.Username, acc.Platform.Display()),
		Color:       colorSuccess,
	}, nil
}
