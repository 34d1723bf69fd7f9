package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hunterjsb/octanecore/internal/accounts"
	"github.com/hunterjsb/octanecore/internal/tracker"
)

const (
	colorStats        = 0xff6600
	rocketLeagueIcon  = "https://www.rocketleague.com/_next/static/media/rocket-league.6f2c3b84.svg"
	commentaryTimeout = 5 * time.Second
)

// handleStats handles the /stats command
func (b *DiscordBot) handleStats(ctx context.Context, req request) (*discordgo.MessageEmbed, error) {
	acc, ok := b.Accounts.Get(req.OwnerID)
	if !ok {
		return nil, accounts.ErrNotLinked
	}

	snap, err := b.Stats.Fetch(ctx, acc.Platform, acc.Username)
	if err != nil {
		return nil, fmt.Errorf("stats for %s/%s: %w", acc.Platform, acc.Username, err)
	}

	embed := formatStatsEmbed(acc, snap)
	if comment := b.statsComment(ctx, snap); comment != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "💬 Coach",
			Value:  comment,
			Inline: false,
		})
	}
	return embed, nil
}

// statsComment returns an optional AI remark, or "" if commentary is off or fails
func (b *DiscordBot) statsComment(ctx context.Context, snap *tracker.Snapshot) string {
	if b.Commentary == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, commentaryTimeout)
	defer cancel()

	comment, err := b.Commentary.StatsComment(ctx, snap)
	if err != nil {
		slog.Debug("Stats commentary skipped", "error", err)
		return ""
	}
	return comment
}

// formatStatsEmbed formats a stats snapshot into a Discord embed
func formatStatsEmbed(acc accounts.LinkedAccount, snap *tracker.Snapshot) *discordgo.MessageEmbed {
	thumbnail := rocketLeagueIcon
	if snap.AvatarURL != "" {
		thumbnail = snap.AvatarURL
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s's Rocket League Stats", acc.Username),
		Description: fmt.Sprintf("📊 Platform: `%s`", acc.Platform.Display()),
		Color:       colorStats,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: thumbnail},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏆 Rank", Value: snap.Rank, Inline: true},
			{Name: "🎯 MMR", Value: fmt.Sprintf("%.0f", snap.MMR), Inline: true},
			{Name: "✅ Wins", Value: fmt.Sprintf("%d", snap.Wins), Inline: true},
			{Name: "🥅 Goals", Value: fmt.Sprintf("%d", snap.Goals), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
