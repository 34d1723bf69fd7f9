package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hunterjsb/octanecore/internal/leaderboard"
)

var medals = []string{"🥇", "🥈", "🥉"}

// handleLeaderboard handles the /leaderboard command
func (b *DiscordBot) handleLeaderboard(ctx context.Context, req request) (*discordgo.MessageEmbed, error) {
	count := req.Int("count", leaderboard.DefaultSize)
	if count < 1 || count > maxLeaderboardSize {
		count = leaderboard.DefaultSize
	}

	concurrency := leaderboard.DefaultConcurrency
	if b.Config != nil && b.Config.LeaderboardConcurrency > 0 {
		concurrency = b.Config.LeaderboardConcurrency
	}

	entries, err := leaderboard.TopN(ctx, b.Accounts, b.Stats, count, leaderboard.WithConcurrency(concurrency))
	if err != nil {
		return nil, err
	}

	return formatLeaderboardEmbed(entries, b.Accounts.Len()), nil
}

// formatLeaderboardEmbed renders ranked entries, one line per player
func formatLeaderboardEmbed(entries []leaderboard.Entry, linked int) *discordgo.MessageEmbed {
	var sb strings.Builder
	for idx, e := range entries {
		place := fmt.Sprintf("`%d.`", idx+1)
		if idx < len(medals) {
			place = medals[idx]
		}
		sb.WriteString(fmt.Sprintf("%s **%s** (`%s`) • %.0f MMR", place, e.Username, e.Platform.Display(), e.MMR))
		if e.Rank != "" {
			sb.WriteString(fmt.Sprintf(" • %s", e.Rank))
		}
		sb.WriteString("\n")
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏁 Top %d by MMR", len(entries)),
		Description: strings.TrimRight(sb.String(), "\n"),
		Color:       colorStats,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d of %d linked players ranked", len(entries), linked),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
