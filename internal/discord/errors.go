package discord

import (
	"errors"
	"log/slog"

	"github.com/hunterjsb/octanecore/internal/accounts"
	"github.com/hunterjsb/octanecore/internal/leaderboard"
	"github.com/hunterjsb/octanecore/internal/tracker"
)

// describeError turns a command failure into a short title and message for the caller
func describeError(err error) (string, string) {
	switch {
	case errors.Is(err, accounts.ErrInvalidPlatform):
		return "Invalid Platform", "Unknown platform. Pick one of steam, epic, psn, xbl."
	case errors.Is(err, accounts.ErrInvalidUsername):
		return "Invalid Input", "Username can't be empty."
	case errors.Is(err, accounts.ErrNotLinked):
		return "Not Linked", "You haven't linked your Rocket League account yet. Use `/link`."
	case errors.Is(err, tracker.ErrProviderUnavailable), errors.Is(err, tracker.ErrMalformedResponse):
		return "Stats Unavailable", "Couldn't fetch your stats. Try again."
	case errors.Is(err, leaderboard.ErrEmptyDirectory):
		return "Leaderboard", "No one has linked an account yet."
	case errors.Is(err, leaderboard.ErrNoData):
		return "Leaderboard", "Couldn't fetch stats for any linked player. Try again later."
	case errors.Is(err, accounts.ErrPersistence):
		return "Save Failed", "Something went wrong saving your account. Try again."
	default:
		return "Error", "Something went wrong. Try again."
	}
}

// reportError logs a command failure and forwards anything operators should see to the ops log
func (b *DiscordBot) reportError(cmd Command, req request, err error) {
	switch {
	case errors.Is(err, accounts.ErrPersistence):
		slog.Error("Account store failure", "command", cmd, "owner", req.OwnerID, "error", err)
		b.Ops.Warn("Account store failure during `/%s` for <@%s>: %v", cmd, req.OwnerID, err)
	case errors.Is(err, tracker.ErrMalformedResponse):
		slog.Warn("Malformed stats response", "command", cmd, "owner", req.OwnerID, "error", err)
		b.Ops.Notify("Malformed stats response during `/%s` for <@%s>: %v", cmd, req.OwnerID, err)
	case errors.Is(err, tracker.ErrProviderUnavailable):
		slog.Warn("Stats provider unavailable", "command", cmd, "owner", req.OwnerID, "error", err)
		b.Ops.Notify("Stats lookup failed during `/%s` for <@%s>: %v", cmd, req.OwnerID, err)
	case errors.Is(err, accounts.ErrInvalidPlatform),
		errors.Is(err, accounts.ErrInvalidUsername),
		errors.Is(err, accounts.ErrNotLinked),
		errors.Is(err, leaderboard.ErrEmptyDirectory):
		slog.Debug("Command rejected", "command", cmd, "owner", req.OwnerID, "error", err)
	default:
		slog.Error("Command failed", "command", cmd, "owner", req.OwnerID, "error", err)
		b.Ops.Notify("`/%s` failed for <@%s>: %v", cmd, req.OwnerID, err)
	}
}
