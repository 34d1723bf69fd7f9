package tracker

import "github.com/hunterjsb/octanecore/internal/accounts"

// API base URL
const (
	TRACKER_BASE_URL = "https://public-api.tracker.gg/v2"
	API_KEY_HEADER   = "TRN-Api-Key"
)

// Snapshot is a normalised view of a player's stats. It is produced fresh for
// each lookup and never persisted.
type Snapshot struct {
	Platform  accounts.Platform
	Username  string
	Rank      string
	MMR       float64
	Wins      int
	Goals     int
	AvatarURL string
}

// Profile API Types

type ProfileResponse struct {
	Data *ProfileData `json:"data"`
}

type ProfileData struct {
	PlatformInfo PlatformInfo `json:"platformInfo"`
	Segments     []SegmentDto `json:"segments"`
}

type PlatformInfo struct {
	PlatformSlug       string `json:"platformSlug"`
	PlatformUserHandle string `json:"platformUserHandle"`
	AvatarURL          string `json:"avatarUrl"`
}

type SegmentDto struct {
	Type  string     `json:"type"`
	Stats SegmentSet `json:"stats"`
}

type SegmentSet struct {
	Rating *StatDto `json:"rating"`
	Wins   *StatDto `json:"wins"`
	Goals  *StatDto `json:"goals"`
}

// StatDto fields are pointers so a missing value can be told apart from zero
type StatDto struct {
	Value        *float64 `json:"value"`
	DisplayValue *string  `json:"displayValue"`
}
