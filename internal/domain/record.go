package domain

import "time"

// VerificationRecord is a pending single-use verification key issued by a
// game server for one player. At most one active record exists per player;
// a new registration replaces the previous one.
type VerificationRecord struct {
	PlayerID  string
	Key       string
	Nickname  string
	CreatedAt time.Time
	ExpiresAt time.Time
	Consumed  bool
}

// Active reports whether the record can still be consumed at the given time.
func (r *VerificationRecord) Active(now time.Time) bool {
	return !r.Consumed && now.Before(r.ExpiresAt)
}

// CompletionEntry records a finished verification, queued for the polling
// client. Entries are delivered at most once: the pending-completions
// endpoint drains them.
type CompletionEntry struct {
	ID         string `json:"-"`
	SteamID    string `json:"steamid"`
	DiscordID  string `json:"discord_id"`
	VerifiedBy string `json:"verified_by"`
}
