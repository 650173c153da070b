package domain

import "time"

// Profile holds per-user data kept outside the auth provider: display
// fields, the presence heartbeat target and stored preferences.
type Profile struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name,omitempty"`
	Email               string    `json:"email"`
	AvatarURL           string    `json:"avatar_url,omitempty"`
	LastSeenAt          time.Time `json:"last_seen_at"`
	ConfirmBeforeDelete bool      `json:"confirm_before_delete"`
}

// Owner identifies the user a backup belongs to.
type Owner struct {
	ID    string `json:"user_id"`
	Email string `json:"user_email"`
}
