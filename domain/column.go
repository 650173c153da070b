package domain

// Column is a vertical lane on the board. Position defines left-to-right
// order and is reassigned 0..N-1 whenever columns are reordered.
type Column struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Color    string `json:"color,omitempty"`
	UserID   string `json:"user_id"`
}
