package models

// Totals is the row count summary reported by /health.
type Totals struct {
	Users        int `db:"users" json:"total_users_in_db"`
	Messages     int `db:"messages" json:"total_messages_in_db"`
	Interactions int `db:"interactions" json:"total_interactions_in_db"`
}
