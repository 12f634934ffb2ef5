package models

import "time"

// UserPostCount represents a row of the top-posters report
type UserPostCount struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	PostCount int    `json:"post_count"`
}

// UserTitleStats represents a row of the average-title-length report
type UserTitleStats struct {
	UserID      int     `json:"user_id"`
	Username    string  `json:"username"`
	AvgTitleLen float64 `json:"avg_title_len"`
}

// ShortTitlePost represents a row of the short-titles report
type ShortTitlePost struct {
	PostID   int    `json:"post_id"`
	UserID   int    `json:"user_id"`
	Title    string `json:"title"`
	TitleLen int    `json:"title_len"`
}

// RunSummary captures the outcome of a single pipeline run
type RunSummary struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	UsersLoaded  int       `json:"users_loaded"`
	PostsLoaded  int       `json:"posts_loaded"`
	UsedFallback bool      `json:"used_fallback"`
	Error        string    `json:"error,omitempty"`
}
