package models

// Post represents a cleaned row of the posts table. UserID nominally
// references users.user_id but is not constraint-checked.
type Post struct {
	PostID   int    `json:"post_id"`
	UserID   int    `json:"user_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	TitleLen int    `json:"title_len"` // rune count of the trimmed title
}
