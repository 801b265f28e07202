package entity

type Author struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Post is owned by the upstream service; the gateway holds read-only
// copies and refetches the whole list after any mutation.
// CreatedAt stays a string because the upstream's timestamp format is
// not part of its contract.
type Post struct {
	ID            string `json:"id"`
	Author        Author `json:"author"`
	Content       string `json:"content"`
	ImageURL      string `json:"image_url,omitempty"`
	CreatedAt     string `json:"created_at"`
	Likes         int    `json:"likes"`
	CommentsCount int    `json:"comments_count"`
}
