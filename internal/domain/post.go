package domain

import "time"

// Post is a text and/or image entry authored by a user.
type Post struct {
	ID        string
	UserID    string
	Text      string
	Img       string
	Likes     []string
	Comments  []Comment
	CreatedAt time.Time
	UpdatedAt time.Time

	// Author is populated by the service layer for responses.
	Author *User
}

// Comment belongs to a post.
type Comment struct {
	ID        string
	PostID    string
	UserID    string
	Text      string
	CreatedAt time.Time

	Author *User
}

// LikedBy reports whether the user with the given id has liked p.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
