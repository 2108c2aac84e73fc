package domain

import "time"

// User is the stored identity record: credentials, profile and social-graph references.
type User struct {
	ID             string
	Username       string
	FullName       string
	Email          string
	PasswordHash   string
	Bio            string
	Link           string
	ProfilePicture *string
	CoverPicture   *string
	Followers      []string
	Following      []string
	LikedPosts     []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(id string) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}
