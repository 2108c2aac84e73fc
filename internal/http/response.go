package http

import (
	"time"

	"social-app/internal/domain"
)

type UserResponse struct {
	ID             string   `json:"_id"`
	Username       string   `json:"username"`
	FullName       string   `json:"fullname"`
	Email          string   `json:"email"`
	Bio            string   `json:"bio"`
	Link           string   `json:"link"`
	ProfilePicture *string  `json:"profilePicture"`
	CoverPicture   *string  `json:"coverPicture"`
	Followers      []string `json:"followers"`
	Following      []string `json:"following"`
	LikedPosts     []string `json:"likedPosts"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

type CommentResponse struct {
	ID        string        `json:"_id"`
	Text      string        `json:"text"`
	User      *UserResponse `json:"user"`
	CreatedAt string        `json:"createdAt"`
}

type PostResponse struct {
	ID        string            `json:"_id"`
	User      *UserResponse     `json:"user"`
	Text      string            `json:"text,omitempty"`
	Img       string            `json:"img,omitempty"`
	Likes     []string          `json:"likes"`
	Comments  []CommentResponse `json:"comments"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

// SenderResponse is the trimmed user shown on notifications.
type SenderResponse struct {
	ID             string  `json:"_id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profilePicture"`
}

type NotificationResponse struct {
	ID        string                  `json:"_id"`
	From      *SenderResponse         `json:"from"`
	To        string                  `json:"to"`
	Type      domain.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	CreatedAt string                  `json:"createdAt"`
	UpdatedAt string                  `json:"updatedAt"`
}

func userToResponse(user *domain.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		FullName:       user.FullName,
		Email:          user.Email,
		Bio:            user.Bio,
		Link:           user.Link,
		ProfilePicture: user.ProfilePicture,
		CoverPicture:   user.CoverPicture,
		Followers:      nonNil(user.Followers),
		Following:      nonNil(user.Following),
		LikedPosts:     nonNil(user.LikedPosts),
		CreatedAt:      formatTime(user.CreatedAt),
		UpdatedAt:      formatTime(user.UpdatedAt),
	}
}

func usersToResponse(users []domain.User) []*UserResponse {
	resp := make([]*UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	return resp
}

func commentsToResponse(comments []domain.Comment) []CommentResponse {
	resp := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		resp[i] = CommentResponse{
			ID:        comment.ID,
			Text:      comment.Text,
			User:      userToResponse(comment.Author),
			CreatedAt: formatTime(comment.CreatedAt),
		}
	}
	return resp
}

func postToResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		User:      userToResponse(post.Author),
		Text:      post.Text,
		Img:       post.Img,
		Likes:     nonNil(post.Likes),
		Comments:  commentsToResponse(post.Comments),
		CreatedAt: formatTime(post.CreatedAt),
		UpdatedAt: formatTime(post.UpdatedAt),
	}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(&posts[i])
	}
	return resp
}

func notificationsToResponse(list []domain.Notification) []NotificationResponse {
	resp := make([]NotificationResponse, len(list))
	for i, n := range list {
		resp[i] = NotificationResponse{
			ID:        n.ID,
			To:        n.ToID,
			Type:      n.Type,
			Read:      n.Read,
			CreatedAt: formatTime(n.CreatedAt),
			UpdatedAt: formatTime(n.UpdatedAt),
		}
		if n.From != nil {
			resp[i].From = &SenderResponse{
				ID:             n.From.ID,
				Username:       n.From.Username,
				ProfilePicture: n.From.ProfilePicture,
			}
		}
	}
	return resp
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
