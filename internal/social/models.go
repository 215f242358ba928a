package social

import "backend-friendbook/internal/store"

type FollowResult struct {
	Followed bool `json:"followed"`
}

type FollowStatus struct {
	Following bool `json:"following"`
}

// Friend is a follower or following of the requested user.
type Friend struct {
	store.UserSummary
	FollowsMe bool `json:"followsMe"`
}

type Story struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	StoryLink string `json:"storyLink"`
}
