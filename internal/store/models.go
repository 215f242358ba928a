package store

import "time"

type MediaKind string

const (
	MediaProfilePicture MediaKind = "profile-picture"
	MediaCoverPicture   MediaKind = "cover-picture"
	MediaStory          MediaKind = "story"
)

// Media describes a stored blob. The bytes live in the media store under Key.
type Media struct {
	Key      string `json:"-"`
	Mimetype string `json:"-"`
	Link     string `json:"link"`
}

type User struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	PasswordHash   string   `json:"-"`
	Description    string   `json:"description"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender"`
	Relationship   int      `json:"relationship,omitempty"`
	Location       string   `json:"location"`
	Facebook       string   `json:"facebook"`
	LinkedIn       string   `json:"linkedIn"`
	Twitter        string   `json:"twitter"`
	Instagram      string   `json:"instagram"`
	Pinterest      string   `json:"pinterest"`
	Followers      []string `json:"followers"`
	Followings     []string `json:"followings"`
	Tokens         []string `json:"-"`
	ProfilePicture *Media   `json:"-"`
	CoverPicture   *Media   `json:"-"`
	Story          *Media   `json:"-"`
	// AvatarURL is an external avatar, set for OAuth sign-ups without a stored picture.
	AvatarURL string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) HasProfilePicture() bool { return u.ProfilePicture != nil || u.AvatarURL != "" }

func (u User) ProfilePictureLink() string {
	if u.ProfilePicture != nil {
		return u.ProfilePicture.Link
	}
	return u.AvatarURL
}

// Summary is the lightweight projection embedded wherever a user is referenced.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:                 u.ID,
		Username:           u.Username,
		HasProfilePicture:  u.HasProfilePicture(),
		ProfilePictureLink: u.ProfilePictureLink(),
	}
}

func (u User) Media(kind MediaKind) *Media {
	switch kind {
	case MediaProfilePicture:
		return u.ProfilePicture
	case MediaCoverPicture:
		return u.CoverPicture
	case MediaStory:
		return u.Story
	}
	return nil
}

type UserSummary struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	HasProfilePicture  bool   `json:"hasProfilePicture"`
	ProfilePictureLink string `json:"profilePictureLink,omitempty"`
}

// ProfilePatch carries whitelisted profile fields; nil means untouched.
type ProfilePatch struct {
	Username     *string
	Description  *string
	Age          *int
	Gender       *string
	Relationship *int
	Location     *string
	Facebook     *string
	LinkedIn     *string
	Twitter      *string
	Instagram    *string
	Pinterest    *string
}

type Post struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Message        string    `json:"message,omitempty"`
	Image          *Media    `json:"-"`
	LikeCounter    int       `json:"likeCounter"`
	CommentCounter int       `json:"commentCounter"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type PostPatch struct {
	Message *string
	Image   *Media
}

type Comment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	PostID    string    `json:"postId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Like struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	PostID  string `json:"postId"`
}
