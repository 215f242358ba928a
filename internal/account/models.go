package account

import (
	"backend-friendbook/internal/media"
	"backend-friendbook/internal/store"
)

type EmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6"`
	OTP      string `json:"otp" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type ResetPasswordInput struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// profileUpdate holds the whitelisted profile fields of one update request.
type profileUpdate struct {
	Username     *string `json:"username" validate:"omitempty,min=3,max=20"`
	Description  *string `json:"description" validate:"omitempty,max=300"`
	Age          *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender       *string `json:"gender" validate:"omitempty,max=30"`
	Relationship *int    `json:"relationship" validate:"omitempty,oneof=1 2 3"`
	Location     *string `json:"location" validate:"omitempty,max=100"`
	Facebook     *string `json:"facebook" validate:"omitempty,max=200"`
	LinkedIn     *string `json:"linkedIn" validate:"omitempty,max=200"`
	Twitter      *string `json:"twitter" validate:"omitempty,max=200"`
	Instagram    *string `json:"instagram" validate:"omitempty,max=200"`
	Pinterest    *string `json:"pinterest" validate:"omitempty,max=200"`
}

func (p profileUpdate) patch() store.ProfilePatch {
	return store.ProfilePatch{
		Username:     p.Username,
		Description:  p.Description,
		Age:          p.Age,
		Gender:       p.Gender,
		Relationship: p.Relationship,
		Location:     p.Location,
		Facebook:     p.Facebook,
		LinkedIn:     p.LinkedIn,
		Twitter:      p.Twitter,
		Instagram:    p.Instagram,
		Pinterest:    p.Pinterest,
	}
}

func (p profileUpdate) empty() bool {
	return p.patch() == store.ProfilePatch{}
}

// ProfileFiles carries the pictures attached to a profile update.
type ProfileFiles struct {
	ProfilePicture *media.Upload
	CoverPicture   *media.Upload
}

// User is the public projection of a user.
type User struct {
	store.User
	HasProfilePicture  bool   `json:"hasProfilePicture"`
	ProfilePictureLink string `json:"profilePictureLink,omitempty"`
	HasCoverPicture    bool   `json:"hasCoverPicture"`
	CoverPictureLink   string `json:"coverPictureLink,omitempty"`
	HasStory           bool   `json:"hasStory"`
	StoryLink          string `json:"storyLink,omitempty"`
}

func newUser(u store.User) User {
	out := User{
		User:               u,
		HasProfilePicture:  u.HasProfilePicture(),
		ProfilePictureLink: u.ProfilePictureLink(),
	}
	if u.CoverPicture != nil {
		out.HasCoverPicture = true
		out.CoverPictureLink = u.CoverPicture.Link
	}
	if u.Story != nil {
		out.HasStory = true
		out.StoryLink = u.Story.Link
	}
	return out
}

type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Media is a stored user picture, or a redirect for external avatars.
type Media struct {
	Data        []byte
	Mimetype    string
	RedirectURL string
}
