package account

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/media"
	"backend-friendbook/internal/store"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var (
	errInvalidUpdate = apperr.New(apperr.BadRequest, "invalid update")
	errEmptyUpdate   = apperr.New(apperr.BadRequest, "nothing to update")
)

// profileFields are the names a profile update may carry.
var profileFields = []string{
	"username", "description", "age", "gender", "relationship", "location",
	"facebook", "linkedIn", "twitter", "instagram", "pinterest",
}

var intFields = []string{"age", "relationship"}

// decodeProfile rejects any field outside the whitelist and reads the rest
// into a profileUpdate. Multipart forms send numbers as strings.
func decodeProfile(fields map[string]any) (profileUpdate, error) {
	var upd profileUpdate
	for name, v := range fields {
		if !lo.Contains(profileFields, name) {
			return upd, errInvalidUpdate
		}
		if str, ok := v.(string); ok && lo.Contains(intFields, name) {
			n, err := strconv.Atoi(str)
			if err != nil {
				return upd, apperr.BadRequestf("invalid %s", name)
			}
			fields[name] = n
		}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return upd, errInvalidUpdate
	}
	if err := json.Unmarshal(raw, &upd); err != nil {
		return upd, errInvalidUpdate
	}
	return upd, nil
}

// UpdateProfile applies whitelisted fields and attached pictures.
func (s *Service) UpdateProfile(ctx context.Context, userID string, fields map[string]any, files ProfileFiles) (User, error) {
	upd, err := decodeProfile(fields)
	if err != nil {
		return User{}, err
	}
	if err := s.check(upd); err != nil {
		return User{}, err
	}
	if upd.empty() && files.ProfilePicture == nil && files.CoverPicture == nil {
		return User{}, errEmptyUpdate
	}
	if _, err := s.load(ctx, userID); err != nil {
		return User{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if files.ProfilePicture != nil {
		g.Go(func() error { return s.storeMedia(gctx, userID, store.MediaProfilePicture, *files.ProfilePicture) })
	}
	if files.CoverPicture != nil {
		g.Go(func() error { return s.storeMedia(gctx, userID, store.MediaCoverPicture, *files.CoverPicture) })
	}
	if err := g.Wait(); err != nil {
		return User{}, apperr.FromStore(err, "store pictures of %s", userID)
	}

	if upd.empty() {
		return s.Me(ctx, userID)
	}
	u, err := s.st.Users.UpdateProfile(ctx, userID, upd.patch())
	if errors.Is(err, store.ErrNotFound) {
		return User{}, apperr.NotFoundf("user not found")
	}
	if err != nil {
		return User{}, apperr.FromStore(err, "update profile of %s", userID)
	}
	return newUser(u), nil
}

func (s *Service) storeMedia(ctx context.Context, userID string, kind store.MediaKind, up media.Upload) error {
	m, err := media.Save(ctx, s.blobs, media.UserKey(kind, userID), media.UserLink(kind, userID), up)
	if err != nil {
		return err
	}
	return s.st.Users.SetMedia(ctx, userID, kind, m)
}

// SetStory replaces the user's story, or clears it when file is nil.
func (s *Service) SetStory(ctx context.Context, userID string, file *media.Upload) (User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if file != nil {
		if err := s.storeMedia(ctx, userID, store.MediaStory, *file); err != nil {
			return User{}, apperr.FromStore(err, "store story of %s", userID)
		}
		return s.Me(ctx, userID)
	}

	if u.Story == nil {
		return newUser(u), nil
	}
	if err := s.st.Users.SetMedia(ctx, userID, store.MediaStory, nil); err != nil {
		return User{}, apperr.FromStore(err, "clear story of %s", userID)
	}
	if err := s.blobs.Delete(ctx, u.Story.Key); err != nil {
		s.log.Warn("orphaned blob", "key", u.Story.Key, "error", err)
	}
	u.Story = nil
	return newUser(u), nil
}

// UserMedia returns one of the user's pictures. A profile picture that only
// exists as an external avatar comes back as a redirect.
func (s *Service) UserMedia(ctx context.Context, userID string, kind store.MediaKind) (Media, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return Media{}, err
	}
	missing := apperr.NotFoundf("user has no %s", kind)

	m := u.Media(kind)
	if m == nil {
		if kind == store.MediaProfilePicture && u.AvatarURL != "" {
			return Media{RedirectURL: u.AvatarURL}, nil
		}
		return Media{}, missing
	}
	data, err := s.blobs.Get(ctx, m.Key)
	if errors.Is(err, media.ErrNotFound) {
		return Media{}, missing
	}
	if err != nil {
		return Media{}, apperr.Internalf(err, "read %s of %s", kind, userID)
	}
	return Media{Data: data, Mimetype: m.Mimetype}, nil
}
