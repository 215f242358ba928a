package postgres

import (
	"context"
	"fmt"

	"backend-friendbook/internal/db"
	"backend-friendbook/internal/store"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, description, age, gender, relationship,
	location, facebook, linked_in, twitter, instagram, pinterest,
	followers, followings, profile_picture, cover_picture, story, avatar_url, created_at, updated_at`

type Users struct {
	db db.Querier
}

var _ store.Users = (*Users)(nil)

func NewUsers(q db.Querier) *Users {
	return &Users{db: q}
}

func scanUser(row pgx.Row) (store.User, error) {
	var (
		u                     store.User
		profile, cover, story []byte
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Description, &u.Age, &u.Gender, &u.Relationship,
		&u.Location, &u.Facebook, &u.LinkedIn, &u.Twitter, &u.Instagram, &u.Pinterest,
		&u.Followers, &u.Followings, &profile, &cover, &story, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return store.User{}, mapErr(err)
	}
	if u.ProfilePicture, err = decodeMedia(profile); err != nil {
		return store.User{}, err
	}
	if u.CoverPicture, err = decodeMedia(cover); err != nil {
		return store.User{}, err
	}
	if u.Story, err = decodeMedia(story); err != nil {
		return store.User{}, err
	}
	return u, nil
}

func (r *Users) queryUsers(ctx context.Context, sql string, args ...any) ([]store.User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var users []store.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, mapErr(rows.Err())
}

func (r *Users) Create(ctx context.Context, u *store.User) error {
	if err := store.CheckID(u.ID); err != nil {
		return err
	}
	profile, err := encodeMedia(u.ProfilePicture)
	if err != nil {
		return err
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, profile_picture, avatar_url, tokens)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash, profile, u.AvatarURL, nonNil(u.Tokens))
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapErr(err)
	}
	u.Followers, u.Followings = []string{}, []string{}
	return nil
}

func (r *Users) ByID(ctx context.Context, id string) (store.User, error) {
	if err := store.CheckID(id); err != nil {
		return store.User{}, err
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *Users) ByEmail(ctx context.Context, email string) (store.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *Users) ByUsername(ctx context.Context, username string) (store.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1 ORDER BY created_at LIMIT 1
	`, username))
}

func (r *Users) ByIDs(ctx context.Context, ids []string) ([]store.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := store.CheckID(ids...); err != nil {
		return nil, err
	}
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, ids)
}

func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&ok)
	return ok, mapErr(err)
}

func (r *Users) List(ctx context.Context, excludeID string, limit int) ([]store.User, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	return r.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id::text <> $1
		ORDER BY created_at
		LIMIT $2
	`, excludeID, lim)
}

func relationColumn(rel store.Relation) (string, error) {
	switch rel {
	case store.Followers:
		return "followers", nil
	case store.Followings:
		return "followings", nil
	}
	return "", fmt.Errorf("unknown relation %q", rel)
}

func (r *Users) AddRelation(ctx context.Context, userID string, rel store.Relation, member string) error {
	col, err := relationColumn(rel)
	if err != nil {
		return err
	}
	return r.execOne(ctx, userID, fmt.Sprintf(`
		UPDATE users
		SET %[1]s = CASE WHEN $2 = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2) END,
		    updated_at = now()
		WHERE id = $1
	`, col), member)
}

func (r *Users) RemoveRelation(ctx context.Context, userID string, rel store.Relation, member string) error {
	col, err := relationColumn(rel)
	if err != nil {
		return err
	}
	return r.execOne(ctx, userID, fmt.Sprintf(`
		UPDATE users SET %[1]s = array_remove(%[1]s, $2), updated_at = now() WHERE id = $1
	`, col), member)
}

func (r *Users) AppendToken(ctx context.Context, userID, token string) error {
	return r.execOne(ctx, userID, `UPDATE users SET tokens = array_append(tokens, $2) WHERE id = $1`, token)
}

func (r *Users) RemoveToken(ctx context.Context, userID, token string) error {
	return r.execOne(ctx, userID, `UPDATE users SET tokens = array_remove(tokens, $2) WHERE id = $1`, token)
}

func (r *Users) HasToken(ctx context.Context, userID, token string) (bool, error) {
	if err := store.CheckID(userID); err != nil {
		return false, err
	}
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND $2 = ANY(tokens))`, userID, token).Scan(&ok)
	return ok, mapErr(err)
}

func (r *Users) UpdatePassword(ctx context.Context, userID, hash string) error {
	return r.execOne(ctx, userID, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, hash)
}

func (r *Users) UpdateProfile(ctx context.Context, userID string, p store.ProfilePatch) (store.User, error) {
	if err := store.CheckID(userID); err != nil {
		return store.User{}, err
	}
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET
			username = COALESCE($2, username),
			description = COALESCE($3, description),
			age = COALESCE($4, age),
			gender = COALESCE($5, gender),
			relationship = COALESCE($6, relationship),
			location = COALESCE($7, location),
			facebook = COALESCE($8, facebook),
			linked_in = COALESCE($9, linked_in),
			twitter = COALESCE($10, twitter),
			instagram = COALESCE($11, instagram),
			pinterest = COALESCE($12, pinterest),
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		userID, p.Username, p.Description, p.Age, p.Gender, p.Relationship,
		p.Location, p.Facebook, p.LinkedIn, p.Twitter, p.Instagram, p.Pinterest))
}

func mediaColumn(kind store.MediaKind) (string, error) {
	switch kind {
	case store.MediaProfilePicture:
		return "profile_picture", nil
	case store.MediaCoverPicture:
		return "cover_picture", nil
	case store.MediaStory:
		return "story", nil
	}
	return "", fmt.Errorf("unknown media kind %q", kind)
}

func (r *Users) SetMedia(ctx context.Context, userID string, kind store.MediaKind, m *store.Media) error {
	col, err := mediaColumn(kind)
	if err != nil {
		return err
	}
	doc, err := encodeMedia(m)
	if err != nil {
		return err
	}
	return r.execOne(ctx, userID, `UPDATE users SET `+col+` = $2, updated_at = now() WHERE id = $1`, doc)
}

func (r *Users) Delete(ctx context.Context, id string) (bool, error) {
	if err := store.CheckID(id); err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

// execOne runs an UPDATE keyed by user id and reports ErrNotFound when no row matched.
func (r *Users) execOne(ctx context.Context, userID, sql string, arg any) error {
	if err := store.CheckID(userID); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, sql, userID, arg)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
