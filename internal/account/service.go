// Package account covers the life of a user account: OTP verified signup,
// sessions, password reset, profile and media, Google sign-in and deletion.
package account

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"backend-friendbook/internal/apperr"
	"backend-friendbook/internal/auth"
	"backend-friendbook/internal/logger"
	"backend-friendbook/internal/mail"
	"backend-friendbook/internal/media"
	"backend-friendbook/internal/metrics"
	"backend-friendbook/internal/oauth"
	"backend-friendbook/internal/otp"
	"backend-friendbook/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	errEmailTaken = apperr.New(apperr.BadRequest, "email is already registered")
	errNoAccount  = apperr.New(apperr.BadRequest, "no account is registered with this email")
)

// OTPStore keeps the pending verification code of each email.
type OTPStore interface {
	Put(ctx context.Context, email, code string) error
	Matches(ctx context.Context, email, code string) (bool, error)
	Consume(ctx context.Context, email, code string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Deps struct {
	Store  store.Store
	OTPs   OTPStore
	Tokens TokenIssuer
	Mail   mail.Sender
	Google oauth.Exchanger
	Blobs  media.Blobs
	Log    *logger.Logger
}

type Service struct {
	st       store.Store
	otps     OTPStore
	tokens   TokenIssuer
	mail     mail.Sender
	google   oauth.Exchanger
	blobs    media.Blobs
	log      *logger.Logger
	validate *validator.Validate
}

func NewService(d Deps) *Service {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{
		st:       d.Store,
		otps:     d.OTPs,
		tokens:   d.Tokens,
		mail:     d.Mail,
		google:   d.Google,
		blobs:    d.Blobs,
		log:      d.Log,
		validate: v,
	}
}

// check validates in and reports the first offending field.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return apperr.BadRequestf("%s is required", fe.Field())
		case "email":
			return apperr.BadRequestf("invalid email")
		case "min":
			return apperr.BadRequestf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			return apperr.BadRequestf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return apperr.BadRequestf("invalid %s", fe.Field())
	}
	return apperr.BadRequestf("invalid input")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) emailExists(ctx context.Context, email string) (bool, error) {
	ok, err := s.st.Users.EmailExists(ctx, email)
	if err != nil {
		return false, apperr.FromStore(err, "look up email")
	}
	return ok, nil
}

// sendOTP replaces the pending code of email and mails it. Delivery failures
// are logged; the code stays valid.
func (s *Service) sendOTP(ctx context.Context, email string, template func(to, code string) mail.Message) error {
	code, err := otp.Generate()
	if err != nil {
		return apperr.Internalf(err, "generate otp")
	}
	if err := s.otps.Put(ctx, email, code); err != nil {
		return apperr.Internalf(err, "store otp")
	}
	if err := s.mail.Send(ctx, template(email, code)); err != nil {
		s.log.Error("otp email not delivered", "email", email, "error", err)
	}
	return nil
}

func (s *Service) SendVerificationOtp(ctx context.Context, in EmailInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return err
	}
	taken, err := s.emailExists(ctx, in.Email)
	if err != nil {
		return err
	}
	if taken {
		return errEmailTaken
	}
	return s.sendOTP(ctx, in.Email, mail.VerificationOTP)
}

// Register consumes the pending code for the email and creates the account
// with its first session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := s.check(in); err != nil {
		return AuthResult{}, err
	}
	taken, err := s.emailExists(ctx, in.Email)
	if err != nil {
		return AuthResult{}, err
	}
	if taken {
		return AuthResult{}, errEmailTaken
	}

	ok, err := s.otps.Consume(ctx, in.Email, in.OTP)
	if err != nil {
		return AuthResult{}, apperr.Internalf(err, "consume otp")
	}
	if !ok {
		return AuthResult{}, apperr.ErrInvalidOTP
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, apperr.Internalf(err, "hash password")
	}
	u := store.User{ID: uuid.NewString(), Username: in.Username, Email: in.Email, PasswordHash: hash}
	res, err := s.create(ctx, &u)
	if err != nil {
		return AuthResult{}, err
	}
	metrics.Action(metrics.ActionSignup)
	return res, nil
}

// create stores u together with a fresh session token.
func (s *Service) create(ctx context.Context, u *store.User) (AuthResult, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, apperr.Internalf(err, "issue token")
	}
	u.Tokens = []string{token}
	err = s.st.Users.Create(ctx, u)
	if errors.Is(err, store.ErrConflict) {
		return AuthResult{}, errEmailTaken
	}
	if err != nil {
		return AuthResult{}, apperr.FromStore(err, "create user")
	}
	return AuthResult{User: newUser(*u), Token: token}, nil
}

// startSession issues a token and adds it to the user's active sessions.
func (s *Service) startSession(ctx context.Context, u store.User) (AuthResult, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, apperr.Internalf(err, "issue token")
	}
	if err := s.st.Users.AppendToken(ctx, u.ID, token); err != nil {
		return AuthResult{}, apperr.FromStore(err, "save session")
	}
	return AuthResult{User: newUser(u), Token: token}, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return AuthResult{}, err
	}
	u, err := s.st.Users.ByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, apperr.FromStore(err, "load user")
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return AuthResult{}, apperr.ErrInvalidCredentials
	}

	res, err := s.startSession(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	metrics.Action(metrics.ActionLogin)
	return res, nil
}

// Logout ends only the presented session.
func (s *Service) Logout(ctx context.Context, userID, token string) error {
	err := s.st.Users.RemoveToken(ctx, userID, token)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.FromStore(err, "remove session")
	}
	return nil
}

func (s *Service) SendForgotOtp(ctx context.Context, in EmailInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return err
	}
	exists, err := s.emailExists(ctx, in.Email)
	if err != nil {
		return err
	}
	if !exists {
		return errNoAccount
	}
	return s.sendOTP(ctx, in.Email, mail.ForgotPasswordOTP)
}

// VerifyOtp checks a code without consuming it.
func (s *Service) VerifyOtp(ctx context.Context, in VerifyOTPInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return err
	}
	exists, err := s.emailExists(ctx, in.Email)
	if err != nil {
		return err
	}
	if !exists {
		return errNoAccount
	}
	ok, err := s.otps.Matches(ctx, in.Email, in.OTP)
	if err != nil {
		return apperr.Internalf(err, "read otp")
	}
	if !ok {
		return apperr.ErrInvalidOTP
	}
	return nil
}

// ResetPassword sets a new password once the code is consumed. Existing
// sessions stay active.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return err
	}
	u, err := s.st.Users.ByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return errNoAccount
	}
	if err != nil {
		return apperr.FromStore(err, "load user")
	}

	ok, err := s.otps.Consume(ctx, in.Email, in.OTP)
	if err != nil {
		return apperr.Internalf(err, "consume otp")
	}
	if !ok {
		return apperr.ErrInvalidOTP
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return apperr.Internalf(err, "hash password")
	}
	if err := s.st.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return apperr.FromStore(err, "update password")
	}
	return nil
}

func (s *Service) load(ctx context.Context, userID string) (store.User, error) {
	u, err := s.st.Users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, apperr.NotFoundf("user not found")
	}
	if err != nil {
		return store.User{}, apperr.FromStore(err, "load user %s", userID)
	}
	return u, nil
}

func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return User{}, err
	}
	return newUser(u), nil
}

// GetUser looks a user up by id, or by username when no id is given.
func (s *Service) GetUser(ctx context.Context, userID, username string) (User, error) {
	switch {
	case userID != "":
		return s.Me(ctx, userID)
	case username != "":
		u, err := s.st.Users.ByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return User{}, apperr.NotFoundf("user not found")
		}
		if err != nil {
			return User{}, apperr.FromStore(err, "load user %s", username)
		}
		return newUser(u), nil
	}
	return User{}, apperr.BadRequestf("userId or username is required")
}
