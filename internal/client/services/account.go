package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/client/client"
	"github.com/dmitrijs2005/farmkeeper/internal/client/models"
	"github.com/dmitrijs2005/farmkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/farmkeeper/internal/dbx"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
)

const (
	RegistrationPath    = "auth/registration/"
	PasswordResetPath   = "auth/password/reset/"
	PasswordVerifyPath  = "profile/password-reset/verify/"
	PasswordConfirmPath = "profile/password-reset/confirm/"
	ProfilePath         = "profile/"
	ResetEmailKey       = "reset_email"
	ResetOTPKey         = "reset_otp"

	minPasswordLen = 8
	minUsernameLen = 3
)

var (
	usernameChars = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	hasLetter     = regexp.MustCompile(`[A-Za-z]`)
	hasDigit      = regexp.MustCompile(`[0-9]`)
	emailShape    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	ErrResetNotStarted = fmt.Errorf("%w: no password reset in progress", client.ErrInvalidInput)
)

// AccountService covers the account screens that do not change the session:
// registration, password reset and profile details.
type AccountService struct {
	client  *client.Client
	db      *sql.DB
	session *SessionManager
	log     logging.Logger
}

// NewAccountService binds the service to the shared client and the local
// database holding reset progress. session may be nil; when set, its profile
// is re-fetched after a profile update.
func NewAccountService(c *client.Client, db *sql.DB, session *SessionManager, log logging.Logger) *AccountService {
	if log == nil {
		log = logging.NewNop()
	}
	return &AccountService{client: c, db: db, session: session, log: log}
}

func (a *AccountService) metadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

// ValidateRegistration checks the form locally.
func ValidateRegistration(r models.Registration) error {
	verr := &ValidationError{}

	if len(r.Username) < minUsernameLen || !usernameChars.MatchString(r.Username) ||
		!hasLetter.MatchString(r.Username) || !hasDigit.MatchString(r.Username) {
		verr.add("username", "must be at least 3 letters and digits, with at least one of each")
	}
	if !emailShape.MatchString(r.Email) {
		verr.add("email", "is not a valid email address")
	}
	if len(r.Password) < minPasswordLen {
		verr.add("password", "must be at least 8 characters")
	}
	if r.Password != r.ConfirmPassword {
		verr.add("confirm_password", "does not match password")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Register creates a new account. It does not log in.
func (a *AccountService) Register(ctx context.Context, r models.Registration) error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if err := ValidateRegistration(r); err != nil {
		return err
	}

	_, err := a.client.Send(ctx, client.Request{
		Method: http.MethodPost,
		Path:   RegistrationPath,
		Body: map[string]string{
			"username":  r.Username,
			"email":     r.Email,
			"password1": r.Password,
			"password2": r.ConfirmPassword,
		},
		Anonymous: true,
	})
	if err != nil {
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
			if verr := fieldErrors(statusErr); verr != nil {
				return verr
			}
		}
		return fmt.Errorf("register: %w", err)
	}

	a.log.Info(ctx, "account registered", "username", r.Username)
	return nil
}

// RequestPasswordReset asks the backend to mail a reset code and remembers
// the address for the following steps.
func (a *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailShape.MatchString(email) {
		return fmt.Errorf("%w: %q is not a valid email address", client.ErrInvalidInput, email)
	}

	_, err := a.client.Send(ctx, client.Request{
		Method:    http.MethodPost,
		Path:      PasswordResetPath,
		Body:      map[string]string{"email": email},
		Anonymous: true,
	})
	if err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}

	repo := a.metadataRepo()
	if err := repo.Delete(ctx, ResetOTPKey); err != nil {
		return err
	}
	return repo.Set(ctx, ResetEmailKey, []byte(email))
}

// VerifyResetCode checks the mailed code for the remembered address.
func (a *AccountService) VerifyResetCode(ctx context.Context, otp string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return fmt.Errorf("%w: code is required", client.ErrInvalidInput)
	}

	repo := a.metadataRepo()
	email, err := repo.Get(ctx, ResetEmailKey)
	if err != nil {
		return err
	}
	if len(email) == 0 {
		return ErrResetNotStarted
	}

	_, err = a.client.Send(ctx, client.Request{
		Method:    http.MethodPost,
		Path:      PasswordVerifyPath,
		Body:      map[string]string{"email": string(email), "otp": otp},
		Anonymous: true,
	})
	if err != nil {
		return fmt.Errorf("verify reset code: %w", err)
	}

	return repo.Set(ctx, ResetOTPKey, []byte(otp))
}

// ConfirmPasswordReset sets the new password and forgets the reset progress.
func (a *AccountService) ConfirmPasswordReset(ctx context.Context, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", client.ErrInvalidInput, minPasswordLen)
	}

	email, otp, err := a.resetProgress(ctx)
	if err != nil {
		return err
	}

	_, err = a.client.Send(ctx, client.Request{
		Method: http.MethodPost,
		Path:   PasswordConfirmPath,
		Body: map[string]string{
			"email":        email,
			"otp":          otp,
			"new_password": newPassword,
		},
		Anonymous: true,
	})
	if err != nil {
		return fmt.Errorf("confirm password reset: %w", err)
	}

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, ResetEmailKey); err != nil {
			return err
		}
		return repo.Delete(ctx, ResetOTPKey)
	})
}

// ResetEmail returns the address of the reset in progress, if any.
func (a *AccountService) ResetEmail(ctx context.Context) (string, error) {
	v, err := a.metadataRepo().Get(ctx, ResetEmailKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (a *AccountService) resetProgress(ctx context.Context) (email, otp string, err error) {
	repo := a.metadataRepo()

	e, err := repo.Get(ctx, ResetEmailKey)
	if err != nil {
		return "", "", err
	}
	o, err := repo.Get(ctx, ResetOTPKey)
	if err != nil {
		return "", "", err
	}
	if len(e) == 0 || len(o) == 0 {
		return "", "", ErrResetNotStarted
	}
	return string(e), string(o), nil
}

// Profile fetches the editable profile details.
func (a *AccountService) Profile(ctx context.Context) (*models.ProfileDetails, error) {
	var d models.ProfileDetails
	if err := a.client.Get(ctx, ProfilePath, &d); err != nil {
		return nil, fmt.Errorf("get profile details: %w", err)
	}
	return &d, nil
}

// UpdateProfile stores the details and returns the backend's copy.
func (a *AccountService) UpdateProfile(ctx context.Context, d models.ProfileDetails) (*models.ProfileDetails, error) {
	var out models.ProfileDetails
	if err := a.client.Put(ctx, ProfilePath, d, &out); err != nil {
		return nil, fmt.Errorf("update profile details: %w", err)
	}

	if a.session != nil {
		if _, err := a.session.RefreshProfile(ctx); err != nil {
			a.log.Warn(ctx, "profile refresh after update failed", "error", err)
		}
	}
	return &out, nil
}
