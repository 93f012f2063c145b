package auth

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/pterm/pterm"

	"lodgeportal/cli/internal/backend"
	apperr "lodgeportal/cli/internal/errors"
	"lodgeportal/cli/internal/logging"
)

// MinPasswordLength is the shortest password accepted locally.
const MinPasswordLength = 8

// ResetNotice is shown after every accepted reset request, whether or not the address
// belongs to an account.
const ResetNotice = "If an account exists for that email address, a password reset link has been sent to it."

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Recovery is the forgot-password flow. It never changes the session: after a reset the
// user signs in as usual.
type Recovery struct {
	api    backend.API
	logger *pterm.Logger
}

// NewRecovery returns a Recovery over api.
func NewRecovery(api backend.API, logger *pterm.Logger) *Recovery {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Recovery{api: api, logger: logger}
}

// RequestReset asks the portal to mail a reset link. The outcome never reveals whether
// the address is registered: unknown addresses get the same notice as known ones. Only
// connection and server failures are reported, generically.
func (r *Recovery) RequestReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperr.New(apperr.Validation, "Please enter your email address.")
	}
	if !emailPattern.MatchString(email) {
		return "", apperr.New(apperr.Validation, "Please enter a valid email address.")
	}

	err := r.api.RequestPasswordReset(ctx, email)
	if err == nil {
		return ResetNotice, nil
	}
	if mapped, ok := commonError(err); ok {
		return "", mapped
	}
	switch backend.KindOf(err) {
	case backend.KindNotFound, backend.KindBadRequest:
		// "no user with this email" must look like success
		r.logger.Debug("reset request rejected by portal; reporting generic notice", r.logger.Args("status", statusOf(err)))
		return ResetNotice, nil
	default:
		return "", apperr.Wrap(apperr.Unknown, "We could not process the request right now. Please try again later.", err)
	}
}

// ConfirmReset sets a new password. token is the reset token, a "uid/token" pair, or the
// full reset link from the email. The passwords must match and be at least
// MinPasswordLength long; both are checked before any request is made.
func (r *Recovery) ConfirmReset(ctx context.Context, token, newPassword, confirmPassword string) error {
	if err := checkNewPassword(newPassword, confirmPassword); err != nil {
		return err
	}
	uid, tok, ok := ParseResetLink(token)
	if !ok {
		return apperr.New(apperr.Validation, "The reset link is missing or incomplete.")
	}

	err := r.api.ConfirmPasswordReset(ctx, backend.PasswordReset{
		UID:             uid,
		Token:           tok,
		Password:        newPassword,
		PasswordConfirm: confirmPassword,
	})
	if err == nil {
		return nil
	}
	if mapped, ok := commonError(err); ok {
		return mapped
	}

	gw, _ := backend.AsError(err)
	switch {
	case gw.HasField("password") || gw.HasField("new_password"):
		return apperr.Wrap(apperr.PasswordPolicy, detailOr(err, "The new password does not meet the password policy.", "password", "new_password"), err)
	case gw.Kind == backend.KindBadRequest, gw.Kind == backend.KindNotFound, gw.HasField("token"), gw.HasField("uid"):
		return apperr.Wrap(apperr.TokenInvalid, "This reset link is invalid or has expired. Please request a new one.", err)
	default:
		return apperr.Wrap(apperr.Unknown, "We could not reset your password right now. Please try again later.", err)
	}
}

// checkNewPassword validates a new password pair: presence, then match, then length.
func checkNewPassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return apperr.New(apperr.Validation, "Please enter and confirm the new password.")
	}
	if password != confirm {
		return apperr.New(apperr.Validation, "Passwords do not match.")
	}
	if len([]rune(password)) < MinPasswordLength {
		return apperr.New(apperr.Validation, "Password must be at least 8 characters long.")
	}
	return nil
}

var resetPathPattern = regexp.MustCompile(`reset-password/([^/]+)/([^/]+)/?$`)

// ParseResetLink extracts the uid and token from a reset link
// (".../reset-password/<uid>/<token>/"), a "uid/token" pair, or a bare token (uid empty).
func ParseResetLink(s string) (uid, token string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}
	if u, err := url.Parse(s); err == nil && u.Scheme != "" {
		if m := resetPathPattern.FindStringSubmatch(u.Path); m != nil {
			return m[1], m[2], true
		}
		return "", "", false
	}
	if m := resetPathPattern.FindStringSubmatch(s); m != nil {
		return m[1], m[2], true
	}
	parts := strings.Split(strings.Trim(s, "/"), "/")
	switch len(parts) {
	case 1:
		return "", parts[0], true
	case 2:
		if parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], true
		}
	}
	return "", "", false
}

func statusOf(err error) int {
	if e, ok := backend.AsError(err); ok {
		return e.Status
	}
	return 0
}
