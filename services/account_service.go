package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"travel-admin/auth"
	"travel-admin/mailer"
	"travel-admin/metrics"
	"travel-admin/models"
	"travel-admin/repo"
	"travel-admin/utils"
	"travel-admin/validators"
)

const (
	MsgInvalidCredentials   = "Invalid credentials"
	MsgAdminNotFound        = "Admin not found"
	MsgIncorrectCurrentPass = "Incorrect current password"
	MsgIncorrectPassword    = "Incorrect password. Confirmation failed."
	MsgEmailTaken           = "This email is already registered with another account"
	MsgInvalidResetToken    = "Invalid or expired token"
	MsgNoChanges            = "No changes detected"
	MsgAdminExists          = "An admin with this email already exists"
)

func errInvalidCredentials() *utils.AppError {
	return &utils.AppError{Status: http.StatusUnauthorized, Message: MsgInvalidCredentials}
}

type AccountService struct {
	admins  repo.AdminStore
	tokens  *auth.TokenService
	hasher  *auth.PasswordHasher
	mail    mailer.Mailer
	metrics *metrics.Metrics
	appURL  string
	log     *slog.Logger
}

type AccountDeps struct {
	Admins  repo.AdminStore
	Tokens  *auth.TokenService
	Hasher  *auth.PasswordHasher
	Mailer  mailer.Mailer
	Metrics *metrics.Metrics
	// AppURL is the public base URL of the admin console, used in reset links.
	AppURL string
	Log    *slog.Logger
}

func NewAccountService(d AccountDeps) *AccountService {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Mailer == nil {
		d.Mailer = mailer.LogMailer{Log: d.Log}
	}
	if d.Hasher == nil {
		d.Hasher = auth.NewPasswordHasher(auth.DefaultBcryptCost)
	}
	return &AccountService{
		admins:  d.Admins,
		tokens:  d.Tokens,
		hasher:  d.Hasher,
		mail:    d.Mailer,
		metrics: d.Metrics,
		appURL:  strings.TrimRight(d.AppURL, "/"),
		log:     d.Log,
	}
}

// notify sends a best-effort email. Failures are logged and counted but never
// surface to the caller.
func (s *AccountService) notify(ctx context.Context, kind string, msg mailer.Message, err error) {
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	s.metrics.Notification(kind, err)
	if err != nil {
		s.log.WarnContext(ctx, "notification failed", "kind", kind, "to", msg.To, "error", err)
	}
}

func (s *AccountService) findAdmin(ctx context.Context, id uint) (*models.Admin, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, utils.NotFound(MsgAdminNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load admin %d: %w", id, err)
	}
	return admin, nil
}

// ----------------------------------------------------
// Login / Logout
// ----------------------------------------------------

type LoginResult struct {
	Token string
	Admin models.PublicAdmin
}

func (s *AccountService) Login(ctx context.Context, req validators.LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		s.metrics.AuthEvent("login", "invalid_request")
		return nil, utils.AsValidation(err)
	}

	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if errors.Is(err, repo.ErrNotFound) {
		s.metrics.AuthEvent("login", "rejected")
		return nil, errInvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	if !s.hasher.Verify(req.Password, admin.PasswordHash) {
		s.metrics.AuthEvent("login", "rejected")
		return nil, errInvalidCredentials()
	}

	token, err := s.tokens.IssueSessionToken(auth.SessionIdentity{
		AdminID: admin.ID,
		Email:   admin.Email,
		Name:    admin.Name,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AuthEvent("login", "ok")
	s.log.InfoContext(ctx, "admin logged in", "admin_id", admin.ID)
	return &LoginResult{Token: token, Admin: admin.Public()}, nil
}

// Logout has no server-side state to clear; the handler expires the cookie.
func (s *AccountService) Logout(ctx context.Context, adminID uint) {
	s.metrics.AuthEvent("logout", "ok")
	if adminID != 0 {
		s.log.InfoContext(ctx, "admin logged out", "admin_id", adminID)
	}
}

// ----------------------------------------------------
// Change password / email
// ----------------------------------------------------

func (s *AccountService) ChangePassword(ctx context.Context, adminID uint, req validators.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return utils.AsValidation(err)
	}

	admin, err := s.findAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(req.CurrentPassword, admin.PasswordHash) {
		s.metrics.AuthEvent("change_password", "rejected")
		return utils.BadRequest(MsgIncorrectCurrentPass)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.admins.Update(ctx, admin.ID, repo.AdminFields{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	s.metrics.AuthEvent("change_password", "ok")

	msg, err := mailer.PasswordChangedMessage(admin.Email, admin.Name)
	s.notify(ctx, "password_changed", msg, err)
	return nil
}

func (s *AccountService) ChangeEmail(ctx context.Context, adminID uint, req validators.ChangeEmailRequest) error {
	if err := req.Validate(); err != nil {
		return utils.AsValidation(err)
	}
	if reason := validators.CheckNewEmail(req.NewEmail); reason != "" {
		return utils.BadRequest(reason)
	}

	admin, err := s.findAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	oldEmail := admin.Email

	if !s.hasher.Verify(req.Password, admin.PasswordHash) {
		s.metrics.AuthEvent("change_email", "rejected")
		return utils.BadRequest(MsgIncorrectPassword)
	}

	if err := s.ensureEmailFree(ctx, req.NewEmail, admin.ID); err != nil {
		return err
	}

	newEmail := req.NewEmail
	if _, err := s.admins.Update(ctx, admin.ID, repo.AdminFields{Email: &newEmail}); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return utils.BadRequest(MsgEmailTaken)
		}
		return fmt.Errorf("store email: %w", err)
	}
	s.metrics.AuthEvent("change_email", "ok")

	msg, err := mailer.EmailChangedMessage(newEmail, admin.Name, oldEmail, newEmail, false)
	s.notify(ctx, "email_changed", msg, err)
	msg, err = mailer.EmailChangedMessage(oldEmail, admin.Name, oldEmail, newEmail, true)
	s.notify(ctx, "email_changed_alert", msg, err)
	return nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.admins.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.ID != selfID:
		return utils.BadRequest(MsgEmailTaken)
	}
	return nil
}

// ----------------------------------------------------
// Forgot / reset password
// ----------------------------------------------------

// ForgotPassword never reveals whether the email belongs to an admin.
func (s *AccountService) ForgotPassword(ctx context.Context, req validators.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return utils.AsValidation(err)
	}

	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if errors.Is(err, repo.ErrNotFound) {
		s.metrics.AuthEvent("forgot_password", "unknown_email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find admin by email: %w", err)
	}

	token, err := s.tokens.IssueResetToken(admin.ID, admin.Email)
	if err != nil {
		return err
	}
	s.metrics.AuthEvent("forgot_password", "ok")

	link := s.appURL + "/reset-password?token=" + token
	msg, err := mailer.PasswordResetMessage(admin.Email, link)
	s.notify(ctx, "password_reset", msg, err)
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, req validators.ResetPasswordRequest) error {
	claims, err := s.tokens.VerifyResetToken(req.Token)
	if err != nil {
		s.metrics.AuthEvent("reset_password", "invalid_token")
		return utils.BadRequest(MsgInvalidResetToken)
	}

	admin, err := s.findAdmin(ctx, claims.AdminID)
	if err != nil {
		return err
	}
	// a link issued before an email change is no longer honoured
	if !strings.EqualFold(admin.Email, claims.Email) {
		s.metrics.AuthEvent("reset_password", "invalid_token")
		return utils.BadRequest(MsgInvalidResetToken)
	}

	if err := req.Validate(); err != nil {
		return utils.AsValidation(err)
	}

	hash, err := s.hasher.Hash(req.Secret())
	if err != nil {
		return err
	}
	if _, err := s.admins.Update(ctx, admin.ID, repo.AdminFields{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	s.metrics.AuthEvent("reset_password", "ok")

	msg, err := mailer.PasswordChangedMessage(admin.Email, admin.Name)
	s.notify(ctx, "password_changed", msg, err)
	return nil
}

// ----------------------------------------------------
// Profile
// ----------------------------------------------------

func (s *AccountService) Profile(ctx context.Context, adminID uint) (models.PublicAdmin, error) {
	admin, err := s.findAdmin(ctx, adminID)
	if err != nil {
		return models.PublicAdmin{}, err
	}
	return admin.Public(), nil
}

type ProfileUpdateResult struct {
	Changed bool
	Changes []mailer.FieldChange
	Admin   models.PublicAdmin
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "None"
	}
	return *s
}

// UpdateProfile applies only the fields that differ from the stored values.
// When nothing differs the store is not touched.
func (s *AccountService) UpdateProfile(ctx context.Context, adminID uint, req validators.UpdateProfileRequest) (*ProfileUpdateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}

	current, err := s.findAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	var fields repo.AdminFields
	var changes []mailer.FieldChange

	if name, ok := req.Name.Get(); ok && name != current.Name {
		fields.Name = &name
		changes = append(changes, mailer.FieldChange{Field: "Name", Old: current.Name, New: name})
	}
	if email, ok := req.Email.Get(); ok && !strings.EqualFold(email, current.Email) {
		if err := s.ensureEmailFree(ctx, email, current.ID); err != nil {
			return nil, err
		}
		fields.Email = &email
		changes = append(changes, mailer.FieldChange{Field: "Email", Old: current.Email, New: email})
	}
	switch {
	case req.Image.IsClear() && current.Image != nil:
		fields.Image = req.Image
		changes = append(changes, mailer.FieldChange{Field: "Image URL", Old: orNone(current.Image), New: "None"})
	case req.Image.IsSet() && (current.Image == nil || *current.Image != req.Image.Value):
		fields.Image = req.Image
		changes = append(changes, mailer.FieldChange{Field: "Image URL", Old: orNone(current.Image), New: req.Image.Value})
	}

	if len(changes) == 0 {
		return &ProfileUpdateResult{Admin: current.Public()}, nil
	}

	updated, err := s.admins.Update(ctx, current.ID, fields)
	if errors.Is(err, repo.ErrDuplicateEmail) {
		return nil, utils.BadRequest(MsgEmailTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	s.metrics.AuthEvent("update_profile", "ok")

	msg, err := mailer.ProfileUpdatedMessage(current.Email, updated.Name, changes)
	s.notify(ctx, "profile_updated", msg, err)

	return &ProfileUpdateResult{Changed: true, Changes: changes, Admin: updated.Public()}, nil
}

// ----------------------------------------------------
// Admin provisioning (CLI and startup seed)
// ----------------------------------------------------

func (s *AccountService) CreateAdmin(ctx context.Context, req validators.CreateAdminRequest) (*models.Admin, error) {
	if err := req.Validate(); err != nil {
		return nil, utils.AsValidation(err)
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, utils.BadRequest(MsgAdminExists)
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	s.log.InfoContext(ctx, "admin created", "admin_id", admin.ID, "email", admin.Email)
	return admin, nil
}

// SeedAdmin creates the first admin when the store is empty. It is a no-op
// otherwise or when no seed email is configured.
func (s *AccountService) SeedAdmin(ctx context.Context, req validators.CreateAdminRequest) (bool, error) {
	if strings.TrimSpace(req.Email) == "" {
		return false, nil
	}
	n, err := s.admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AccountService) ListAdmins(ctx context.Context) ([]models.PublicAdmin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicAdmin, 0, len(admins))
	for _, a := range admins {
		out = append(out, a.Public())
	}
	return out, nil
}
