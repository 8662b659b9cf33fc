package validators

import (
	"strings"

	"travel-admin/models"
)

const MsgAtLeastOneField = "At least one field must be provided"

// ----------------------------------------------------
// Auth
// ----------------------------------------------------

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *LoginRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	return Struct(r)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	return Struct(r)
}

// ResetPasswordRequest accepts the new password as either "password" or
// "newPassword".
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Secret() string {
	if r.Password != "" {
		return r.Password
	}
	return r.NewPassword
}

func (r ResetPasswordRequest) Validate() error {
	out := FieldErrors{}
	field(out, "token", r.Token, "required")
	field(out, "password", r.Secret(), "required,min=6")
	return out.orNil()
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=NewPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return Struct(r)
}

type ChangeEmailRequest struct {
	NewEmail string `json:"newEmail" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *ChangeEmailRequest) Validate() error {
	r.NewEmail = NormalizeEmail(r.NewEmail)
	return Struct(r)
}

type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *CreateAdminRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	return Struct(r)
}

// ----------------------------------------------------
// Profile
// ----------------------------------------------------

type UpdateProfileRequest struct {
	Name  models.Patch[string] `json:"name"`
	Email models.Patch[string] `json:"email"`
	Image models.Patch[string] `json:"image"`
}

func (r *UpdateProfileRequest) Validate() error {
	if !r.Name.Present() && !r.Email.Present() && !r.Image.Present() {
		return FieldErrors{"": MsgAtLeastOneField}
	}
	out := FieldErrors{}

	switch {
	case r.Name.IsClear():
		out.add("name", messageFor("name", "min"))
	case r.Name.IsSet():
		r.Name.Value = strings.TrimSpace(r.Name.Value)
		field(out, "name", r.Name.Value, "min=2")
	}

	switch {
	case r.Email.IsClear():
		out.add("email", messageFor("email", "email"))
	case r.Email.IsSet():
		r.Email.Value = NormalizeEmail(r.Email.Value)
		field(out, "email", r.Email.Value, "required,email")
	}

	// an empty image string removes the avatar, same as null
	if r.Image.IsSet() && strings.TrimSpace(r.Image.Value) == "" {
		r.Image = models.Cleared[string]()
	}
	return out.orNil()
}

// ----------------------------------------------------
// Trips
// ----------------------------------------------------

type CreateTripRequest struct {
	Title       string   `json:"title" validate:"min=3"`
	TourType    string   `json:"tourType" validate:"min=2"`
	Includes    string   `json:"includes" validate:"min=5"`
	Notes       *string  `json:"notes"`
	Places      []string `json:"places" validate:"min=1"`
	Description *string  `json:"description"`
	Images      []string `json:"images" validate:"min=1"`
}

func (r *CreateTripRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.TourType = strings.TrimSpace(r.TourType)
	r.Includes = strings.TrimSpace(r.Includes)
	r.Notes = blankToNil(r.Notes)
	r.Description = blankToNil(r.Description)
	return Struct(r)
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func (r CreateTripRequest) ToTrip() models.Trip {
	return models.Trip{
		Title:       r.Title,
		TourType:    r.TourType,
		Includes:    r.Includes,
		Notes:       r.Notes,
		Places:      r.Places,
		Description: r.Description,
		Images:      r.Images,
	}
}

type UpdateTripRequest struct {
	Title       models.Patch[string]   `json:"title"`
	TourType    models.Patch[string]   `json:"tourType"`
	Includes    models.Patch[string]   `json:"includes"`
	Notes       models.Patch[string]   `json:"notes"`
	Places      models.Patch[[]string] `json:"places"`
	Description models.Patch[string]   `json:"description"`
	Images      models.Patch[[]string] `json:"images"`
}

func (r *UpdateTripRequest) Validate() error {
	if !r.Title.Present() && !r.TourType.Present() && !r.Includes.Present() &&
		!r.Notes.Present() && !r.Places.Present() && !r.Description.Present() && !r.Images.Present() {
		return FieldErrors{"": MsgAtLeastOneField + " to update"}
	}
	out := FieldErrors{}

	// blank optional text is stored as null, same as an explicit null
	for _, p := range []*models.Patch[string]{&r.Notes, &r.Description} {
		if p.IsSet() && strings.TrimSpace(p.Value) == "" {
			*p = models.Cleared[string]()
		}
	}

	// required columns may be replaced but not cleared
	requiredText := []struct {
		name  string
		patch *models.Patch[string]
		tag   string
	}{
		{"title", &r.Title, "min=3"},
		{"tourType", &r.TourType, "min=2"},
		{"includes", &r.Includes, "min=5"},
	}
	for _, f := range requiredText {
		switch {
		case f.patch.IsClear():
			out.add(f.name, messageFor(f.name, "min"))
		case f.patch.IsSet():
			f.patch.Value = strings.TrimSpace(f.patch.Value)
			field(out, f.name, f.patch.Value, f.tag)
		}
	}

	for name, p := range map[string]models.Patch[[]string]{"places": r.Places, "images": r.Images} {
		if p.IsClear() {
			out.add(name, messageFor(name, "min"))
		} else if p.IsSet() {
			field(out, name, p.Value, "min=1")
		}
	}
	return out.orNil()
}
