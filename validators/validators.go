package validators

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("validate")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps a JSON field name to a human readable message.
// The empty key carries form-level messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e[k])
			continue
		}
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e FieldErrors) add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// messages keyed by "field.tag", falling back to "field".
var messages = map[string]string{
	"email.required":       "Email is required",
	"email":                "Invalid email address",
	"password.required":    "Password is required",
	"password":             "Password must be at least 6 characters",
	"currentPassword":      "Current password is required",
	"newPassword.required": "New password is required",
	"newPassword":          "New password must be at least 6 characters",
	"confirmPassword":      "New passwords do not match",
	"newEmail":             "New email is required",
	"token":                "Token is required",
	"name":                 "Name must be at least 2 characters",
	"image":                "Image must be a string or null",
	"title":                "Title must be at least 3 characters",
	"tourType":             "Tour type must be at least 2 characters",
	"includes":             "Includes must describe what's included",
	"places":               "At least one place is required",
	"images":               "At least one image is required",
	"notes":                "Notes must be a string",
	"description":          "Description must be a string",
}

func messageFor(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := messages[field]; ok {
		return msg
	}
	return "Invalid value"
}

// Struct validates s against its `validate` tags and returns FieldErrors
// (or nil).
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		out.add(fe.Field(), messageFor(fe.Field(), fe.Tag()))
	}
	return out
}

// field validates a single value with a tag expression, recording a message
// under name on failure.
func field(out FieldErrors, name string, value any, tag string) {
	if err := validate.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			out.add(name, messageFor(name, verrs[0].Tag()))
			return
		}
		out.add(name, messageFor(name, ""))
	}
}
