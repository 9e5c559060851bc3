package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidationError reports a pre-flight (client-side) validation failure.
// Validation runs before any network call and is surfaced directly to the
// initiating form.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ErrValidation lets callers match any validation failure with errors.Is.
var ErrValidation = errors.New("validation error")

func (e *ValidationError) Unwrap() error { return ErrValidation }

var handleRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// LoginRequest carries user credentials for authentication.
type LoginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if r.Handle == "" {
		return &ValidationError{Field: "handle", Reason: "required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	return nil
}

// SignupRequest carries the fields required to create an account.
type SignupRequest struct {
	Name            string `json:"name"`
	Handle          string `json:"handle"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	Institution     string `json:"institution,omitempty"`
}

func (r SignupRequest) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if r.Handle == "" {
		return &ValidationError{Field: "handle", Reason: "required"}
	}
	if !handleRe.MatchString(r.Handle) {
		return &ValidationError{Field: "handle", Reason: "must be 3-30 letters, digits or underscores"}
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return &ValidationError{Field: "email", Reason: "valid email required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Reason: "passwords do not match"}
	}
	return nil
}

// Attachment is a binary file carried by a request. Requests with attachments
// are sent multipart-encoded; everything else goes as JSON.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

const maxAttachmentSize = 5 << 20 // 5 MiB

var allowedAttachmentExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

func (a Attachment) Validate() error {
	if a.Name == "" {
		return &ValidationError{Field: "attachment", Reason: "file name required"}
	}
	if len(a.Data) == 0 {
		return &ValidationError{Field: "attachment", Reason: "file is empty"}
	}
	if len(a.Data) > maxAttachmentSize {
		return &ValidationError{Field: "attachment", Reason: "file exceeds 5 MiB"}
	}
	ext := strings.ToLower(filepath.Ext(a.Name))
	if _, ok := allowedAttachmentExts[ext]; !ok {
		return &ValidationError{Field: "attachment", Reason: fmt.Sprintf("file type %q not allowed", ext)}
	}
	return nil
}

// ProfileUpdateRequest carries a partial profile edit, optionally with a new
// avatar image.
type ProfileUpdateRequest struct {
	Patch  IdentityPatch `json:"patch"`
	Avatar *Attachment   `json:"-"`
}

func (r ProfileUpdateRequest) Validate() error {
	if r.Patch.Handle != nil && !handleRe.MatchString(*r.Patch.Handle) {
		return &ValidationError{Field: "handle", Reason: "must be 3-30 letters, digits or underscores"}
	}
	if r.Avatar != nil {
		return r.Avatar.Validate()
	}
	return nil
}
