// Package schema declares the request payload shapes accepted by the
// storefront: sign-in, sign-up, shipping address and password reset.
package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// SignIn is the credentials payload.
type SignIn struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUp registers a customer account.
type SignUp struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Address is a shipping address.
type Address struct {
	FullName   string `json:"fullName" validate:"required,max=100"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
	Phone      string `json:"phone" validate:"omitempty,e164"`
}

// PasswordResetRequest asks for a reset link.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordReset sets a new password using a reset token.
type PasswordReset struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

var forms = map[string]func() any{
	"sign-in":                func() any { return &SignIn{} },
	"sign-up":                func() any { return &SignUp{} },
	"address":                func() any { return &Address{} },
	"password-reset-request": func() any { return &PasswordResetRequest{} },
	"password-reset":         func() any { return &PasswordReset{} },
}

// Names lists the known form names in sorted order.
func Names() []string {
	names := make([]string, 0, len(forms))
	for n := range forms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns an empty payload for the named form.
func New(name string) (any, bool) {
	f, ok := forms[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Check decodes body into the named form and validates it. Unknown forms
// yield a NotFound error; malformed JSON an InvalidInput error; rule
// violations a *validator.ValidationError.
func Check(name string, body io.Reader) error {
	dst, ok := New(name)
	if !ok {
		return apperrors.NotFound("Form")
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("invalid %s payload: %v", name, err))
	}
	return validator.Validate(dst)
}
