package form

import (
	"errors"
	"strings"

	pkgerrors "authportal/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Field names one input of a credential form.
type Field int

const (
	FieldUsername Field = iota + 1
	FieldEmail
	FieldPassword
)

func (f Field) String() string {
	switch f {
	case FieldUsername:
		return "Username"
	case FieldEmail:
		return "email"
	case FieldPassword:
		return "password"
	default:
		return "unknown"
	}
}

// ParseField maps an input name to a Field. Matching is case-insensitive.
func ParseField(name string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "username":
		return FieldUsername, nil
	case "email":
		return FieldEmail, nil
	case "password":
		return FieldPassword, nil
	}
	return 0, pkgerrors.Newf(pkgerrors.UnknownField, "unknown field %q", name)
}

// LoginCredentials is the login form record.
type LoginCredentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// RegisterCredentials is the registration form record.
type RegisterCredentials struct {
	Username string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// missingFields names the empty required fields of a credential record.
func missingFields(record interface{}) []string {
	var verrs validator.ValidationErrors
	if !errors.As(validate.Struct(record), &verrs) {
		return nil
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if field, err := ParseField(fe.Field()); err == nil {
			names = append(names, field.String())
		}
	}
	return names
}
