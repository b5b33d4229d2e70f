package auth

import (
	"errors"
	"strings"

	"github.com/asaskevich/govalidator"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
)

type SignInForm struct {
	Email    string
	Password string
}

type SignUpForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Normalize trims every field.
func (f SignInForm) Normalize() SignInForm {
	return SignInForm{Email: strings.TrimSpace(f.Email), Password: strings.TrimSpace(f.Password)}
}

func (f SignUpForm) Normalize() SignUpForm {
	return SignUpForm{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: strings.TrimSpace(f.Password),
		Confirm:  strings.TrimSpace(f.Confirm),
	}
}

// Validate returns an error whose text is one of the constants.ErrorCode values.
func (f SignInForm) Validate() error {
	if f.Email == "" || f.Password == "" {
		return errors.New(constants.ErrorCodeMissingFields)
	}
	return validateCredentials(f.Email, f.Password)
}

func (f SignUpForm) Validate() error {
	if f.Email == "" || f.Password == "" || f.Name == "" || f.Confirm == "" {
		return errors.New(constants.ErrorCodeMissingFields)
	}
	if err := validateCredentials(f.Email, f.Password); err != nil {
		return err
	}
	if f.Password != f.Confirm {
		return errors.New(constants.ErrorCodePasswordMismatch)
	}
	return nil
}

func validateCredentials(email, password string) error {
	if !govalidator.IsEmail(email) {
		return errors.New(constants.ErrorCodeInvalidEmail)
	}
	if len([]rune(password)) < constants.MinPasswordLength {
		return errors.New(constants.ErrorCodePasswordTooShort)
	}
	return nil
}
