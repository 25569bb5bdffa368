package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type RegisterInput struct {
	Username string `validate:"required,min=3,max=50,excludes=@"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=72"`
}

func validateRegistration(input RegisterInput) error {
	err := validate.Struct(input)
	if err == nil {
		return checkPasswordBytes(input.Password)
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Field() {
	case "Username":
		switch fe.Tag() {
		case "max":
			return ErrUsernameTooLong
		case "excludes":
			return ErrUsernameHasAt
		}
		return ErrUsernameTooShort
	case "Email":
		return ErrInvalidEmail
	default:
		if fe.Tag() == "max" {
			return ErrPasswordTooLong
		}
		return ErrPasswordTooShort
	}
}

func validatePassword(password string) error {
	if err := validate.Var(password, "required,min=8"); err != nil {
		return ErrPasswordTooShort
	}
	return checkPasswordBytes(password)
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// bcrypt rejects input longer than 72 bytes.
func checkPasswordBytes(password string) error {
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}
