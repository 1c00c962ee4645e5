package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	usernameRule    = "required,max=100"
	emailRule       = "required,max=200,email"
	titleRule       = "required,max=200"
	descriptionRule = "max=1000"
	// bcrypt only looks at the first 72 bytes.
	maxPasswordBytes = 72
)

var validate = validator.New()

// checkField trims value and validates it against rule, wrapping failures in ErrValidation.
func checkField(name, value, rule string) (string, error) {
	value = strings.TrimSpace(value)
	if err := validate.Var(value, rule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return "", fmt.Errorf("%w: %s failed on the '%s' rule", ErrValidation, name, verrs[0].Tag())
		}
		return "", fmt.Errorf("%w: %s: %v", ErrValidation, name, err)
	}
	return value, nil
}

// checkUserFields validates the identity fields shared by registration, create and update.
func checkUserFields(username, email string) (string, string, error) {
	username, err := checkField("username", username, usernameRule)
	if err != nil {
		return "", "", err
	}
	email, err = checkField("email", email, emailRule)
	if err != nil {
		return "", "", err
	}
	return username, email, nil
}

// checkPassword rejects blank and over-long passwords. The password itself is not trimmed.
func checkPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: password failed on the 'required' rule", ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password failed on the 'max' rule", ErrValidation)
	}
	return nil
}
