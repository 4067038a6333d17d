package config

import (
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("single_rune", validateSingleRune)
}

// validateSingleRune accepts strings holding exactly one non-newline rune.
func validateSingleRune(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && r != '\n' && r != '\r' && r != '"'
}
