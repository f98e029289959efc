package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the project's custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("not_blank", NotBlank)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("unique_ids", UniqueIDs)
}

// NotBlank rejects strings made only of whitespace. Empty strings pass;
// combine with required when the field is mandatory.
func NotBlank(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return strings.TrimSpace(val) != ""
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		// Supplementary planes are mostly emoji/pictographs
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// UniqueIDs rejects int64 slices with repeated values.
func UniqueIDs(fl validator.FieldLevel) bool {
	ids, ok := fl.Field().Interface().([]int64)
	if !ok {
		return false
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}
