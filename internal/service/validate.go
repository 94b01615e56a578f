package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kayceejenz/mtop/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct tag validation and reports the first failing
// field as an ErrValidation.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return model.ValidationError("%s failed %s", lowerFirst(fe.Field()), fe.Tag())
	}
	return model.ValidationError("%v", err)
}

// requireUUID checks that id is a canonical UUID.
func requireUUID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return model.ValidationError("%s must be a UUID", field)
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
