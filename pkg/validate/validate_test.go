package validate_test

import (
	"errors"
	"testing"

	"github.com/Astemirdum/library-frontend/pkg/validate"
	"github.com/stretchr/testify/require"
)

type form struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Confirm  string `json:"confirmPassword" validate:"eqfield=Password"`
}

func TestFieldErrors(t *testing.T) {
	t.Parallel()
	v := validate.NewCustomValidator()

	err := v.Validate(form{Email: "nope", Password: "123", Confirm: "321"})
	require.Error(t, err)
	require.Equal(t, map[string]string{
		"email":           "email",
		"password":        "min",
		"confirmPassword": "eqfield",
	}, validate.FieldErrors(err))

	require.NoError(t, v.Validate(form{Email: "a@b.io", Password: "123456", Confirm: "123456"}))
	require.Nil(t, validate.FieldErrors(errors.New("plain")))
}
