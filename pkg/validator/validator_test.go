package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Title string `json:"title" validate:"required,max=10"`
	Email string `json:"email" validate:"omitempty,email"`
	Kind  string `json:"kind" validate:"omitempty,oneof=info warning"`
}

func TestValidateStructSuccess(t *testing.T) {
	require.NoError(t, ValidateStruct(&samplePayload{Title: "ok"}))
}

func TestValidateStructFieldMap(t *testing.T) {
	err := ValidateStruct(&samplePayload{Email: "not-an-email", Kind: "fatal"})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)

	fields := ve.FieldMap()
	require.Equal(t, []string{"This field is required."}, fields["title"])
	require.Equal(t, []string{"Enter a valid email address."}, fields["email"])
	require.Equal(t, []string{"Value must be one of: info, warning."}, fields["kind"])
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := ValidateStruct(&samplePayload{Title: "far too long title"})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Equal(t, "title", ve[0].Field)
	require.Equal(t, "Ensure this field has no more than 10 characters.", ve[0].Reason())
}
