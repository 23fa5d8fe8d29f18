package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	type form struct {
		Title string `json:"title" validate:"required"`
		Code  string `json:"code" validate:"omitempty,notblank"`
	}

	translator := NewTranslator()
	validate := NewValidator(translator)

	tests := []struct {
		name    string
		form    form
		wantErr string
	}{
		{"valid", form{Title: "Fractions", Code: "mat_01"}, ""},
		{"missing title", form{}, "title: this field is required"},
		{"blank code", form{Title: "Fractions", Code: "   "}, "code: this field cannot be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(validate, translator, tt.form)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidatorTags(t *testing.T) {
	validate := NewValidator(NewTranslator())

	assert.NoError(t, validate.Var("x", "notblank"))
	assert.Panics(t, func() { _ = validate.Var("x", "alphanum_") }, "only tags in use are registered")
}
