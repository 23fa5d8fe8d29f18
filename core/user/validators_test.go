package user

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/brightspark/core"
)

func TestNewUser_Validation(t *testing.T) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	InitValidators(validate, translator)

	valid := NewUser{
		Name:            "Teacher Johnson",
		Email:           "johnson@brightspark.com",
		Role:            RoleEducator,
		OrgID:           "1",
		Password:        "Gr33n-Tea!",
		PasswordConfirm: "Gr33n-Tea!",
	}
	withPwd := func(pwd string) NewUser {
		nu := valid
		nu.Password = pwd
		nu.PasswordConfirm = pwd
		return nu
	}

	tests := []struct {
		name      string
		nu        NewUser
		wantField string
		wantMsg   string
	}{
		{name: "valid", nu: valid},
		{name: "unknown role", nu: func() NewUser { nu := valid; nu.Role = "janitor"; return nu }(), wantField: "role", wantMsg: "invalid role"},
		{name: "bad email", nu: func() NewUser { nu := valid; nu.Email = "johnson"; return nu }(), wantField: "email"},
		{name: "confirmation mismatch", nu: func() NewUser { nu := valid; nu.PasswordConfirm = "nope"; return nu }(), wantField: "password_confirm"},
		{name: "too short", nu: withPwd("Ab1!"), wantField: "password", wantMsg: pwdMinLenText},
		{name: "whitespace", nu: withPwd("Abc 123!xyz"), wantField: "password", wantMsg: pwdNoSpaceText},
		{name: "all numeric", nu: withPwd("1234567890"), wantField: "password", wantMsg: pwdNotAllNumText},
		{name: "not complex", nu: withPwd("abcdefgh1"), wantField: "password", wantMsg: pwdComplexityText},
		{name: "similar to email", nu: withPwd("Johnson@brightspark.c0m"), wantField: "password", wantMsg: pwdAttrSimText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateStruct(validate, translator, tt.nu)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			if !assert.True(t, errors.As(err, &vErr), "error = %v, want *core.ValidationError", err) {
				return
			}
			var found bool
			for _, fld := range vErr.Fields {
				if fld.Field == tt.wantField {
					found = true
					if tt.wantMsg != "" {
						assert.Equal(t, tt.wantMsg, fld.Error)
					}
				}
			}
			assert.True(t, found, "no error on field %q: %+v", tt.wantField, vErr.Fields)
		})
	}
}
