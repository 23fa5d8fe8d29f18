package main

import (
	"context"
	"fmt"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/user"
)

// resetPassword sets the password of the account identified by email.
// The signed in account must be allowed to update it.
func (cli *commandLine) resetPassword(email, pwd string) error {
	p, err := cli.principal()
	if err != nil {
		return err
	}
	ctx := context.Background()
	usr, err := cli.facade.Directory().FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	patch := user.UpdateUser{Password: pwd, PasswordConfirm: pwd}
	if _, err = cli.facade.Update(ctx, p, core.TypeUser, usr.ID, patch); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cli.out, "Password of %s updated\n", usr.Email)
	return err
}
