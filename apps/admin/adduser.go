package main

import (
	"context"
	"fmt"

	"github.com/trezcool/brightspark/core/user"
)

// addUser creates an account on behalf of the signed in administrator.
func (cli *commandLine) addUser(nu user.NewUser) error {
	p, err := cli.principal()
	if err != nil {
		return err
	}
	usr, err := cli.facade.CreateUser(context.Background(), p, nu)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cli.out, "Created %s %s (%s)\n", usr.Role.Name(), usr.Email, usr.ID)
	return err
}
