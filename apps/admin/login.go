package main

import (
	"context"
	"fmt"

	"github.com/trezcool/brightspark/core/session"
)

func (cli *commandLine) login(email, pwd string) error {
	p, err := cli.session.SignIn(context.Background(), session.Credentials{Email: email, Password: pwd})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cli.out, "Signed in as %s (%s)\n", p.Name(), p.Role().Name())
	return err
}

func (cli *commandLine) logout() error {
	if err := cli.session.SignOut(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cli.out, "Signed out")
	return err
}

func (cli *commandLine) whoami() error {
	p, err := cli.principal()
	if err != nil {
		return err
	}
	org, _ := p.OrgAffiliation()
	return cli.print(map[string]string{
		"id":     p.ID(),
		"name":   p.Name(),
		"role":   string(p.Role()),
		"org_id": org,
	})
}
