package main

import (
	"context"
	"fmt"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/lms"
)

func (cli *commandLine) list(rt core.ResourceType, role, subjectID string) error {
	p, err := cli.principal()
	if err != nil {
		return err
	}
	filters, err := data.ListFilters(rt, role, subjectID)
	if err != nil {
		return err
	}
	records, err := cli.facade.List(context.Background(), p, rt, filters...)
	if err != nil {
		return err
	}
	return cli.print(records)
}

func (cli *commandLine) get(rt core.ResourceType, id string) error {
	p, err := cli.principal()
	if err != nil {
		return err
	}
	r, err := cli.facade.Get(context.Background(), p, rt, id)
	if err != nil {
		return err
	}
	return cli.print(r)
}

// create decodes body as a draft of type rt. Accounts go through the password policy.
func (cli *commandLine) create(rt core.ResourceType, body []byte) error {
	p, err := cli.principal()
	if err != nil {
		return err
	}
	ctx := context.Background()

	var created core.Resource
	if rt == core.TypeUser {
		nu, err := lms.DecodeNewUser(body)
		if err != nil {
			return err
		}
		if created, err = cli.facade.CreateUser(ctx, p, nu); err != nil {
			return err
		}
	} else {
		draft, err := lms.DecodeDraft(rt, body)
		if err != nil {
			return err
		}
		if created, err = cli.facade.Create(ctx, p, rt, draft); err != nil {
			return err
		}
	}
	return cli.print(created)
}

func (cli *commandLine) update(rt core.ResourceType, id string, body []byte) error {
	p, err := cli.principal()
	if err != nil {
		return err
	}
	patch, err := lms.DecodePatch(rt, body)
	if err != nil {
		return err
	}
	updated, err := cli.facade.Update(context.Background(), p, rt, id, patch)
	if err != nil {
		return err
	}
	return cli.print(updated)
}

func (cli *commandLine) delete(rt core.ResourceType, id string) error {
	p, err := cli.principal()
	if err != nil {
		return err
	}
	if err = cli.facade.Delete(context.Background(), p, rt, id); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cli.out, "Deleted %s %s\n", rt, id)
	return err
}
