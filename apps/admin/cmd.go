package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/lms"
	"github.com/trezcool/brightspark/core/session"
	"github.com/trezcool/brightspark/core/user"
	"github.com/trezcool/brightspark/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp          = errors.New("help provided")
	errNotSignedIn   = errors.New("not signed in: run `login` first")
	errEmptyPassword = errors.New("empty password")
)

type commandLine struct {
	backend *database.Backend
	facade  *data.Facade
	session *session.Store
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  login -email EMAIL                  - sign in; the password is prompted")
	_, _ = fmt.Fprintln(cli.out, "  logout                              - sign out")
	_, _ = fmt.Fprintln(cli.out, "  whoami                              - print the signed in account")
	_, _ = fmt.Fprintln(cli.out, "  list -type TYPE [-role ROLE] [-subject ID] - list the visible records of TYPE")
	_, _ = fmt.Fprintln(cli.out, "  get -type TYPE -id ID               - print a record")
	_, _ = fmt.Fprintln(cli.out, "  create -type TYPE -data JSON        - create a record")
	_, _ = fmt.Fprintln(cli.out, "  update -type TYPE -id ID -data JSON - patch a record")
	_, _ = fmt.Fprintln(cli.out, "  delete -type TYPE -id ID            - delete a record")
	_, _ = fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL -role ROLE [-org ORG] - create an account; the password is prompted")
	_, _ = fmt.Fprintln(cli.out, "  resetpassword -email EMAIL          - set an account's password; the password is prompted")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]              - run a goose migration command (postgres store)")
	_, _ = fmt.Fprintln(cli.out, "  seed                                - load the demo dataset")
	_, _ = fmt.Fprintln(cli.out, "TYPE is one of: "+lms.TypeNames())
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch cmd, rest := args[1], args[2:]; cmd {
	case "login":
		fs := cli.flagSet(cmd)
		email := fs.String("email", "", "The account's email. The password will be prompted next.")
		if err := parse(fs, rest); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		return cli.login(*email, pwd)

	case "logout":
		return cli.logout()

	case "whoami":
		return cli.whoami()

	case "list":
		fs := cli.flagSet(cmd)
		typ := fs.String("type", "", "The resource type: "+lms.TypeNames())
		role := fs.String("role", "", "Only list the users holding this role.")
		subject := fs.String("subject", "", "Only list the learning units or assignments of this subject id.")
		if err := parse(fs, rest); err != nil {
			return err
		}
		rt, err := requireType(fs, *typ)
		if err != nil {
			return err
		}
		return cli.list(rt, *role, *subject)

	case "get", "delete":
		fs := cli.flagSet(cmd)
		typ := fs.String("type", "", "The resource type: "+lms.TypeNames())
		id := fs.String("id", "", "The record id.")
		if err := parse(fs, rest); err != nil {
			return err
		}
		rt, err := requireType(fs, *typ)
		if err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if cmd == "get" {
			return cli.get(rt, *id)
		}
		return cli.delete(rt, *id)

	case "create", "update":
		fs := cli.flagSet(cmd)
		typ := fs.String("type", "", "The resource type: "+lms.TypeNames())
		id := fs.String("id", "", "The record id (update only).")
		body := fs.String("data", "", "The record fields, as a JSON object.")
		if err := parse(fs, rest); err != nil {
			return err
		}
		rt, err := requireType(fs, *typ)
		if err != nil {
			return err
		}
		if *body == "" || (cmd == "update" && *id == "") {
			fs.Usage()
			return errHelp
		}
		if cmd == "create" {
			return cli.create(rt, []byte(*body))
		}
		return cli.update(rt, *id, []byte(*body))

	case "adduser":
		fs := cli.flagSet(cmd)
		name := fs.String("name", "", "The account holder's name.")
		email := fs.String("email", "", "The account's email.")
		role := fs.String("role", "", "One of: platform_admin, org_admin, educator, guardian, learner.")
		org := fs.String("org", "", "The organization id (ignored for org admins, who add accounts to their own).")
		if err := parse(fs, rest); err != nil {
			return err
		}
		if *name == "" || *email == "" || *role == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		return cli.addUser(user.NewUser{
			Name:            *name,
			Email:           *email,
			Role:            user.Role(*role),
			OrgID:           *org,
			Password:        pwd,
			PasswordConfirm: pwd,
		})

	case "resetpassword":
		fs := cli.flagSet(cmd)
		email := fs.String("email", "", "The account's email. The password will be prompted next.")
		if err := parse(fs, rest); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword("Enter new password:")
		if err != nil {
			return err
		}
		return cli.resetPassword(*email, pwd)

	case "migrate":
		if len(rest) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(rest)

	case "seed":
		return cli.seed()

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

func requireType(fs *flag.FlagSet, typ string) (core.ResourceType, error) {
	if typ == "" {
		fs.Usage()
		return "", errHelp
	}
	return lms.ParseType(typ)
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	_, _ = fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(syscall.Stdin)
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

// principal returns the signed in principal.
func (cli *commandLine) principal() (user.Principal, error) {
	p, ok := cli.session.Current()
	if !ok {
		return user.Principal{}, errNotSignedIn
	}
	return p, nil
}

func (cli *commandLine) print(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
