package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/session"
	"github.com/trezcool/brightspark/storage/database"
	"github.com/trezcool/brightspark/storage/database/fixtures"
	testutil "github.com/trezcool/brightspark/tests"
)

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    []string
	wantNotOut []string
	extra      interface{}
}

// passwords are the successive answers to password prompts.
type passwords []string

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	store := testutil.SeededStore(t)
	facade := testutil.NewFacade(t, store, nil)
	codec := session.NewTokenCodec("test-secret", "Brightspark", time.Hour)
	out := new(bytes.Buffer)
	return &commandLine{
		backend: &database.Backend{Store: store},
		facade:  facade,
		session: session.Open(facade.Directory(), new(session.MemorySlot), codec, testutil.NewLogger(t)),
		out:     out,
	}, out
}

func mockPasswords(pwds passwords) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if len(pwds) == 0 {
			return nil, nil
		}
		pwd := pwds[0]
		pwds = pwds[1:]
		return []byte(pwd), nil
	}
}

func signIn(t *testing.T, cli *commandLine, email string) {
	t.Helper()
	mockPasswords(passwords{fixtures.Password})
	if err := cli.run([]string{"admin", "login", "-email", email}); err != nil {
		t.Fatalf("login as %s failed: %v", email, err)
	}
}

func runTests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwds, _ := tt.extra.(passwords)
		mockPasswords(pwds)
		out.Reset()

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output %q does not contain %q", out.String(), want)
				}
			}
			for _, unwanted := range tt.wantNotOut {
				if strings.Contains(out.String(), unwanted) {
					t.Errorf("output %q contains %q", out.String(), unwanted)
				}
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)
	runTests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:", "learning-units"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "login: no email", args: []string{"login"}, wantErr: errHelp},
		{name: "login: help", args: []string{"login", "-h"}, wantErr: errHelp},
		{name: "login: no password", args: []string{"login", "-email", "teacher@brightspark.com"}, wantErr: errEmptyPassword},
		{name: "list: no type", args: []string{"list"}, wantErr: errHelp},
		{name: "list: unknown type", args: []string{"list", "-type", "classes"}, wantErrStr: `"classes": unknown resource type`},
		{name: "get: no id", args: []string{"get", "-type", "subjects"}, wantErr: errHelp},
		{name: "update: no data", args: []string{"update", "-type", "subjects", "-id", "1"}, wantErr: errHelp},
		{name: "update: no id", args: []string{"update", "-type", "subjects", "-data", "{}"}, wantErr: errHelp},
		{name: "adduser: no role", args: []string{"adduser", "-name", "A", "-email", "a@b.c"}, wantErr: errHelp},
		{name: "resetpassword: no email", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "migrate: no command", args: []string{"migrate"}, wantErr: errHelp},
		{name: "list: not signed in", args: []string{"list", "-type", "subjects"}, wantErr: errNotSignedIn},
		{name: "whoami: not signed in", args: []string{"whoami"}, wantErr: errNotSignedIn},
	})
}

func Test_commandLine_session(t *testing.T) {
	cli, out := setup(t)
	runTests(t, cli, out, []cliTest{
		{name: "wrong password", args: []string{"login", "-email", "teacher@brightspark.com"}, extra: passwords{"lol"}, wantErr: session.ErrAuthenticationFailed},
		{name: "unknown account", args: []string{"login", "-email", "lol@brightspark.com"}, extra: passwords{fixtures.Password}, wantErr: session.ErrAuthenticationFailed},
		{name: "login", args: []string{"login", "-email", "teacher@brightspark.com"}, extra: passwords{fixtures.Password}, wantOut: []string{"Signed in as Teacher Smith (Educator)"}},
		{name: "whoami", args: []string{"whoami"}, wantOut: []string{`"id": "3"`, `"role": "educator"`, `"org_id": "1"`}},
		{name: "logout", args: []string{"logout"}, wantOut: []string{"Signed out"}},
		{name: "logout twice", args: []string{"logout"}, wantOut: []string{"Signed out"}},
		{name: "whoami after logout", args: []string{"whoami"}, wantErr: errNotSignedIn},
	})
}

func Test_commandLine_records(t *testing.T) {
	cli, out := setup(t)

	signIn(t, cli, "williams@brightspark.com")
	runTests(t, cli, out, []cliTest{
		{name: "learner lists assignments", args: []string{"list", "-type", "assignments"}, wantOut: []string{"Weekly Math Quiz"}, wantNotOut: []string{"Reading Comprehension"}},
		{name: "learner gets a foreign assignment", args: []string{"get", "-type", "assignment", "-id", "2"}, wantErr: core.ErrPermissionDenied},
		{name: "learner gets an account", args: []string{"get", "-type", "users", "-id", "4"}, wantErr: core.ErrNotFound},
		{name: "learner creates a unit", args: []string{"create", "-type", "learning-units", "-data", `{"title": "Shapes", "subject_id": "1", "key_stage": "KS1", "content_type": "video"}`}, wantErr: core.ErrPermissionDenied},
	})

	signIn(t, cli, "teacher@brightspark.com")
	runTests(t, cli, out, []cliTest{
		{name: "educator creates a unit", args: []string{"create", "-type", "learning-units", "-data", `{"title": "Shapes", "subject_id": "1", "key_stage": "KS1", "content_type": "video"}`}, wantOut: []string{`"title": "Shapes"`, `"created_by": "3"`, `"org_id": "1"`}},
		{name: "educator creates an invalid unit", args: []string{"create", "-type", "learning-units", "-data", `{"subject_id": "1", "key_stage": "KS1", "content_type": "video"}`}, wantErrStr: "title: this field is required"},
		{name: "educator lists a subject's units", args: []string{"list", "-type", "learning-units", "-subject", "1"}, wantOut: []string{"Basic Addition for Year 1", "Multiplication Tables"}, wantNotOut: []string{"Phonics", "Plants and Growth"}},
		{name: "educator lists learners", args: []string{"list", "-type", "users", "-role", "learner"}, wantOut: []string{"Student Jones", "Student Williams"}},
		{name: "educator filters by an unknown role", args: []string{"list", "-type", "users", "-role", "janitor"}, wantErrStr: "role: unknown role janitor"},
		{name: "educator filters subjects by subject", args: []string{"list", "-type", "subjects", "-subject", "1"}, wantErrStr: "subject_id: only learning units and assignments can be filtered by subject"},
		{name: "educator updates own unit", args: []string{"update", "-type", "learning-units", "-id", "1", "-data", `{"title": "Addition Basics"}`}, wantOut: []string{`"title": "Addition Basics"`}},
		{name: "educator updates a colleague's unit", args: []string{"update", "-type", "learning-units", "-id", "3", "-data", `{"title": "Mine now"}`}, wantErr: core.ErrPermissionDenied},
		{name: "educator deletes own assignment", args: []string{"delete", "-type", "assignments", "-id", "1"}, wantOut: []string{"Deleted assignment 1"}},
		{name: "deleted assignment is gone", args: []string{"get", "-type", "assignments", "-id", "1"}, wantErr: core.ErrNotFound},
		{name: "educator cannot add accounts", args: []string{"adduser", "-name", "New Student", "-email", "new@brightspark.com", "-role", "learner"}, extra: passwords{"Gr33n-Tea!"}, wantErr: core.ErrPermissionDenied},
	})
}

func Test_commandLine_accounts(t *testing.T) {
	cli, out := setup(t)

	signIn(t, cli, "school@brightspark.com")
	runTests(t, cli, out, []cliTest{
		{name: "add learner", args: []string{"adduser", "-name", "Student Taylor", "-email", "taylor@brightspark.com", "-role", "learner", "-org", "2"}, extra: passwords{"Gr33n-Tea!"}, wantOut: []string{"Created Learner taylor@brightspark.com"}},
		{name: "weak password", args: []string{"adduser", "-name", "Student Lee", "-email", "lee@brightspark.com", "-role", "learner"}, extra: passwords{"12345678"}, wantErrStr: "password: password cannot be entirely numeric"},
		{name: "add peer admin", args: []string{"adduser", "-name", "Admin Two", "-email", "admin2@brightspark.com", "-role", "org_admin"}, extra: passwords{"Gr33n-Tea!"}, wantErr: core.ErrPermissionDenied},
		{name: "reset learner password", args: []string{"resetpassword", "-email", "taylor@brightspark.com"}, extra: passwords{"R3d-Coffee!"}, wantOut: []string{"Password of taylor@brightspark.com updated"}},
		{name: "reset educator password", args: []string{"resetpassword", "-email", "teacher@brightspark.com"}, extra: passwords{"R3d-Coffee!"}},
		{name: "reset unknown account", args: []string{"resetpassword", "-email", "lol@brightspark.com"}, extra: passwords{"R3d-Coffee!"}, wantErr: core.ErrNotFound},
		{name: "new account signs in", args: []string{"login", "-email", "taylor@brightspark.com"}, extra: passwords{"R3d-Coffee!"}, wantOut: []string{"Signed in as Student Taylor (Learner)"}},
		{name: "new account is in the admin's org", args: []string{"whoami"}, wantOut: []string{`"org_id": "1"`}},
	})
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t)
	signIn(t, cli, "admin@brightspark.com")

	runTests(t, cli, out, []cliTest{
		{name: "delete badge", args: []string{"delete", "-type", "badges", "-id", "1"}},
		{name: "seed", args: []string{"seed"}, wantOut: []string{fmt.Sprintf("Seeded %d records", len(fixtures.All()))}},
		{name: "badge is back", args: []string{"get", "-type", "badges", "-id", "1"}, wantOut: []string{"Math Star"}},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	runTests(t, cli, out, []cliTest{
		{name: "memory store", args: []string{"migrate", "up"}, wantErr: errNoDatabase},
	})

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	cli.backend.DB = sqlx.NewDb(db, "postgres")

	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	defer func() { migrateFunc = database.Migrate }()

	runTests(t, cli, out, []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "add_class", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	})
}
