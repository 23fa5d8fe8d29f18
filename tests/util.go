// Package testutil provides the fixtures-backed helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/policy"
	"github.com/trezcool/brightspark/core/user"
	"github.com/trezcool/brightspark/storage/database/fixtures"
	inmemdb "github.com/trezcool/brightspark/storage/database/inmem"
)

// SeededStore returns an in-memory store loaded with the demo dataset.
func SeededStore(t *testing.T, opts ...inmemdb.Option) *inmemdb.Store {
	t.Helper()
	store := inmemdb.Open(opts...)
	if err := store.Seed(context.Background(), fixtures.All()...); err != nil {
		t.Fatalf("seeding store failed: %v", err)
	}
	return store
}

// NewFacade returns a Facade over store. mailer may be nil.
func NewFacade(t *testing.T, store data.Store, mailer core.EmailService) *data.Facade {
	t.Helper()
	translator := core.NewTranslator()
	return data.NewFacade(store, policy.NewEngine(), data.NewValidator(translator), translator, mailer, NewLogger(t))
}

// Principal returns the principal of the demo account identified by id.
func Principal(t *testing.T, id string) user.Principal {
	t.Helper()
	p, ok := fixtures.Principals()[id]
	if !ok {
		t.Fatalf("no demo account %q", id)
	}
	return p
}

// Logger writes log entries to the test log.
type Logger struct {
	t *testing.T
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger { return &Logger{t: t} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s: %s %s", level, msg, fmt.Sprint(args...))
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %s", msg, fmt.Sprint(args...)) }

// Mailbox records rendered messages instead of sending them.
type Mailbox struct {
	mu       sync.Mutex
	messages []core.EmailMessage
}

var _ core.EmailService = (*Mailbox)(nil)

func (mb *Mailbox) SendMessages(messages ...*core.EmailMessage) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for _, msg := range messages {
		if err := msg.Render("http://localhost:8080"); err != nil {
			panic(err)
		}
		mb.messages = append(mb.messages, *msg)
	}
}

func (mb *Mailbox) Messages() []core.EmailMessage {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return append([]core.EmailMessage(nil), mb.messages...)
}
