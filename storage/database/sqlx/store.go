// Package sqlxdb is a Store keeping records as JSON documents in PostgreSQL.
package sqlxdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/core/lms"
	"github.com/trezcool/brightspark/core/user"
)

const columns = "type, id, org_id, doc, secret, created_at, updated_at"

const (
	listQuery   = "SELECT " + columns + " FROM resources WHERE type = $1 ORDER BY created_at, id"
	getQuery    = "SELECT " + columns + " FROM resources WHERE type = $1 AND id = $2"
	lockQuery   = getQuery + " FOR UPDATE"
	insertQuery = "INSERT INTO resources (" + columns + ") VALUES (:type, :id, :org_id, :doc, :secret, :created_at, :updated_at)"
	upsertQuery = insertQuery + ` ON CONFLICT (type, id) DO UPDATE
		SET org_id = EXCLUDED.org_id, doc = EXCLUDED.doc, secret = EXCLUDED.secret, updated_at = EXCLUDED.updated_at`
	updateQuery = "UPDATE resources SET org_id = :org_id, doc = :doc, secret = :secret, updated_at = :updated_at WHERE type = :type AND id = :id"
	deleteQuery = "DELETE FROM resources WHERE type = $1 AND id = $2"
	emailQuery  = "SELECT " + columns + " FROM resources WHERE type = 'user' AND doc ->> 'email' = $1"
)

type (
	Store struct {
		db  *sqlx.DB
		now func() time.Time
	}

	row struct {
		Type      string      `db:"type"`
		ID        string      `db:"id"`
		OrgID     null.String `db:"org_id"`
		Doc       []byte      `db:"doc"`
		Secret    null.Bytes  `db:"secret"`
		CreatedAt null.Time   `db:"created_at"`
		UpdatedAt null.Time   `db:"updated_at"`
	}

	// secretive records keep a value out of their document, such as a password hash.
	secretive interface {
		Secret() []byte
		WithSecret(secret []byte) core.Resource
	}
)

var (
	_ data.Store       = (*Store)(nil) // interface compliance check
	_ data.Seeder      = (*Store)(nil)
	_ data.EmailFinder = (*Store)(nil)
)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) boil(r core.Resource, at time.Time) (row, error) {
	doc, err := json.Marshal(r)
	if err != nil {
		return row{}, errors.Wrapf(err, "encoding %s", r.ResourceType())
	}
	rw := row{
		Type:      string(r.ResourceType()),
		ID:        r.ResourceID(),
		Doc:       doc,
		CreatedAt: null.TimeFrom(at.UTC()),
		UpdatedAt: null.TimeFrom(at.UTC()),
	}
	if t, ok := r.(core.Tenanted); ok {
		org := t.OrgAffiliation()
		rw.OrgID = null.NewString(org, org != "")
	}
	if sr, ok := r.(secretive); ok {
		rw.Secret = null.NewBytes(sr.Secret(), len(sr.Secret()) > 0)
	}
	return rw, nil
}

func (s *Store) unboil(rw row) (core.Resource, error) {
	r, err := lms.Decode(core.ResourceType(rw.Type), rw.Doc)
	if err != nil {
		return nil, err
	}
	if sr, ok := r.(secretive); ok && rw.Secret.Valid {
		r = sr.WithSecret(rw.Secret.Bytes)
	}
	return r, nil
}

// trapNoRowsErr maps psql "no rows" err to core.ErrNotFound, and a closed connection to a shutdown error.
func trapNoRowsErr(err error, msg string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errors.Wrap(core.ErrNotFound, msg)
	case errors.Is(err, sql.ErrConnDone):
		return errors.Wrap(core.NewShutdownError("database connection closed"), msg)
	}
	return errors.Wrap(err, msg)
}

func (s *Store) List(ctx context.Context, rt core.ResourceType) ([]core.Resource, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, listQuery, rt); err != nil {
		return nil, trapNoRowsErr(err, "querying "+string(rt))
	}
	records := make([]core.Resource, 0, len(rows))
	for _, rw := range rows {
		r, err := s.unboil(rw)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *Store) Get(ctx context.Context, rt core.ResourceType, id string) (core.Resource, error) {
	var rw row
	if err := s.db.GetContext(ctx, &rw, getQuery, rt, id); err != nil {
		return nil, trapNoRowsErr(err, string(rt)+" "+id)
	}
	return s.unboil(rw)
}

func (s *Store) Insert(ctx context.Context, draft core.Resource) (core.Resource, error) {
	now := s.now()
	r := draft.Identify(uuid.New().String(), now)
	rw, err := s.boil(r, now)
	if err != nil {
		return nil, err
	}
	if _, err = s.db.NamedExecContext(ctx, insertQuery, rw); err != nil {
		return nil, errors.Wrapf(err, "inserting %s", r.ResourceType())
	}
	return r, nil
}

// locked runs fn on the stored record inside a transaction holding its row lock.
func (s *Store) locked(ctx context.Context, rt core.ResourceType, id string, fn func(tx *sqlx.Tx, cur core.Resource) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var rw row
	if err = tx.GetContext(ctx, &rw, lockQuery, rt, id); err != nil {
		return trapNoRowsErr(err, string(rt)+" "+id)
	}
	cur, err := s.unboil(rw)
	if err != nil {
		return err
	}
	if err = fn(tx, cur); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (s *Store) Update(ctx context.Context, rt core.ResourceType, id string, patch core.Patch) (core.Resource, error) {
	var updated core.Resource
	err := s.locked(ctx, rt, id, func(tx *sqlx.Tx, cur core.Resource) error {
		next, err := patch.Apply(cur)
		if err != nil {
			return err
		}
		if next.ResourceType() != rt || next.ResourceID() != id {
			return errors.Errorf("%s %s: patch changed the record identity", rt, id)
		}
		now := s.now()
		next = next.Touch(now)
		rw, err := s.boil(next, now)
		if err != nil {
			return err
		}
		if _, err = tx.NamedExecContext(ctx, updateQuery, rw); err != nil {
			return errors.Wrapf(err, "updating %s %s", rt, id)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, rt core.ResourceType, id string, preconditions ...func(core.Resource) error) error {
	return s.locked(ctx, rt, id, func(tx *sqlx.Tx, cur core.Resource) error {
		for _, check := range preconditions {
			if err := check(cur); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, deleteQuery, rt, id); err != nil {
			return errors.Wrapf(err, "deleting %s %s", rt, id)
		}
		return nil
	})
}

// Seed upserts records as they are, keeping their identifiers.
func (s *Store) Seed(ctx context.Context, records ...core.Resource) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now()
	for _, r := range records {
		if r.ResourceID() == "" {
			return errors.Errorf("seeding %s: missing identifier", r.ResourceType())
		}
		rw, err := s.boil(r, now)
		if err != nil {
			return err
		}
		if _, err = tx.NamedExecContext(ctx, upsertQuery, rw); err != nil {
			return errors.Wrapf(err, "seeding %s %s", r.ResourceType(), r.ResourceID())
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (user.User, error) {
	var rw row
	if err := s.db.GetContext(ctx, &rw, emailQuery, email); err != nil {
		return user.User{}, trapNoRowsErr(err, "user "+email)
	}
	r, err := s.unboil(rw)
	if err != nil {
		return user.User{}, err
	}
	usr, ok := r.(user.User)
	if !ok {
		return user.User{}, errors.Errorf("user %s: unexpected record %T", email, r)
	}
	return usr, nil
}
