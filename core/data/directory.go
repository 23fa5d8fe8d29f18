package data

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/user"
)

// EmailFinder is implemented by stores able to look an account up by email directly.
type EmailFinder interface {
	FindUserByEmail(ctx context.Context, email string) (user.User, error)
}

// Directory looks accounts up in a Store, bypassing the policy.
// It serves authentication and uniqueness checks only.
type Directory struct {
	store Store
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (user.User, error) {
	email = core.CleanString(email, true /* lower */)
	if finder, ok := d.store.(EmailFinder); ok {
		return finder.FindUserByEmail(ctx, email)
	}

	records, err := d.store.List(ctx, core.TypeUser)
	if err != nil {
		return user.User{}, errors.Wrap(err, "listing users")
	}
	for _, r := range records {
		if usr, ok := r.(user.User); ok && usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, errors.Wrapf(core.ErrNotFound, "user %q", email)
}

// FindByID returns the account with the given identifier.
func (d *Directory) FindByID(ctx context.Context, id string) (user.User, error) {
	r, err := d.store.Get(ctx, core.TypeUser, id)
	if err != nil {
		return user.User{}, err
	}
	usr, ok := r.(user.User)
	if !ok {
		return user.User{}, errors.Errorf("user %s: unexpected record %T", id, r)
	}
	return usr, nil
}
