// Package data is the policy-enforcing access layer between callers and the backing store.
package data

import (
	"context"

	"github.com/trezcool/brightspark/core"
)

type (
	// Store is a backing store. It applies no policy; every call is atomic.
	// Absent records are reported with core.ErrNotFound.
	Store interface {
		List(ctx context.Context, rt core.ResourceType) ([]core.Resource, error)
		Get(ctx context.Context, rt core.ResourceType, id string) (core.Resource, error)
		// Insert assigns the record's identifier and timestamps, then saves it.
		Insert(ctx context.Context, draft core.Resource) (core.Resource, error)
		// Update applies patch to the stored record and saves the result, in a single critical section.
		Update(ctx context.Context, rt core.ResourceType, id string, patch core.Patch) (core.Resource, error)
		// Delete removes the record once every precondition accepted it.
		Delete(ctx context.Context, rt core.ResourceType, id string, preconditions ...func(core.Resource) error) error
	}

	// Seeder loads records keeping their identifiers.
	Seeder interface {
		Seed(ctx context.Context, records ...core.Resource) error
	}
)
