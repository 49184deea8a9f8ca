package core

import (
	"context"

	"github.com/pkg/errors"
)

// Lookup fields holding the external identifiers of reference entities.
const (
	ThemeLookupField = "source_id"
	TagLookupField   = "tag_id"
)

// Resolver maps external theme/tag identifiers to internal entity names.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver backed by store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the names of entityType entities whose lookupField is one
// of externalIDs, using a single batched query.
//
// Identifiers without a matching entity are dropped without error so that a
// theme or tag that was never migrated does not block the story. The result
// order is the store's order, not the input order.
func (r *Resolver) Resolve(ctx context.Context, entityType, lookupField string, externalIDs []string) ([]string, error) {
	if len(externalIDs) == 0 {
		return []string{}, nil
	}

	names, err := r.store.Pluck(ctx, entityType, lookupField, externalIDs)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s by %s", entityType, lookupField)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
