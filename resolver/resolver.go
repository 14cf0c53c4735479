// Package resolver translates human-readable references into platform ids.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/crmarques/ddiconf/debugctx"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/filter"
	"github.com/crmarques/ddiconf/monitoring"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/server"
)

// ErrAmbiguousMatch marks lookups that matched more than one object under
// the ErrorOnAmbiguous policy.
var ErrAmbiguousMatch = errors.New("ambiguous match")

type outcome struct {
	id    string
	found bool
}

// Resolver memoizes outcomes for the lifetime of one reconciliation. Create a
// new Resolver per call; ids are not assumed stable across calls.
type Resolver struct {
	client    server.Client
	ambiguity descriptor.AmbiguityPolicy

	mu      sync.Mutex
	memo    map[string]outcome
	lookups int
}

type Option func(*Resolver)

func WithAmbiguity(policy descriptor.AmbiguityPolicy) Option {
	return func(r *Resolver) {
		r.ambiguity = policy
	}
}

func New(client server.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client:    client,
		ambiguity: descriptor.TakeFirst,
		memo:      map[string]outcome{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookups reports how many list calls this resolver has issued.
func (r *Resolver) Lookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups
}

// Resolve looks name up against each target in order and returns the id of
// the first match. Zero matches on every target is found=false with a nil
// error. Scope terms narrow every lookup.
func (r *Resolver) Resolve(ctx context.Context, targets []descriptor.Target, name string, scope ...filter.Term) (string, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, faults.NewTypedError(faults.ValidationError, "reference name must not be empty", nil)
	}
	if len(targets) == 0 {
		return "", false, faults.NewTypedError(faults.InternalError, "reference has no lookup target", nil)
	}

	for _, target := range targets {
		expression := filter.New(filter.Eq(target.LookupField, name)).And(scope...)
		id, found, err := r.resolveOne(ctx, target.Collection, expression, name)
		if err != nil {
			return "", false, err
		}
		if found {
			return id, true, nil
		}
	}
	return "", false, nil
}

// Require is Resolve with a missing reference reported as a
// ReferenceResolutionError naming the reference.
func (r *Resolver) Require(ctx context.Context, param string, targets []descriptor.Target, name string, scope ...filter.Term) (string, error) {
	id, found, err := r.Resolve(ctx, targets, name, scope...)
	if err != nil {
		return "", err
	}
	if !found {
		return "", faults.NewTypedError(
			faults.ReferenceResolutionError,
			fmt.Sprintf("%s %q not found in %s", param, name, collectionsOf(targets)),
			nil,
		)
	}
	return id, nil
}

func (r *Resolver) resolveOne(ctx context.Context, collection string, expression filter.Expression, name string) (string, bool, error) {
	memoKey := collection + "|" + expression.String()
	logger := debugctx.Logger(ctx).WithName("resolver")

	r.mu.Lock()
	cached, ok := r.memo[memoKey]
	r.mu.Unlock()
	if ok {
		monitoring.RecordReferenceLookup(collection, "memoized")
		logger.Info("memoized reference", "collection", collection, "name", name, "found", cached.found)
		return cached.id, cached.found, nil
	}

	results, err := r.list(ctx, collection, filter.Query{Filter: expression})
	if err != nil {
		monitoring.RecordReferenceLookup(collection, "error")
		return "", false, lookupFailed(collection, name, err)
	}

	result := outcome{}
	switch {
	case len(results) == 0:
	case len(results) > 1 && r.ambiguity == descriptor.ErrorOnAmbiguous:
		monitoring.RecordReferenceLookup(collection, "ambiguous")
		return "", false, faults.NewTypedError(
			faults.ReferenceResolutionError,
			fmt.Sprintf("%q matched %d objects in %s", name, len(results), collection),
			ErrAmbiguousMatch,
		)
	default:
		result = outcome{id: resource.ID(results[0]), found: true}
	}

	r.mu.Lock()
	r.memo[memoKey] = result
	r.mu.Unlock()

	if result.found {
		monitoring.RecordReferenceLookup(collection, "found")
	} else {
		monitoring.RecordReferenceLookup(collection, "not_found")
	}
	logger.Info("resolved reference", "collection", collection, "name", name, "found", result.found, "id", result.id)
	return result.id, result.found, nil
}

// Find lists collection with query without memoization.
func (r *Resolver) Find(ctx context.Context, collection string, query filter.Query) ([]resource.Object, error) {
	return r.list(ctx, collection, query)
}

func (r *Resolver) list(ctx context.Context, collection string, query filter.Query) ([]resource.Object, error) {
	r.mu.Lock()
	r.lookups++
	r.mu.Unlock()

	path := query.Path("/" + strings.Trim(collection, "/"))
	response, err := r.client.Get(ctx, path)
	if err != nil {
		return nil, server.NewTransportError("list "+collection, err)
	}
	body, err := server.CheckResponse("list "+collection, response)
	if err != nil {
		return nil, err
	}
	return resource.Results(body), nil
}

// lookupFailed keeps auth failures distinct and names the reference for
// every other failure, preserving the remote status and body.
func lookupFailed(collection string, name string, err error) error {
	if faults.IsCategory(err, faults.AuthError) {
		return err
	}
	var typedErr *faults.TypedError
	wrapped := faults.NewTypedError(
		faults.ReferenceResolutionError,
		fmt.Sprintf("lookup of %q in %s failed", name, collection),
		err,
	)
	if errors.As(err, &typedErr) {
		wrapped.StatusCode = typedErr.StatusCode
		wrapped.Body = typedErr.Body
	}
	return wrapped
}

func collectionsOf(targets []descriptor.Target) string {
	collections := make([]string, len(targets))
	for idx, target := range targets {
		collections[idx] = target.Collection
	}
	return strings.Join(collections, " or ")
}
