package orchestrator

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/crmarques/ddiconf/allocator"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/filter"
	"github.com/crmarques/ddiconf/resolver"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/server"
)

// reconciliation holds the state of one call. It is never reused.
type reconciliation struct {
	client    server.Client
	desc      descriptor.Descriptor
	params    resource.Params
	ambiguity descriptor.AmbiguityPolicy
	resolver  *resolver.Resolver
	allocator *allocator.Allocator
	logger    logr.Logger

	keys keySet
	// scope holds the lookup terms of the resolved key references.
	scope   []filter.Term
	keyRefs map[string]string
}

func (r *reconciliation) prepare(ctx context.Context, mode keyMode) error {
	keys, err := parseKeys(r.desc, r.params, mode)
	if err != nil {
		return err
	}
	r.keys = keys
	return r.resolveKeyReferences(ctx, mode == keysForList)
}

func (r *reconciliation) resolveKeyReferences(ctx context.Context, optional bool) error {
	for _, reference := range r.desc.KeyReferences() {
		name, present := r.params.String(reference.Param)
		if !present || name == "" {
			if reference.Required && !optional {
				return faults.NewTypedError(
					faults.ValidationError,
					fmt.Sprintf("missing mandatory parameter %q", reference.Param),
					nil,
				)
			}
			continue
		}

		id, err := r.resolver.Require(ctx, reference.Param, reference.Targets, name)
		if err != nil {
			return err
		}
		r.keyRefs[reference.Param] = id
		r.scope = append(r.scope, filter.Eq(reference.Field, id))
	}
	return nil
}

func (r *reconciliation) lookupExpression(desired bool) filter.Expression {
	terms := r.keys.lookupTerms()
	if desired {
		terms = r.keys.desiredTerms()
	}
	return filter.New(terms...).And(r.scope...).And(constantTerms(r.desc.Constants)...)
}

// lookup returns the object matching expression. More than one match is
// resolved by the ambiguity policy.
func (r *reconciliation) lookup(ctx context.Context, expression filter.Expression) (resource.Object, bool, error) {
	r.logger.Info("looking up resource", "collection", r.desc.Collection, "filter", expression.String())
	results, err := r.resolver.Find(ctx, r.desc.Collection, filter.Query{Filter: expression})
	if err != nil {
		return nil, false, err
	}

	switch {
	case len(results) == 0:
		return nil, false, nil
	case len(results) > 1 && r.ambiguity == descriptor.ErrorOnAmbiguous:
		return nil, false, faults.NewTypedError(
			faults.ConflictError,
			fmt.Sprintf("%s %s matched %d objects", r.desc.Type, r.keys, len(results)),
			resolver.ErrAmbiguousMatch,
		)
	default:
		return results[0], true, nil
	}
}

func (r *reconciliation) create(ctx context.Context) (Result, error) {
	if err := r.prepare(ctx, keysForCreate); err != nil {
		return Result{}, err
	}

	if r.keys.allocation != nil {
		if !r.desc.Allocation.Single() {
			return r.allocatePrefixes(ctx)
		}
		if err := r.allocateAddress(ctx); err != nil {
			return Result{}, err
		}
	}

	if r.keys.renames() {
		r.logger.Info("rename requested, updating instead of creating", "key", r.keys.String())
		return r.updateExisting(ctx)
	}

	observed, found, err := r.lookup(ctx, r.lookupExpression(false))
	if err != nil {
		return Result{}, err
	}
	if found {
		r.logger.Info("resource exists, updating", "id", resource.ID(observed))
		return r.applyUpdate(ctx, observed)
	}

	payload, err := r.buildPayload(ctx, payloadForCreate, r.keys.values)
	if err != nil {
		return Result{}, err
	}

	r.logger.Info("creating resource", "collection", r.desc.Collection, "key", r.keys.String())
	label := "create " + r.desc.Type
	response, err := r.client.Create(ctx, server.ObjectPath(r.desc.Collection), payload)
	if err != nil {
		return Result{}, server.NewTransportError(label, err)
	}
	body, err := server.CheckResponse(label, response)
	if err != nil {
		return Result{}, err
	}
	return Applied(true, ActionCreated, resource.Result(body)), nil
}

func (r *reconciliation) update(ctx context.Context) (Result, error) {
	if err := r.prepare(ctx, keysForMutation); err != nil {
		return Result{}, err
	}
	return r.updateExisting(ctx)
}

// updateExisting finds the object by its current key. A rename whose old key
// is gone but whose new key exists has already been applied.
func (r *reconciliation) updateExisting(ctx context.Context) (Result, error) {
	observed, found, err := r.lookup(ctx, r.lookupExpression(false))
	if err != nil {
		return Result{}, err
	}
	if !found && r.keys.renames() {
		observed, found, err = r.lookup(ctx, r.lookupExpression(true))
		if err != nil {
			return Result{}, err
		}
	}
	if !found {
		return Result{}, faults.NewTypedError(
			faults.NotFoundError,
			fmt.Sprintf("%s %s not found", r.desc.Type, r.keys),
			nil,
		)
	}
	return r.applyUpdate(ctx, observed)
}

// applyUpdate sends the assembled partial payload unless observed already
// holds every field of it.
func (r *reconciliation) applyUpdate(ctx context.Context, observed resource.Object) (Result, error) {
	id := resource.ID(observed)
	if id == "" {
		return Result{}, faults.NewTypedError(faults.InternalError, fmt.Sprintf("%s lookup returned an object without id", r.desc.Type), nil)
	}

	payload, err := r.buildPayload(ctx, payloadForUpdate, r.keys.values)
	if err != nil {
		return Result{}, err
	}
	if resource.Contains(observed, payload) {
		r.logger.Info("resource is up to date", "id", id)
		return Applied(false, ActionUnchanged, observed), nil
	}

	updated, err := r.patch(ctx, id, payload)
	if err != nil {
		return Result{}, err
	}
	return Applied(true, ActionUpdated, updated), nil
}

func (r *reconciliation) patch(ctx context.Context, id string, payload map[string]any) (resource.Value, error) {
	r.logger.Info("updating resource", "id", id)
	label := "update " + r.desc.Type
	response, err := r.client.Update(ctx, server.ObjectPath(id), payload)
	if err != nil {
		return nil, server.NewTransportError(label, err)
	}
	body, err := server.CheckResponse(label, response)
	if err != nil {
		return nil, err
	}
	return resource.Result(body), nil
}

func (r *reconciliation) delete(ctx context.Context) (Result, error) {
	if err := r.prepare(ctx, keysForMutation); err != nil {
		return Result{}, err
	}
	if r.keys.renames() {
		return Result{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("deleting %s requires a literal key, not a rename directive", r.desc.Type),
			nil,
		)
	}

	expression := r.lookupExpression(false)
	r.logger.Info("looking up resource", "collection", r.desc.Collection, "filter", expression.String())
	results, err := r.resolver.Find(ctx, r.desc.Collection, filter.Query{Filter: expression})
	if err != nil {
		return Result{}, err
	}
	switch len(results) {
	case 0:
		return Result{}, faults.NewTypedError(
			faults.NotFoundError,
			fmt.Sprintf("%s %s not found", r.desc.Type, r.keys),
			nil,
		)
	case 1:
	default:
		return Result{}, faults.NewTypedError(
			faults.ConflictError,
			fmt.Sprintf("%s %s matched %d objects, refusing to delete", r.desc.Type, r.keys, len(results)),
			resolver.ErrAmbiguousMatch,
		)
	}

	observed := results[0]
	id := resource.ID(observed)
	if id == "" {
		return Result{}, faults.NewTypedError(faults.InternalError, fmt.Sprintf("%s lookup returned an object without id", r.desc.Type), nil)
	}

	r.logger.Info("deleting resource", "id", id)
	label := "delete " + r.desc.Type
	response, err := r.client.Delete(ctx, server.ObjectPath(id))
	if err != nil {
		return Result{}, server.NewTransportError(label, err)
	}
	if _, err := server.CheckResponse(label, response); err != nil {
		return Result{}, err
	}
	return Applied(true, ActionDeleted, observed), nil
}
