// Package orchestrator drives one create, update, delete or list
// reconciliation of a resource type against the platform.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/crmarques/ddiconf/allocator"
	"github.com/crmarques/ddiconf/debugctx"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/monitoring"
	"github.com/crmarques/ddiconf/resolver"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/server"
)

const (
	operationCreate = "create"
	operationUpdate = "update"
	operationDelete = "delete"
	operationList   = "list"
)

type Orchestrator struct {
	client    server.Client
	ambiguity descriptor.AmbiguityPolicy
}

type Option func(*Orchestrator)

// WithDefaultAmbiguity sets the policy used for descriptors that do not
// declare one.
func WithDefaultAmbiguity(policy descriptor.AmbiguityPolicy) Option {
	return func(o *Orchestrator) {
		o.ambiguity = policy
	}
}

func New(client server.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{client: client}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ReconcileCreate creates the resource, or updates it when its natural key
// already exists. A rename directive on the key redirects to update.
func (o *Orchestrator) ReconcileCreate(ctx context.Context, desc descriptor.Descriptor, params resource.Params) Result {
	return o.run(ctx, operationCreate, desc, params, func(ctx context.Context, r *reconciliation) (Result, error) {
		return r.create(ctx)
	})
}

// ReconcileUpdate applies the supplied fields to an existing resource.
func (o *Orchestrator) ReconcileUpdate(ctx context.Context, desc descriptor.Descriptor, params resource.Params) Result {
	return o.run(ctx, operationUpdate, desc, params, func(ctx context.Context, r *reconciliation) (Result, error) {
		return r.update(ctx)
	})
}

// ReconcileDelete removes the one resource matching the natural key.
func (o *Orchestrator) ReconcileDelete(ctx context.Context, desc descriptor.Descriptor, params resource.Params) Result {
	return o.run(ctx, operationDelete, desc, params, func(ctx context.Context, r *reconciliation) (Result, error) {
		return r.delete(ctx)
	})
}

// List returns the objects matching the supplied key parameters and options.
func (o *Orchestrator) List(ctx context.Context, desc descriptor.Descriptor, params resource.Params, options ListOptions) Result {
	return o.run(ctx, operationList, desc, params, func(ctx context.Context, r *reconciliation) (Result, error) {
		return r.list(ctx, options)
	})
}

func (o *Orchestrator) run(
	ctx context.Context,
	operation string,
	desc descriptor.Descriptor,
	params resource.Params,
	step func(context.Context, *reconciliation) (Result, error),
) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	ctx, span := monitoring.StartReconcileSpan(ctx, operation, desc.Type)
	defer span.End()

	logger := debugctx.Logger(ctx).WithName("orchestrator").WithValues("resource_type", desc.Type, "operation", operation)

	result, err := o.execute(ctx, operation, desc, params, logger, step)
	if err != nil {
		monitoring.RecordSpanError(span, err)
		logger.Info("reconciliation failed", "category", faults.CategoryOf(err), "error", err.Error())
		result = Failed(err, params)
	} else {
		logger.Info("reconciliation finished", "action", result.Action, "changed", result.Changed)
	}

	monitoring.RecordReconcile(desc.Type, operation, result.outcome(), time.Since(started))
	return result
}

func (o *Orchestrator) execute(
	ctx context.Context,
	operation string,
	desc descriptor.Descriptor,
	params resource.Params,
	logger logr.Logger,
	step func(context.Context, *reconciliation) (Result, error),
) (Result, error) {
	if o == nil || o.client == nil {
		return Result{}, faults.NewTypedError(faults.InternalError, "orchestrator has no platform client", nil)
	}
	if err := desc.Validate(); err != nil {
		return Result{}, err
	}
	if desc.ReadOnly && operation != operationList {
		return Result{}, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("%s is read-only and supports list only", desc.Type),
			nil,
		)
	}

	policy := desc.EffectiveAmbiguity(o.ambiguity)
	refs := resolver.New(o.client, resolver.WithAmbiguity(policy))
	r := &reconciliation{
		client:    o.client,
		desc:      desc,
		params:    params.Clone(),
		ambiguity: policy,
		resolver:  refs,
		allocator: allocator.New(o.client, refs),
		logger:    logger,
		keyRefs:   map[string]string{},
	}
	return step(ctx, r)
}
