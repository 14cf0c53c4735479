package orchestrator

import (
	"context"
	"fmt"

	"github.com/crmarques/ddiconf/allocator"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/filter"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/resource/identity"
)

func (r *reconciliation) allocationRequest(ctx context.Context) (allocator.Request, error) {
	alloc := r.desc.Allocation
	request := *r.keys.allocation
	if !alloc.Single() {
		request.Name, _ = r.params.String("name")
		request.Comment, _ = r.params.String("comment")
	}

	if alloc.ScopeParam == "" {
		return request, nil
	}
	id, ok := r.keyRefs[alloc.ScopeParam]
	if !ok {
		reference, _ := r.desc.Reference(alloc.ScopeParam)
		name, present := r.params.String(alloc.ScopeParam)
		if !present || name == "" {
			return allocator.Request{}, faults.NewTypedError(
				faults.ValidationError,
				fmt.Sprintf("%s requires parameter %q", alloc.Marker(), alloc.ScopeParam),
				nil,
			)
		}
		resolved, err := r.resolver.Require(ctx, reference.Param, reference.Targets, name)
		if err != nil {
			return allocator.Request{}, err
		}
		id = resolved
	}
	request.Scope = []filter.Term{filter.Eq(alloc.ScopeField, id)}
	return request, nil
}

// allocateAddress reserves the next free address of the parent subnet and
// turns the allocation key into that literal address.
func (r *reconciliation) allocateAddress(ctx context.Context) error {
	request, err := r.allocationRequest(ctx)
	if err != nil {
		return err
	}
	objects, err := r.allocator.Allocate(ctx, *r.desc.Allocation, request)
	if err != nil {
		return err
	}

	address, ok := resource.LookupScalarField(objects[0], "address")
	if !ok || address == "" {
		return faults.NewTypedError(
			faults.RemoteError,
			fmt.Sprintf("next available address under %s carried no address", request.Parent),
			nil,
		)
	}

	field, _ := r.desc.Key(r.desc.Allocation.KeyParam)
	value, err := parseKey(field, address)
	if err != nil {
		return err
	}
	r.logger.Info("allocated address", "address", address, "subnet", request.Parent.String())
	r.keys.values = append(r.keys.values, value)
	r.keys.allocation = nil
	return nil
}

// allocatePrefixes creates blocks or subnets through the next-available
// endpoint, then patches each one with the fields the endpoint cannot take.
func (r *reconciliation) allocatePrefixes(ctx context.Context) (Result, error) {
	request, err := r.allocationRequest(ctx)
	if err != nil {
		return Result{}, err
	}
	objects, err := r.allocator.Allocate(ctx, *r.desc.Allocation, request)
	if err != nil {
		return Result{}, err
	}

	allocated := make([]any, 0, len(objects))
	for _, object := range objects {
		key, err := allocatedKey(r.desc, object)
		if err != nil {
			return Result{}, err
		}
		extras, err := r.buildPayload(ctx, payloadForUpdate, []keyValue{key})
		if err != nil {
			return Result{}, err
		}
		if resource.Contains(object, extras) {
			allocated = append(allocated, object)
			continue
		}

		updated, err := r.patch(ctx, resource.ID(object), extras)
		if err != nil {
			return Result{}, err
		}
		allocated = append(allocated, updated)
	}
	return Applied(true, ActionAllocated, allocated), nil
}

// allocatedKey reads the prefix of an object returned by a next-available
// endpoint.
func allocatedKey(desc descriptor.Descriptor, object resource.Object) (keyValue, error) {
	field, _ := desc.Key(desc.Allocation.KeyParam)
	address, _ := resource.LookupScalarField(object, field.Field)
	cidr, _ := resource.LookupScalarField(object, "cidr")
	prefix, err := allocator.ParsePrefix(address + "/" + cidr)
	if err != nil {
		return keyValue{}, faults.NewTypedError(
			faults.RemoteError,
			fmt.Sprintf("allocated object %q has no usable prefix", resource.ID(object)),
			err,
		)
	}
	return keyValue{
		field:         field,
		intent:        identity.LiteralName(prefix.String()),
		lookupPrefix:  prefix,
		desiredPrefix: prefix,
	}, nil
}
