// Package allocator requests next-available blocks, subnets and addresses
// from the platform.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/crmarques/ddiconf/debugctx"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/filter"
	"github.com/crmarques/ddiconf/monitoring"
	"github.com/crmarques/ddiconf/resolver"
	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/server"
)

var (
	ErrParentNotFound      = errors.New("parent not found")
	ErrInvalidCidrOrCount  = errors.New("invalid cidr or count")
	ErrAllocationExhausted = errors.New("allocation exhausted")
)

type Allocator struct {
	client   server.Client
	resolver *resolver.Resolver
}

// New builds an allocator that resolves parents through r, sharing its
// per-call memo.
func New(client server.Client, r *resolver.Resolver) *Allocator {
	return &Allocator{client: client, resolver: r}
}

// Allocate resolves the parent and calls its next-available endpoint. Block
// and subnet allocations return the created objects; next-available-ip
// returns one object carrying the free `address`.
func (a *Allocator) Allocate(ctx context.Context, alloc descriptor.Allocation, request Request) (results []resource.Object, err error) {
	ctx, span := monitoring.StartChildSpan(ctx, "allocate."+string(alloc.Kind))
	defer func() {
		monitoring.RecordSpanError(span, err)
		monitoring.RecordAllocation(string(alloc.Kind), err)
		span.End()
	}()

	if !alloc.Single() && (request.CIDR < 1 || request.CIDR > 32 || request.Count < 1) {
		return nil, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("invalid allocation cidr=%d count=%d", request.CIDR, request.Count),
			ErrInvalidCidrOrCount,
		)
	}
	if !alloc.Single() && request.CIDR < request.Parent.Bits() {
		return nil, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("cidr /%d is wider than parent %s", request.CIDR, request.Parent),
			ErrInvalidCidrOrCount,
		)
	}

	parentID, err := a.parentID(ctx, alloc, request)
	if err != nil {
		return nil, err
	}

	path := server.ObjectPath(parentID) + "/" + alloc.Endpoint
	logger := debugctx.Logger(ctx).WithName("allocator")
	logger.Info("requesting allocation", "kind", alloc.Kind, "parent", parentID, "cidr", request.CIDR, "count", request.Count)

	var response server.Response
	if alloc.Single() {
		response, err = a.client.Get(ctx, path)
	} else {
		response, err = a.client.Create(ctx, path+allocationQuery(request), nil)
	}
	if err != nil {
		return nil, server.NewTransportError(string(alloc.Kind), err)
	}

	body, err := server.CheckResponse(string(alloc.Kind), response)
	if err != nil {
		if exhaustedStatus(response.StatusCode) {
			return nil, faults.NewRemoteTypedError(
				faults.RemoteError,
				fmt.Sprintf("%s under %s rejected with status %d", alloc.Kind, request.Parent, response.StatusCode),
				response.StatusCode,
				response.Body,
			).WithCause(ErrAllocationExhausted)
		}
		return nil, err
	}

	results = resource.Results(body)
	if len(results) == 0 {
		return nil, faults.NewRemoteTypedError(
			faults.RemoteError,
			fmt.Sprintf("no free space left under %s", request.Parent),
			response.StatusCode,
			body,
		).WithCause(ErrAllocationExhausted)
	}
	return results, nil
}

// exhaustedStatus reports the statuses next-available endpoints answer with
// when the parent has no room for the request.
func exhaustedStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusInsufficientStorage:
		return true
	}
	return false
}

func (a *Allocator) parentID(ctx context.Context, alloc descriptor.Allocation, request Request) (string, error) {
	scope := append([]filter.Term{filter.Eq("cidr", request.Parent.Bits())}, request.Scope...)
	id, found, err := a.resolver.Resolve(
		ctx,
		[]descriptor.Target{{Collection: alloc.ParentCollection, LookupField: "address"}},
		request.Parent.Addr().String(),
		scope...,
	)
	if err != nil {
		return "", err
	}
	if !found {
		return "", faults.NewTypedError(
			faults.ReferenceResolutionError,
			fmt.Sprintf("%s %s not found in %s", alloc.ParentParam, request.Parent, alloc.ParentCollection),
			ErrParentNotFound,
		)
	}
	return id, nil
}

// allocationQuery renders count and cidr, adding name and comment only when
// they are set.
func allocationQuery(request Request) string {
	parts := []string{
		"count=" + strconv.Itoa(request.Count),
		"cidr=" + strconv.Itoa(request.CIDR),
	}
	if name := strings.TrimSpace(request.Name); name != "" {
		parts = append(parts, "name="+url.QueryEscape(name))
	}
	if comment := strings.TrimSpace(request.Comment); comment != "" {
		parts = append(parts, "comment="+url.QueryEscape(comment))
	}
	return "?" + strings.Join(parts, "&")
}
