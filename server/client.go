package server

import (
	"context"
	"net/http"

	"github.com/crmarques/ddiconf/resource"
)

// Client is the transport capability set the reconciliation core consumes.
// Paths are relative to the API prefix and may carry an encoded query. A
// non-nil error means the call never produced a response; remote failures are
// reported through Response.StatusCode and classified by CheckResponse.
type Client interface {
	Get(ctx context.Context, path string) (Response, error)
	Create(ctx context.Context, path string, body resource.Value) (Response, error)
	Update(ctx context.Context, path string, body resource.Value) (Response, error)
	Delete(ctx context.Context, path string) (Response, error)
}

type Response struct {
	StatusCode int
	Body       resource.Value
	Header     http.Header
}

func (r Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ObjectPath turns a platform id such as `ipam/subnet/abc` into the path its
// mutations are addressed to.
func ObjectPath(id string) string {
	for len(id) > 0 && id[0] == '/' {
		id = id[1:]
	}
	return "/" + id
}
