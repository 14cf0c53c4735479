// Package servertest provides an in-memory DDI platform for tests. It
// implements server.Client directly and can be served over HTTP.
package servertest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/crmarques/ddiconf/resource"
	"github.com/crmarques/ddiconf/server"
)

const APIPrefix = "/api/ddi/v1"

type Call struct {
	Method string
	Path   string
	Body   resource.Value
	Header http.Header
}

type failure struct {
	method     string
	pathPrefix string
	statusCode int
	body       any
}

type Platform struct {
	// Token, when set, is required as `Authorization: Token <Token>` or
	// `Authorization: Bearer <Token>` on HTTP requests.
	Token string

	mu       sync.Mutex
	objects  map[string]map[string]any
	seq      int
	calls    []Call
	failures []failure
}

var _ server.Client = (*Platform)(nil)

func New() *Platform {
	return &Platform{objects: map[string]map[string]any{}}
}

// Seed stores an object in collection and returns its generated id.
func (p *Platform) Seed(collection string, object map[string]any) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.insertLocked(strings.Trim(collection, "/"), object)
}

func (p *Platform) Object(id string) (map[string]any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	object, ok := p.objects[strings.Trim(id, "/")]
	if !ok {
		return nil, false
	}
	return cloneMap(object), true
}

// Objects returns the objects of a collection ordered by id.
func (p *Platform) Objects(collection string) []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.collectionLocked(strings.Trim(collection, "/"))
}

func (p *Platform) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallCount counts recorded calls of method whose path starts with pathPrefix.
func (p *Platform) CallCount(method string, pathPrefix string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, call := range p.calls {
		if call.Method == method && strings.HasPrefix(call.Path, pathPrefix) {
			count++
		}
	}
	return count
}

func (p *Platform) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// Fail makes every later call of method under pathPrefix answer with
// statusCode and body.
func (p *Platform) Fail(method string, pathPrefix string, statusCode int, body any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, failure{method: method, pathPrefix: pathPrefix, statusCode: statusCode, body: body})
}

func (p *Platform) Get(_ context.Context, path string) (server.Response, error) {
	return p.handle(http.MethodGet, path, nil, nil), nil
}

func (p *Platform) Create(_ context.Context, path string, body resource.Value) (server.Response, error) {
	return p.handle(http.MethodPost, path, body, nil), nil
}

func (p *Platform) Update(_ context.Context, path string, body resource.Value) (server.Response, error) {
	return p.handle(http.MethodPatch, path, body, nil), nil
}

func (p *Platform) Delete(_ context.Context, path string) (server.Response, error) {
	return p.handle(http.MethodDelete, path, nil, nil), nil
}

func (p *Platform) handle(method string, rawPath string, body resource.Value, header http.Header) server.Response {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{Method: method, Path: rawPath, Body: body, Header: header})

	for _, injected := range p.failures {
		if injected.method == method && strings.HasPrefix(rawPath, injected.pathPrefix) {
			return server.Response{StatusCode: injected.statusCode, Body: injected.body}
		}
	}

	path, rawQuery, _ := strings.Cut(rawPath, "?")
	path = strings.Trim(path, "/")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return errorResponse(http.StatusBadRequest, "invalid query: "+err.Error())
	}

	switch method {
	case http.MethodGet:
		if subnetID, ok := strings.CutSuffix(path, "/nextavailableip"); ok {
			return p.nextAvailableIPLocked(subnetID)
		}
		if object, ok := p.objects[path]; ok {
			return server.Response{StatusCode: http.StatusOK, Body: map[string]any{"result": cloneMap(object)}}
		}
		return p.listLocked(path, query)
	case http.MethodPost:
		if parentID, ok := strings.CutSuffix(path, "/nextavailablesubnet"); ok {
			return p.nextAvailablePrefixLocked(parentID, "ipam/subnet", query)
		}
		if parentID, ok := strings.CutSuffix(path, "/nextavailableaddressblock"); ok {
			return p.nextAvailablePrefixLocked(parentID, "ipam/address_block", query)
		}
		payload, ok := body.(map[string]any)
		if !ok {
			return errorResponse(http.StatusBadRequest, "body must be an object")
		}
		id := p.insertLocked(path, payload)
		return server.Response{StatusCode: http.StatusCreated, Body: map[string]any{"result": cloneMap(p.objects[id])}}
	case http.MethodPatch:
		object, ok := p.objects[path]
		if !ok {
			return errorResponse(http.StatusNotFound, "object not found")
		}
		payload, ok := body.(map[string]any)
		if !ok {
			return errorResponse(http.StatusBadRequest, "body must be an object")
		}
		normalized, err := resource.Normalize(payload)
		if err != nil {
			return errorResponse(http.StatusBadRequest, err.Error())
		}
		for key, value := range normalized.(map[string]any) {
			object[key] = value
		}
		return server.Response{StatusCode: http.StatusOK, Body: map[string]any{"result": cloneMap(object)}}
	case http.MethodDelete:
		if _, ok := p.objects[path]; !ok {
			return errorResponse(http.StatusNotFound, "object not found")
		}
		delete(p.objects, path)
		return server.Response{StatusCode: http.StatusOK, Body: map[string]any{}}
	default:
		return errorResponse(http.StatusMethodNotAllowed, "unsupported method")
	}
}

func (p *Platform) insertLocked(collection string, object map[string]any) string {
	p.seq++
	id := fmt.Sprintf("%s/%d", collection, p.seq)

	normalized, err := resource.Normalize(object)
	stored, ok := normalized.(map[string]any)
	if err != nil || !ok {
		stored = cloneMap(object)
	}
	stored["id"] = id
	p.objects[id] = stored
	return id
}

func (p *Platform) collectionLocked(collection string) []map[string]any {
	ids := make([]string, 0)
	for id := range p.objects {
		if objectCollection(id) == collection {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return sequenceOf(ids[i]) < sequenceOf(ids[j])
	})

	objects := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		objects = append(objects, cloneMap(p.objects[id]))
	}
	return objects
}

func (p *Platform) listLocked(collection string, query url.Values) server.Response {
	filterTerms, err := parseExpression(query.Get("_filter"))
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error())
	}
	tagTerms, err := parseExpression(query.Get("_tfilter"))
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error())
	}
	fields := splitFields(query.Get("_fields"))

	results := make([]any, 0)
	for _, object := range p.collectionLocked(collection) {
		if !matches(object, filterTerms) {
			continue
		}
		tags, _ := object["tags"].(map[string]any)
		if len(tagTerms) > 0 && !matches(tags, tagTerms) {
			continue
		}
		results = append(results, project(object, fields))
	}
	return server.Response{StatusCode: http.StatusOK, Body: map[string]any{"results": results}}
}

func (p *Platform) nextAvailableIPLocked(subnetID string) server.Response {
	subnet, ok := p.objects[subnetID]
	if !ok {
		return errorResponse(http.StatusNotFound, "subnet not found")
	}
	prefix, err := objectPrefix(subnet)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error())
	}

	used := map[string]bool{}
	for _, object := range p.objects {
		collection := objectCollection(resource.ID(object))
		if collection != "ipam/address" && collection != "dhcp/fixed_address" {
			continue
		}
		if address, ok := object["address"].(string); ok {
			used[address] = true
		}
	}

	candidate := prefix.Addr().Next()
	for prefix.Contains(candidate) && prefix.Contains(candidate.Next()) {
		if !used[candidate.String()] {
			return server.Response{StatusCode: http.StatusOK, Body: map[string]any{"results": []any{
				map[string]any{"address": candidate.String()},
			}}}
		}
		candidate = candidate.Next()
	}
	return server.Response{StatusCode: http.StatusOK, Body: map[string]any{"results": []any{}}}
}

func (p *Platform) nextAvailablePrefixLocked(parentID string, childCollection string, query url.Values) server.Response {
	parent, ok := p.objects[parentID]
	if !ok {
		return errorResponse(http.StatusNotFound, "parent not found")
	}
	parentPrefix, err := objectPrefix(parent)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error())
	}
	cidr, err := strconv.Atoi(query.Get("cidr"))
	if err != nil || cidr < parentPrefix.Bits() || cidr > 32 {
		return errorResponse(http.StatusBadRequest, "invalid cidr")
	}
	count := 1
	if rawCount := query.Get("count"); rawCount != "" {
		count, err = strconv.Atoi(rawCount)
		if err != nil || count < 1 {
			return errorResponse(http.StatusBadRequest, "invalid count")
		}
	}

	taken := make([]netip.Prefix, 0)
	for _, object := range p.collectionLocked(childCollection) {
		if childPrefix, err := objectPrefix(object); err == nil {
			taken = append(taken, childPrefix)
		}
	}

	allocated := make([]any, 0, count)
	candidate := netip.PrefixFrom(parentPrefix.Addr(), cidr)
	for len(allocated) < count && parentPrefix.Contains(candidate.Addr()) {
		if !overlapsAny(candidate, taken) {
			child := map[string]any{
				"address": candidate.Addr().String(),
				"cidr":    int64(cidr),
				"space":   parent["space"],
				"parent":  parentID,
			}
			if name := query.Get("name"); name != "" {
				child["name"] = name
			}
			if comment := query.Get("comment"); comment != "" {
				child["comment"] = comment
			}
			id := p.insertLocked(childCollection, child)
			allocated = append(allocated, cloneMap(p.objects[id]))
			taken = append(taken, candidate)
		}
		next, ok := nextPrefix(candidate)
		if !ok {
			break
		}
		candidate = next
	}
	if len(allocated) < count {
		return server.Response{StatusCode: http.StatusOK, Body: map[string]any{"results": []any{}}}
	}
	return server.Response{StatusCode: http.StatusCreated, Body: map[string]any{"results": allocated}}
}

// ServeHTTP exposes the platform under APIPrefix.
func (p *Platform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.Token != "" {
		authorization := r.Header.Get("Authorization")
		if authorization != "Token "+p.Token && authorization != "Bearer "+p.Token {
			p.mu.Lock()
			p.calls = append(p.calls, Call{Method: r.Method, Path: r.URL.RequestURI(), Header: r.Header.Clone()})
			p.mu.Unlock()
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
	}

	path, ok := strings.CutPrefix(r.URL.Path, APIPrefix)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown api prefix"})
		return
	}
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	var body resource.Value
	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPatch) {
		decoder := json.NewDecoder(r.Body)
		decoder.UseNumber()
		if err := decoder.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
			return
		}
	}

	response := p.handle(r.Method, path, body, r.Header.Clone())
	writeJSON(w, response.StatusCode, response.Body)
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func errorResponse(statusCode int, message string) server.Response {
	return server.Response{StatusCode: statusCode, Body: map[string]any{"error": []any{map[string]any{"message": message}}}}
}
