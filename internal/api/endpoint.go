package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qamarabbas408/booknstay/internal/events"
	"github.com/qamarabbas408/booknstay/pkg/client"
)

// QueryDef declares a cached read.
type QueryDef[A, R any] struct {
	Name     string
	Request  func(A) client.Request
	Provides func(A) []TagRef
}

// MutationDef declares a write and the tags it invalidates once it succeeds.
type MutationDef[A, R any] struct {
	Name        string
	Request     func(A) client.Request
	Invalidates func(A, R) []TagRef
}

// DecodeError reports a response the server sent that does not match the declared result.
// Status is the HTTP status of a mutation response, 0 for cached reads.
type DecodeError struct {
	Operation string
	Status    int
	Err       error
}

func (e *DecodeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("decode %s response (HTTP %d): %v", e.Operation, e.Status, e.Err)
	}
	return fmt.Sprintf("decode %s response: %v", e.Operation, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CacheKey is the identity of a read: operation name plus its serialized arguments.
func CacheKey[A any](name string, args A) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("api.CacheKey %s: %w", name, err)
	}
	return name + "(" + string(data) + ")", nil
}

// Query returns the cached result of def for args, fetching it when missing or stale.
// Errors are the transport's *client.APIError, unchanged.
func Query[A, R any](ctx context.Context, a *API, def QueryDef[A, R], args A) (R, error) {
	var zero R
	key, err := CacheKey(def.Name, args)
	if err != nil {
		return zero, err
	}
	data, err := a.cache.read(ctx, key, def.Name, provides(def, args), a.fetcher(def.Request(args)))
	if err != nil {
		return zero, err
	}
	return decode[R](def.Name, data)
}

// Subscribe keeps the entry of def+args alive and calls fn with every later result of it,
// including refetches triggered by invalidation. The returned function ends the subscription.
func Subscribe[A, R any](a *API, def QueryDef[A, R], args A, fn func(R, error)) (func(), error) {
	key, err := CacheKey(def.Name, args)
	if err != nil {
		return nil, err
	}
	unsubscribe := a.cache.subscribe(key, def.Name, provides(def, args), a.fetcher(def.Request(args)), func(res result) {
		if res.err != nil {
			var zero R
			fn(zero, res.err)
			return
		}
		fn(decode[R](def.Name, res.data))
	})
	return unsubscribe, nil
}

// Mutate performs def and, only after the server accepted it, invalidates the declared tags
// and announces the result. Nothing is written to the cache optimistically. An accepted
// mutation whose response does not decode still invalidates, then returns a *DecodeError.
func Mutate[A, R any](ctx context.Context, a *API, def MutationDef[A, R], args A) (R, error) {
	var zero R
	resp, err := a.client.Do(ctx, def.Request(args))
	if err != nil {
		return zero, err
	}
	out, err := decode[R](def.Name, resp.Data)

	if def.Invalidates != nil {
		if refs := def.Invalidates(args, out); len(refs) > 0 {
			n := a.cache.invalidate(refs)
			a.log.WithField("operation", def.Name).WithField("entries", n).Debug("api: tags invalidated")
		}
	}
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Status = resp.Status
		}
		a.log.WithError(err).WithField("operation", def.Name).Warn("api: undecodable response")
		return zero, err
	}
	events.PublishFulfilled(a.bus, def.Name, out)
	return out, nil
}

func (a *API) fetcher(req client.Request) fetchFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		resp, err := a.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}
}

func provides[A, R any](def QueryDef[A, R], args A) []TagRef {
	if def.Provides == nil {
		return nil
	}
	return def.Provides(args)
}

func decode[R any](name string, data json.RawMessage) (R, error) {
	var out R
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero R
		return zero, &DecodeError{Operation: name, Err: err}
	}
	return out, nil
}
