package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/stafflink/portal_backend/models"
)

// Source tags where a read-through result came from.
type Source string

const (
	SourceFresh  Source = "fresh"
	SourceCached Source = "cached"
	SourceStale  Source = "stale"
)

// FetchThrough is the read-through contract every cache consumer follows:
// serve a cache hit immediately; on miss do the live fetch and store the
// result; when the fetch fails, fall back to the most recent cached copy
// (even an expired one) tagged stale, and only error out when no copy
// exists at all.
func FetchThrough[T any](ctx context.Context, store *Store, ns Namespace, key string, fetch func(ctx context.Context) (T, error)) (T, Source, error) {
	var zero T

	if raw, ok := store.Get(ctx, ns, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, SourceCached, nil
		}
		log.Printf("cache: decode of %s/%s failed, refetching", ns.Name, key)
	}

	v, err := fetch(ctx)
	if err == nil {
		store.Set(ctx, ns, key, v)
		return v, SourceFresh, nil
	}

	if raw, ok := store.GetStale(ctx, ns, key); ok {
		var stale T
		if decodeErr := json.Unmarshal(raw, &stale); decodeErr == nil {
			log.Printf("cache: serving stale %s/%s after fetch failure: %v", ns.Name, key, err)
			return stale, SourceStale, nil
		}
	}

	return zero, SourceFresh, fmt.Errorf("%w: %v", models.ErrUpstream, err)
}
