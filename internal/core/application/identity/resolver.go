// Package identity is the single place where public short codes and internal
// ids are told apart. Every other component works with resolved internal ids.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultCacheSize = 10_000

	// maxCodeAttempts bounds regeneration after collisions; a run of collisions
	// this long means the code space is close to exhausted.
	maxCodeAttempts = 20
)

// ErrShortCodeSpaceExhausted is returned when no unused short code was drawn
// within the attempt budget.
var ErrShortCodeSpaceExhausted = errors.New("could not draw an unused short code")

// Resolver maps identifiers supplied by customers and providers to internal ids.
// Short code resolutions are cached since a code never moves to another record.
type Resolver struct {
	lookup   ports.IdentifierLookup
	cache    *lru.Cache[string, ports.Locator]
	generate func() kernel.ShortCode
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithGenerator replaces the random short code source.
func WithGenerator(generate func() kernel.ShortCode) Option {
	return func(r *Resolver) {
		r.generate = generate
	}
}

func NewResolver(lookup ports.IdentifierLookup, cacheSize int, opts ...Option) (*Resolver, error) {
	if lookup == nil {
		return nil, errs.NewValueIsRequiredError("lookup")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, ports.Locator](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver cache: %w", err)
	}

	r := &Resolver{
		lookup:   lookup,
		cache:    cache,
		generate: kernel.NewRandomShortCode,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve tries, in order, a parcel short code, an order short code and an
// internal id, returning the first match. Input that is neither a short code
// nor an id is not found without touching storage.
func (r *Resolver) Resolve(ctx context.Context, input string) (ports.Locator, error) {
	trimmed := strings.TrimSpace(input)

	if kernel.LooksLikeShortCode(trimmed) {
		code, err := kernel.ParseShortCode(trimmed)
		if err != nil {
			return ports.Locator{}, err
		}
		return r.resolveShortCode(ctx, code)
	}

	if id, err := kernel.UUIDFromString(trimmed); err == nil {
		return r.lookup.FindByID(ctx, id)
	}

	return ports.Locator{}, errs.NewObjectNotFoundError("identifier", trimmed)
}

// ResolveOrder returns the id of the order the identifier belongs to.
func (r *Resolver) ResolveOrder(ctx context.Context, input string) (kernel.UUID, error) {
	loc, err := r.Resolve(ctx, input)
	if err != nil {
		return kernel.UUID{}, err
	}
	return loc.OrderID, nil
}

// ResolveParcel returns the parcel id, failing when the identifier names an order.
func (r *Resolver) ResolveParcel(ctx context.Context, input string) (kernel.UUID, error) {
	loc, err := r.Resolve(ctx, input)
	if err != nil {
		return kernel.UUID{}, err
	}
	if loc.ParcelID == nil {
		return kernel.UUID{}, errs.NewObjectNotFoundError("parcel", strings.TrimSpace(input))
	}
	return *loc.ParcelID, nil
}

// NewShortCode draws a code unused by any order or parcel.
func (r *Resolver) NewShortCode(ctx context.Context) (kernel.ShortCode, error) {
	codes, err := r.NewShortCodes(ctx, 1)
	if err != nil {
		return kernel.ShortCode{}, err
	}
	return codes[0], nil
}

// NewShortCodes draws n distinct unused codes. Uniqueness is also enforced by
// unique indexes, so a code taken between this check and the insert fails the
// insert instead of being shared.
func (r *Resolver) NewShortCodes(ctx context.Context, n int) ([]kernel.ShortCode, error) {
	if n <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("short code count", n, 1, nil)
	}

	codes := make([]kernel.ShortCode, 0, n)
	seen := make(map[string]struct{}, n)

	for len(codes) < n {
		code, err := r.drawUnused(ctx, seen)
		if err != nil {
			return nil, err
		}
		seen[code.String()] = struct{}{}
		codes = append(codes, code)
	}

	return codes, nil
}

func (r *Resolver) drawUnused(ctx context.Context, taken map[string]struct{}) (kernel.ShortCode, error) {
	for range maxCodeAttempts {
		code := r.generate()
		if _, dup := taken[code.String()]; dup {
			continue
		}

		exists, err := r.lookup.ShortCodeExists(ctx, code)
		if err != nil {
			return kernel.ShortCode{}, fmt.Errorf("failed to check short code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return kernel.ShortCode{}, ErrShortCodeSpaceExhausted
}

func (r *Resolver) resolveShortCode(ctx context.Context, code kernel.ShortCode) (ports.Locator, error) {
	if loc, ok := r.cache.Get(code.String()); ok {
		return loc, nil
	}

	loc, err := r.lookup.FindParcelByShortCode(ctx, code)
	if errors.Is(err, errs.ErrObjectNotFound) {
		loc, err = r.lookup.FindOrderByShortCode(ctx, code)
	}
	if err != nil {
		return ports.Locator{}, err
	}

	r.cache.Add(code.String(), loc)
	return loc, nil
}
