package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/fjod/go_cart/order-service/internal/cache"
	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/fjod/go_cart/order-service/pkg/circuitbreaker"
	"github.com/fjod/go_cart/order-service/pkg/logger"
	"golang.org/x/sync/singleflight"
)

type ProductClient struct {
	baseURL    string
	httpClient *http.Client
	opts       Options
	breaker    *circuitbreaker.Breaker[domain.ProductRecord]
	cache      cache.ProductCache // optional
	sfg        singleflight.Group // collapses concurrent lookups of one product
	log        *logger.Logger
}

func NewProductClient(baseURL string, productCache cache.ProductCache, opts Options) *ProductClient {
	opts = opts.withDefaults()
	return &ProductClient{
		baseURL:    baseURL,
		httpClient: opts.HTTPClient,
		opts:       opts,
		breaker: circuitbreaker.New[domain.ProductRecord](opts.breakerSettings("product-service", func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrProductNotFound)
		})),
		cache: productCache,
		log:   opts.Logger,
	}
}

// GetProduct returns the catalog record for productID, domain.ErrProductNotFound
// on 404 and a wrapped domain.ErrDownstreamUnavailable for every other failure.
// The record is not inspected beyond being a JSON object.
//
// Concurrent callers for one product share a single lookup. The lookup runs
// detached from every caller's context, bounded by the per-call timeout, and
// each caller waits only as long as its own context allows.
func (c *ProductClient) GetProduct(ctx context.Context, productID string) (domain.ProductRecord, error) {
	lookupCtx := context.WithoutCancel(ctx)
	ch := c.sfg.DoChan(productID, func() (interface{}, error) {
		return c.lookup(lookupCtx, productID)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get product %q: %w", productID, ctx.Err())
	case res = <-ch:
	}

	if res.Err != nil {
		if errors.Is(res.Err, domain.ErrProductNotFound) {
			return nil, res.Err
		}
		c.log.Error(ctx, "error verifying product", "product_id", productID, "error", res.Err)
		return nil, fmt.Errorf("get product %q: %w: %w", productID, domain.ErrDownstreamUnavailable, res.Err)
	}

	// callers sharing a singleflight result get their own copy
	return maps.Clone(res.Val.(domain.ProductRecord)), nil
}

func (c *ProductClient) lookup(ctx context.Context, productID string) (domain.ProductRecord, error) {
	if c.cache != nil {
		rec, err := c.cache.Get(ctx, productID)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn(ctx, "product cache get failed", "product_id", productID, "error", err)
		}
	}

	rec, err := c.breaker.Execute(func() (domain.ProductRecord, error) {
		return c.fetchProduct(ctx, productID)
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, productID, rec); err != nil {
			c.log.Warn(ctx, "product cache set failed", "product_id", productID, "error", err)
		}
	}
	return rec, nil
}

func (c *ProductClient) fetchProduct(ctx context.Context, productID string) (domain.ProductRecord, error) {
	productCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := newRequest(productCtx, http.MethodGet, resourceURL(c.baseURL, "api", "products", productID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	body, err := readBody(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrProductNotFound
	case !isSuccess(resp.StatusCode):
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	case err != nil:
		return nil, fmt.Errorf("read product response: %w", err)
	}

	return decodeProductRecord(body)
}

func decodeProductRecord(body []byte) (domain.ProductRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var rec domain.ProductRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("malformed product response: %w", err)
	}
	if rec == nil {
		return nil, errors.New("malformed product response: not a JSON object")
	}
	return rec, nil
}
