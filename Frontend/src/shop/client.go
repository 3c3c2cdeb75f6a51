// Package shop is the client side of the storefront: a REST client for the
// catalog and cart endpoints and a per-session cart snapshot built on it.
package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

// ErrAuthRequired marks a rejected or missing session. Errors carrying it
// also carry the Unauthenticated code.
var ErrAuthRequired = errors.New("authentication required")

type tokenKey struct{}

// WithToken attaches a bearer token to every request made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey{}).(string)
	return s
}

type Client struct {
	base string
	http *http.Client
}

// NewClient talks to the API mounted at baseURL, e.g. http://localhost:8000/api.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

type ProductPage struct {
	Products []catalog.Product `json:"products"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

func (c *Client) Products(ctx context.Context, f catalog.Filter) (*ProductPage, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	if f.Page != 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	path := "/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out ProductPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Featured returns the first page in featured order.
func (c *Client) Featured(ctx context.Context) (*ProductPage, error) {
	var out ProductPage
	if err := c.do(ctx, http.MethodGet, "/products/featured", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Product(ctx context.Context, id string) (*catalog.Product, error) {
	var out catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	var out catalog.Product
	if err := c.do(ctx, http.MethodPost, "/products", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

type itemBody struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) Cart(ctx context.Context) (*cart.View, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

func (c *Client) AddToCart(ctx context.Context, productID string, qty int) (*cart.View, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart/add", itemBody{productID, qty})
}

func (c *Client) UpdateCart(ctx context.Context, productID string, qty int) (*cart.View, error) {
	return c.cartCall(ctx, http.MethodPut, "/cart/update", itemBody{productID, qty})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*cart.View, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), nil)
}

func (c *Client) ClearCart(ctx context.Context) (*cart.View, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/clear", nil)
}

func (c *Client) cartCall(ctx context.Context, method, path string, body any) (*cart.View, error) {
	var out cart.View
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []cart.LineItem{}
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := tokenFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fault.Unavailable(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var eb struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(b, &eb); err != nil {
		eb.Message = strings.TrimSpace(string(b))
	}
	err := fault.FromHTTP(resp.StatusCode, eb.Code, eb.Message)
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}
	return err
}
