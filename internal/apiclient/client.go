package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/cashtill/tillgate/internal/domain"
)

// Backend endpoint paths. The catalog has two historical "all products"
// variants: the rich one carries explicit per-product stock, the legacy one
// does not. Both feed the same normalizer.
const (
	pathCategories     = "/api/pos/categories/all"
	pathProducts       = "/api/pos/products/all"
	pathProductsLegacy = "/api/pos/products/list"
	pathProductsByCat  = "/api/pos/products/by-category"
)

// TokenProvider yields the current backend bearer token, or "" when the
// operator is not logged in (the Authorization header is then omitted).
type TokenProvider interface {
	Token() string
}

// envelope is the backend response wrapper. Code 200 signals success; any
// other value, or a transport failure, is failure.
type envelope struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// Client is the POST-JSON collaborator for the remote POS backend.
type Client struct {
	baseURL string
	apiKey  string
	tokens  TokenProvider
	timeout time.Duration
	sf      singleflight.Group
}

func New(baseURL, apiKey string, tokens TokenProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, tokens: tokens, timeout: timeout}
}

func (c *Client) headers() gout.H {
	h := gout.H{"X-Api-Key": c.apiKey}
	if c.tokens != nil {
		if t := c.tokens.Token(); t != "" {
			h["Authorization"] = "Bearer " + t
		}
	}
	return h
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (*envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if body == nil {
		body = gout.H{}
	}
	var (
		env    envelope
		status int
	)
	err := gout.POST(c.baseURL + path).
		WithContext(ctx).
		SetHeader(c.headers()).
		SetJSON(body).
		Code(&status).
		BindJSON(&env).
		Do()
	if err != nil {
		return nil, errors.Wrapf(err, "post %s", path)
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("post %s: http status %d", path, status)
	}
	if env.Code != 200 {
		return nil, errors.Errorf("post %s: backend code %d: %s", path, env.Code, env.Message)
	}
	return &env, nil
}

// FetchCategories returns the full category list. Identical requests issued
// while one is in flight share its result.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	v, err, _ := c.sf.Do("categories", func() (interface{}, error) {
		env, err := c.postJSON(ctx, pathCategories, nil)
		if err != nil {
			return nil, err
		}
		return normalizeCategories(env.Data)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Category), nil
}

// FetchAllProducts returns the full catalog. The rich endpoint is tried
// first; when a backend revision does not serve it, the legacy endpoint is
// used and the normalizer defaults the stock fields.
func (c *Client) FetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := c.sf.Do("products", func() (interface{}, error) {
		env, err := c.postJSON(ctx, pathProducts, nil)
		if err != nil {
			env, err = c.postJSON(ctx, pathProductsLegacy, nil)
		}
		if err != nil {
			return nil, err
		}
		return normalizeProducts(env.Data)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// FetchProductsByCategory is the remote category-scoped fallback used when
// no full catalog is loaded locally. Its payload carries no session stock
// baseline; the store documents this as a lower-consistency path.
func (c *Client) FetchProductsByCategory(ctx context.Context, categoryID domain.ID) ([]domain.Product, error) {
	env, err := c.postJSON(ctx, pathProductsByCat, gout.H{"category_id": string(categoryID)})
	if err != nil {
		return nil, err
	}
	return normalizeProducts(env.Data)
}
