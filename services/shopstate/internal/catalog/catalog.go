package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/maysa/storefront/pkg/errors"
	"github.com/maysa/storefront/pkg/httpclient"
	"github.com/maysa/storefront/services/shopstate/internal/domain"
)

// Reader resolves product ids to the catalog read model.
type Reader interface {
	// Product returns the product, or an error matching apperrors.ErrNotFound.
	Product(ctx context.Context, id string) (domain.Product, error)
}

// Getter is the HTTP surface the client needs; *httpclient.CircuitBreakerClient
// satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client reads products from the storefront REST API.
type Client struct {
	http    Getter
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a catalog client rooted at baseURL.
func NewClient(getter Getter, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    getter,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

type envelope struct {
	Data *domain.Product `json:"data"`
}

// Product fetches GET {base}/api/v1/products/{id}.
func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	endpoint := c.baseURL + "/api/v1/products/" + url.PathEscape(id)

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "catalog circuit open", slog.String("product_id", id))
		}
		return domain.Product{}, apperrors.Unavailable("catalog is unavailable", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.Product{}, httpclient.ParseResponseError(resp, "catalog", "product", id)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return domain.Product{}, fmt.Errorf("decode catalog product %s: %w", id, err)
	}
	if env.Data == nil {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	if err := env.Data.Validate(); err != nil {
		return domain.Product{}, fmt.Errorf("catalog returned invalid product %s: %w", id, err)
	}
	return *env.Data, nil
}
