package products

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
	"github.com/trendbasket/storefront/pkg/validators"
)

// Client talks to the storefront REST backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	logg    *logger.Logger
}

// NewClient builds a storefront API client from configuration.
func NewClient(cfg config.APIConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
	}, nil
}

// GetAllProducts fetches the full product collection.
func (c *Client) GetAllProducts(ctx context.Context) ([]Product, error) {
	var envelope struct {
		Data []Product `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/getAllProducts", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var envelope struct {
		Data Product `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/getProduct/"+id, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// CreateProduct validates the payload client-side and submits it.
func (c *Client) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	if err := validators.Struct(input); err != nil {
		return nil, err
	}
	var envelope struct {
		Success bool    `json:"success"`
		Data    Product `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/createProduct", input, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// Purchase records a purchase of productID for userID.
func (c *Client) Purchase(ctx context.Context, userID, productID string) (*PurchaseResult, error) {
	if userID == "" || productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}
	body := map[string]string{"userId": userID, "productId": productID}
	var result PurchaseResult
	if err := c.doJSON(ctx, http.MethodPost, "/purchase", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddRating submits a star rating and comment for a product.
func (c *Client) AddRating(ctx context.Context, productID string, input RatingInput) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := validators.Struct(input); err != nil {
		return err
	}
	var envelope struct {
		Success bool `json:"success"`
	}
	return c.doJSON(ctx, http.MethodPost, "/addRating/"+productID, input, &envelope)
}

// GetReviews fetches the reviews posted on a product.
func (c *Client) GetReviews(ctx context.Context, productID string) ([]Review, error) {
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Reviews []Review `json:"reviews"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/getReviews/"+productID, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data.Reviews, nil
}

// Orders fetches the products a user has purchased.
func (c *Client) Orders(ctx context.Context, userID string) ([]Product, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	var envelope struct {
		User struct {
			YourOrders []Product `json:"YourOrders"`
		} `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/orders/"+userID, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.User.YourOrders, nil
}

// SoldProducts fetches the products a seller has listed and sold.
func (c *Client) SoldProducts(ctx context.Context, userID string) ([]Product, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	var envelope struct {
		Success bool      `json:"success"`
		Data    []Product `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/getUserSoldProducts/"+userID, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// UploadInput carries one image file destined for the upload endpoint.
type UploadInput struct {
	FileName string
	File     io.Reader
	Email    string
	UserID   string
}

// UploadProductImage posts the image as a multipart form and returns the
// hosted URL. The field names match what the upload endpoint expects.
func (c *Client) UploadProductImage(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if input.File == nil || input.FileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("imagefiles", input.FileName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload form")
	}
	if _, err := io.Copy(part, input.File); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy upload payload")
	}
	email := input.Email
	if email == "" {
		email = "anonymous@example.com"
	}
	_ = form.WriteField("email", email)
	_ = form.WriteField("userId", input.UserID)
	if err := form.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize upload form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploadProductImage", &buf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "upload product image")
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp.StatusCode, "/uploadProductImage")
	}

	var envelope struct {
		Success bool         `json:"success"`
		Data    UploadResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode upload response")
	}
	return &envelope.Data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "call storefront api")
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp.StatusCode, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode response")
	}
	return nil
}

func (c *Client) statusError(status int, path string) error {
	msg := fmt.Sprintf("storefront api returned %d for %s", status, path)
	switch status {
	case http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, msg)
	default:
		return pkgerrors.New(pkgerrors.CodeNetwork, msg)
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
