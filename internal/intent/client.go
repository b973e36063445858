// Package intent calls the remote text-classification service that maps a
// voice transcript to a product category.
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
)

// Result is the classifier's verdict for one transcript. Intent is the
// lower-cased category label, empty when the classifier found nothing.
// Price is an optional extracted price bound.
type Result struct {
	Intent string   `json:"intent"`
	Price  *float64 `json:"price"`
}

// Client posts transcripts to the prediction endpoint. A token-bucket
// limiter keeps repeated voice commands from hammering the model service.
type Client struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	logg    *logger.Logger
}

func NewClient(cfg config.IntentConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("intent base url is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logg:    logg,
	}, nil
}

// Predict classifies the transcript. Every failure mode -- timeout, server
// error, malformed response, empty label -- surfaces as EMPTY_INTENT so the
// voice pipeline apologizes the same way for all of them; the cause stays
// wrapped for the logs.
func (c *Client) Predict(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyIntent, "transcript is empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeEmptyIntent, err, "rate limit wait")
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode transcript")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict-intent", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logg.Error(ctx, "intent service unreachable", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeEmptyIntent, err, "predict intent")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyIntent, fmt.Sprintf("intent service returned %d", resp.StatusCode))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeEmptyIntent, err, "decode intent response")
	}

	result.Intent = strings.ToLower(strings.TrimSpace(result.Intent))
	if result.Intent == "" {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyIntent, "classifier returned no label")
	}
	return &result, nil
}
