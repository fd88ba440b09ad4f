package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/pkg/circuit_breaker"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL string        `envconfig:"API_URL" default:"http://localhost:8083/api"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`
}

// Client is the shared transport of the resource clients. It performs one
// request per call and never retries.
type Client struct {
	log     *zap.Logger
	client  *http.Client
	baseURL string
	cb      circuit_breaker.CircuitBreaker
}

func NewClient(log *zap.Logger, cfg Config, name string) *Client {
	return &Client{
		log:     log.Named(name),
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cb:      circuit_breaker.New(100, 5*time.Second, 0.5, 2),
	}
}

// WithHTTPClient swaps the underlying http client, used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

func (c *Client) CB() circuit_breaker.CircuitBreaker {
	return c.cb
}

func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// JSON sends body (if any) as json and decodes a 2xx answer into out (if any).
func (c *Client) JSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		b := bytes.NewBuffer(nil)
		if err := json.NewEncoder(b).Encode(body); err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = b
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	}
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	return c.do(req, out)
}

// Multipart uploads one file under field.
func (c *Client) Multipart(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	b := bytes.NewBuffer(nil)
	w := multipart.NewWriter(b)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, file); err != nil {
		return errors.Wrap(err, "copy file")
	}
	if err = w.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(path, nil), b)
	if err != nil {
		return err
	}
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	return c.cb.Call(func() error {
		resp, err := c.client.Do(req)
		if err != nil {
			c.log.Warn("request failed",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Error(err))
			return errors.Wrap(err, fmt.Sprintf("%s %s", req.Method, req.URL.Path))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "read body")
		}
		c.log.Debug("response",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode))

		if resp.StatusCode >= http.StatusBadRequest {
			apiErr := &errs.APIError{Code: resp.StatusCode, Payload: string(data)}
			if resp.StatusCode < http.StatusInternalServerError {
				return circuit_breaker.Ignore{Err: apiErr}
			}
			return apiErr
		}
		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "decode response")
		}
		return nil
	})
}
