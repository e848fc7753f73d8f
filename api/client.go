package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientConfig holds the connection settings for a sync node
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// RateLimit is requests per second; zero disables limiting
	RateLimit float64
	RateBurst int
}

// Client talks to one Krist sync node
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger
}

// NewClient creates a client for the configured sync node
func NewClient(cfg ClientConfig, log logrus.FieldLogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		log:     log,
	}
}

// BaseURL returns the sync node address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the part every response shares
type envelope struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Parameter string `json:"parameter"`
}

// Get requests path (relative to the sync node) and decodes the body into
// out. Error bodies become *APIError, transport failures *NetworkError.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	log := c.log.WithFields(logrus.Fields{"request": uuid.NewString(), "path": path})

	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Op: "GET " + path, Err: errors.Wrap(err, "waiting for rate limiter")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrapf(err, "building request for %s", path)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return &NetworkError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "GET " + path, Status: resp.StatusCode, Err: errors.Wrap(err, "reading body")}
	}

	log = log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(started).Round(time.Millisecond),
	})

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode >= 500 {
		cause := errors.New(http.StatusText(resp.StatusCode))
		if decodeErr == nil && env.Error != "" {
			cause = errors.Wrap(cause, env.Error)
			log = log.WithField("code", env.Error)
		}
		log.Warn("server error")
		return &NetworkError{Op: "GET " + path, Status: resp.StatusCode, Err: cause}
	}
	if decodeErr != nil {
		log.WithError(decodeErr).Warn("undecodable response")
		return &NetworkError{Op: "GET " + path, Status: resp.StatusCode, Err: errors.Wrap(decodeErr, "decoding response")}
	}
	if !env.OK || resp.StatusCode >= 400 {
		code := env.Error
		if code == "" {
			code = "unknown_error"
		}
		log.WithField("code", code).Debug("api error")
		return &APIError{Code: code, Message: env.Message, Status: resp.StatusCode, Parameter: env.Parameter}
	}

	log.Debug("request settled")

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &NetworkError{Op: "GET " + path, Status: resp.StatusCode, Err: errors.Wrap(err, "decoding response")}
	}
	return nil
}
