package csfloat

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultHost    = "https://csfloat.com/api"
	defaultTimeout = 30 * time.Second
)

type Config struct {
	Host    string
	APIKey  string
	Timeout time.Duration
}

// Result is the outcome of one successful request. Data holds the decoded
// JSON body (map[string]any or []any) and is nil for an empty body.
type Result struct {
	StatusCode int
	Message    string
	Data       any
}

// Requester issues a single request against the CSFloat API.
type Requester interface {
	Execute(method, endpoint string, params url.Values, body any) (*Result, error)
}

type RestClient struct {
	client  *resty.Client
	baseURL string
	log     logrus.FieldLogger
}

// NewRestClient builds a client for cfg.Host. The API key is sent verbatim
// in the Authorization header of every request.
func NewRestClient(cfg Config, log logrus.FieldLogger) *RestClient {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "CSFloat-Trader/1.0")
	client.SetHeader("Authorization", cfg.APIKey)
	client.SetLogger(log)

	return &RestClient{
		client:  client,
		baseURL: strings.TrimSuffix(host, "/"),
		log:     log,
	}
}

func (c *RestClient) Get(endpoint string, params url.Values) (*Result, error) {
	return c.Execute(http.MethodGet, endpoint, params, nil)
}

func (c *RestClient) Post(endpoint string, params url.Values, body any) (*Result, error) {
	return c.Execute(http.MethodPost, endpoint, params, body)
}

func (c *RestClient) Delete(endpoint string) (*Result, error) {
	return c.Execute(http.MethodDelete, endpoint, nil, nil)
}

// Execute sends one request and returns its decoded result. Any failure is
// a *TransportError; nothing is retried.
func (c *RestClient) Execute(method, endpoint string, params url.Values, body any) (*Result, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, invalidArgument("method", "unsupported method "+method)
	}

	fullURL := c.baseURL + endpoint
	entry := c.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"method":     method,
		"url":        fullURL,
		"params":     params.Encode(),
	})
	entry.Debug("csfloat request")

	req := c.client.R()
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}
	if method != http.MethodGet {
		req.SetHeader("Content-Type", "application/json")
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, fullURL)
	if err != nil {
		entry.WithError(err).WithField("success", false).Error("csfloat request failed")
		return nil, &TransportError{Kind: KindNetwork, Method: method, URL: fullURL, Err: err}
	}

	status := resp.StatusCode()
	message := reasonPhrase(resp)
	success := status >= 200 && status <= 299
	entry = entry.WithFields(logrus.Fields{
		"success":     success,
		"status_code": status,
		"message":     message,
	})

	if !success {
		reason := serverReason(resp.Body(), message)
		entry.WithField("reason", reason).Error("csfloat request rejected")
		return nil, &TransportError{
			Kind:       KindStatus,
			Method:     method,
			URL:        fullURL,
			StatusCode: status,
			Message:    reason,
		}
	}

	data, err := decodeBody(resp.Body())
	if err != nil {
		entry.WithError(err).Error("csfloat response is not JSON")
		return nil, &TransportError{
			Kind:       KindDecode,
			Method:     method,
			URL:        fullURL,
			StatusCode: status,
			Message:    message,
			Err:        err,
		}
	}

	entry.Debug("csfloat request done")
	return &Result{StatusCode: status, Message: message, Data: data}, nil
}

// decodeBody decodes a whole JSON document keeping numbers as json.Number
// so integer fields can be checked exactly.
func decodeBody(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
	}
	return out, nil
}

func reasonPhrase(resp *resty.Response) string {
	status := strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(resp.StatusCode())))
	if status == "" {
		status = http.StatusText(resp.StatusCode())
	}
	return status
}

// serverReason prefers the "message" field CSFloat puts in error bodies.
func serverReason(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}
