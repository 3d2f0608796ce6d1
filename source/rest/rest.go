// Package rest reads orders from, and writes notes back to, the store's JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/interactive-solutions/go-invoice"
)

type Option func(s *orderSource)

func SetBasicAuth(username, password string) Option {
	return func(s *orderSource) {
		s.username = username
		s.password = password
	}
}

func SetHttpClient(client *retryablehttp.Client) Option {
	return func(s *orderSource) {
		s.client = client
	}
}

func SetLogger(logger logrus.FieldLogger) Option {
	return func(s *orderSource) {
		s.client.Logger = logger
	}
}

type orderSource struct {
	client *retryablehttp.Client

	baseUrl string

	username string
	password string
}

type noteRequest struct {
	Note         string `json:"note"`
	CustomerNote bool   `json:"customer_note"`
}

// NewOrderSource talks to the store without retries, a repeated note POST
// would annotate the order twice.
func NewOrderSource(baseUrl string, options ...Option) invoice.OrderSource {
	client := retryablehttp.NewClient()
	client.RetryMax = 0

	s := &orderSource{
		client:  client,
		baseUrl: strings.TrimRight(baseUrl, "/"),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

func (s *orderSource) Get(ctx context.Context, id string) (invoice.Order, error) {
	var order invoice.Order

	resp, err := s.do(ctx, http.MethodGet, s.orderUrl(id), nil)
	if err != nil {
		return order, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return order, invoice.OrderNotFoundErr
	}

	if resp.StatusCode >= 300 || resp.StatusCode <= 199 {
		return order, errors.Errorf("Unexpected response code %d received while fetching order %s", resp.StatusCode, id)
	}

	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return order, errors.Wrapf(err, "Failed to decode order %s", id)
	}

	if order.Id == "" {
		order.Id = id
	}

	return order, nil
}

func (s *orderSource) AddNote(ctx context.Context, id, note string, customerVisible bool) error {
	body, err := json.Marshal(noteRequest{Note: note, CustomerNote: customerVisible})
	if err != nil {
		return err
	}

	resp, err := s.do(ctx, http.MethodPost, s.orderUrl(id)+"/notes", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return invoice.OrderNotFoundErr
	}

	if resp.StatusCode >= 300 || resp.StatusCode <= 199 {
		return errors.Errorf("Unexpected response code %d received while adding note to order %s", resp.StatusCode, id)
	}

	return nil
}

func (s *orderSource) orderUrl(id string) string {
	return fmt.Sprintf("%s/orders/%s", s.baseUrl, url.PathEscape(id))
}

func (s *orderSource) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	var payload interface{}
	if body != nil {
		payload = bytes.NewReader(body)
	}

	req, err := retryablehttp.NewRequest(method, target, payload)
	if err != nil {
		return nil, err
	}

	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", invoice.UserAgent)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to call store at %s", target)
	}

	return resp, nil
}
