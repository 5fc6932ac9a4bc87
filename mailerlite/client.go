// Package mailerlite é o cliente mínimo da API de inscritos do MailerLite.
package mailerlite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://connect.mailerlite.com"

// limite para corpos de erro/sucesso lidos do upstream
const maxBodyBytes = 1 << 20

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured diz se há API key; sem ela nenhuma chamada é feita.
func (c *Client) Configured() bool {
	return c != nil && strings.TrimSpace(c.apiKey) != ""
}

// Subscriber cria ou atualiza um inscrito e o coloca nos grupos informados.
type Subscriber struct {
	Email  string            `json:"email"`
	Status string            `json:"status"`
	Groups []string          `json:"groups"`
	Fields map[string]string `json:"fields,omitempty"`
}

// APIError é uma resposta não-2xx do MailerLite.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mailerlite: status %d: %s", e.StatusCode, e.Body)
}

// AlreadySubscribed é o 409 que o MailerLite devolve para inscritos existentes.
func (e *APIError) AlreadySubscribed() bool {
	return e.StatusCode == http.StatusConflict
}

// Subscribe faz POST /api/subscribers e devolve o JSON de resposta como veio.
func (c *Client) Subscribe(ctx context.Context, s Subscriber) (json.RawMessage, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, errors.WithMessage(err, "marshal subscriber")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/subscribers", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.WithMessage(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithMessage(err, "mailerlite request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.WithMessage(err, "read mailerlite response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, errors.Errorf("mailerlite: invalid json response (status %d)", resp.StatusCode)
	}
	return json.RawMessage(body), nil
}
