// Package subscribe implementa os endpoints de inscrição na lista de emails
// (/api/subscribe e /api/notify): honeypot, janelas por email e por IP,
// validação e repasse ao MailerLite.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chimeral-forms/mailerlite"
	"chimeral-forms/middleware/ratelimit"
	"chimeral-forms/respond"

	"go.uber.org/zap"
)

const maxBodyBytes = 16 << 10

const (
	msgEmailLimited = "Too many attempts with this email in a short period. Please try again later."
	msgIPLimited    = "Too many requests from this IP. Please wait a few minutes and try again."
)

// Subscriber é o que o handler precisa do provedor de lista.
type Subscriber interface {
	Configured() bool
	Subscribe(ctx context.Context, s mailerlite.Subscriber) (json.RawMessage, error)
}

// Endpoint descreve um formulário de inscrição.
type Endpoint struct {
	Name          string
	GroupID       string
	Source        string
	DefaultBookID string
}

type request struct {
	Email  string `json:"email"`
	BookID string `json:"bookId"`
	HP     string `json:"hp"`
}

type okResponse struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type Handler struct {
	endpoint   Endpoint
	client     Subscriber
	emailGuard *ratelimit.WindowGuard
	ipGuard    *ratelimit.WindowGuard
	logger     *zap.Logger
}

// NewHandler recebe as duas tabelas já construídas; cada endpoint tem as suas.
func NewHandler(ep Endpoint, client Subscriber, emailGuard, ipGuard *ratelimit.WindowGuard, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		endpoint:   ep,
		client:     client,
		emailGuard: emailGuard,
		ipGuard:    ipGuard,
		logger:     logger.With(zap.String("endpoint", ep.Name)),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)

	var req request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// honeypot preenchido: provavelmente bot, sai em silêncio
	if req.HP != "" {
		respond.JSON(w, http.StatusOK, okResponse{OK: true})
		return
	}

	ctx := r.Context()
	if key := NormalizeEmail(req.Email); key != "" && h.emailGuard != nil {
		if dec := h.emailGuard.Check(ctx, key); !dec.Allowed {
			respond.TooManyRequests(w, dec.RetryAfter, respond.ErrorBody{Error: msgEmailLimited})
			return
		}
	}
	if ip != "" && h.ipGuard != nil {
		if dec := h.ipGuard.Check(ctx, ip); !dec.Allowed {
			respond.TooManyRequests(w, dec.RetryAfter, respond.ErrorBody{Error: msgIPLimited})
			return
		}
	}

	if h.client == nil || !h.client.Configured() || h.endpoint.GroupID == "" {
		h.logger.Error("mailing list provider is not configured (api key or group id missing)")
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	email := strings.TrimSpace(req.Email)
	if !validEmail(email) {
		respond.Error(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	bookID := req.BookID
	if bookID == "" {
		bookID = h.endpoint.DefaultBookID
	}

	data, err := h.client.Subscribe(ctx, mailerlite.Subscriber{
		Email:  email,
		Status: "active",
		Groups: []string{h.endpoint.GroupID},
		Fields: map[string]string{
			"book_id": bookID,
			"source":  h.endpoint.Source,
		},
	})
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, okResponse{OK: true, Data: data})
}

func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *mailerlite.APIError
	if !errors.As(err, &apiErr) {
		h.logger.Error("subscription failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if apiErr.AlreadySubscribed() {
		respond.JSON(w, http.StatusOK, okResponse{OK: true, Message: "Already subscribed."})
		return
	}

	h.logger.Error("mailerlite api error",
		zap.Int("status", apiErr.StatusCode),
		zap.String("body", apiErr.Body),
	)
	msg := apiErr.Body
	if msg == "" {
		msg = "MailerLite error occurred"
	}
	respond.Error(w, apiErr.StatusCode, msg)
}
