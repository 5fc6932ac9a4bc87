// Package contact recebe as mensagens dos formulários de imprensa
// (/api/presskit) e de contato (/api/contact).
package contact

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"chimeral-forms/inbox"
	"chimeral-forms/middleware/ratelimit"
	"chimeral-forms/respond"

	"go.uber.org/zap"
)

const (
	maxBodyBytes = 64 << 10
	sentMessage  = "Thanks! Your message has been sent."
)

// ActionState é a resposta que os formulários renderizam.
type ActionState struct {
	OK      bool              `json:"ok"`
	Message string            `json:"message,omitempty"`
	Errors  inbox.FieldErrors `json:"errors,omitempty"`
}

// Saver é onde as mensagens aceitas vão parar; nil só loga.
type Saver interface {
	Save(ctx context.Context, m *inbox.Message) error
}

type Handler struct {
	validator inbox.Validator
	saver     Saver
	pressIP   *ratelimit.WindowGuard
	contactIP *ratelimit.WindowGuard
	logger    *zap.Logger
}

func NewHandler(v inbox.Validator, saver Saver, pressIP, contactIP *ratelimit.WindowGuard, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		validator: v,
		saver:     saver,
		pressIP:   pressIP,
		contactIP: contactIP,
		logger:    logger,
	}
}

func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, ActionState{Errors: inbox.FieldErrors{inbox.GlobalField: "Invalid request body."}})
		return
	}

	// honeypot (campo oculto "company")
	if f.get("company") != "" {
		respond.JSON(w, http.StatusOK, ActionState{OK: true, Message: sentMessage})
		return
	}

	ip := ratelimit.ClientIP(r)
	if !h.admit(w, r, h.pressIP, ip) {
		return
	}

	in := inbox.PressInput{
		Name:    f.get("name"),
		Email:   f.get("email"),
		Subject: f.get("subject"),
		Message: f.get("message"),
	}
	if errs := h.validator.Press(in); len(errs) > 0 {
		respond.JSON(w, http.StatusBadRequest, ActionState{Errors: errs})
		return
	}

	h.store(w, r, &inbox.Message{
		Kind:    inbox.KindPress,
		Name:    inbox.Sanitize(in.Name),
		Email:   inbox.Sanitize(in.Email),
		Subject: inbox.Sanitize(in.Subject),
		Body:    inbox.Sanitize(in.Message),
		IP:      ip,
	})
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, ActionState{Errors: inbox.FieldErrors{inbox.GlobalField: "Invalid request body."}})
		return
	}

	ip := ratelimit.ClientIP(r)
	if !h.admit(w, r, h.contactIP, ip) {
		return
	}

	in := inbox.ContactInput{
		Name:    f.get("name"),
		Email:   f.get("email"),
		Message: f.get("message"),
	}
	if errs := h.validator.Contact(in); len(errs) > 0 {
		respond.JSON(w, http.StatusBadRequest, ActionState{Errors: errs})
		return
	}

	h.store(w, r, &inbox.Message{
		Kind:  inbox.KindContact,
		Name:  inbox.Sanitize(in.Name),
		Email: inbox.Sanitize(in.Email),
		Body:  inbox.Sanitize(in.Message),
		IP:    ip,
	})
}

func (h *Handler) admit(w http.ResponseWriter, r *http.Request, g *ratelimit.WindowGuard, ip string) bool {
	if g == nil || ip == "" {
		return true
	}
	dec := g.Check(r.Context(), ip)
	if dec.Allowed {
		return true
	}
	respond.TooManyRequests(w, dec.RetryAfter, ActionState{
		Errors: inbox.FieldErrors{inbox.GlobalField: "Please wait a moment and try again."},
	})
	return false
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request, m *inbox.Message) {
	if h.saver != nil {
		if err := h.saver.Save(r.Context(), m); err != nil {
			h.logger.Error("failed to store message", zap.String("kind", string(m.Kind)), zap.Error(err))
			respond.JSON(w, http.StatusInternalServerError, ActionState{
				Errors: inbox.FieldErrors{inbox.GlobalField: "Something went wrong. Please try again in a moment."},
			})
			return
		}
	}

	h.logger.Info("message received",
		zap.String("kind", string(m.Kind)),
		zap.String("id", m.ID),
		zap.String("name", m.Name),
		zap.String("email", m.Email),
		zap.String("subject", m.Subject),
		zap.String("ip", m.IP),
	)
	respond.JSON(w, http.StatusOK, ActionState{OK: true, Message: sentMessage})
}

type fields map[string]string

func (f fields) get(k string) string { return strings.TrimSpace(f[k]) }

// readFields aceita JSON ou formulário (urlencoded/multipart).
func readFields(w http.ResponseWriter, r *http.Request) (fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		raw := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		out := fields{}
		for k, v := range raw {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out, nil
	}

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}
	out := fields{}
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}
