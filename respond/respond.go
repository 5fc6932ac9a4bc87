// Package respond escreve as respostas JSON das rotas /api.
package respond

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"
)

// ErrorBody é o formato de erro que os formulários do site esperam.
type ErrorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// TooManyRequests responde 429 com Retry-After em segundos (arredondado para cima).
func TooManyRequests(w http.ResponseWriter, retryAfter time.Duration, body any) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", RetryAfterSeconds(retryAfter))
	}
	JSON(w, http.StatusTooManyRequests, body)
}

func RetryAfterSeconds(d time.Duration) string {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}
