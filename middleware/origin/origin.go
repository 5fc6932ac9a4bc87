// Package origin bloqueia requisições de navegador vindas de sites fora
// da lista de origens permitidas.
package origin

import (
	"net/http"
	"strings"
)

// DefaultAllowed são as origens do site em desenvolvimento, produção e staging.
var DefaultAllowed = []string{
	"http://localhost:3000",
	"https://chimeralinsight.com",
	"https://www.chimeralinsight.com",
	"https://staging.chimeralinsight.com",
}

// Guard responde 403 quando o header Origin existe e não está na lista.
// Sem Origin (curl, server-to-server) a requisição passa.
func Guard(allowed []string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o != "" {
			set[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			o := r.Header.Get("Origin")
			if o != "" {
				if _, ok := set[o]; !ok {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
