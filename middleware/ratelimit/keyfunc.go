package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIP é a chave usada quando nenhum header de proxy traz o IP.
const UnknownIP = "unknown"

type KeyFunc func(r *http.Request) string

// ClientIP extrai o IP do cliente dos headers do proxy:
// primeiro valor do X-Forwarded-For, depois X-Real-IP, senão "unknown".
//
// Um X-Forwarded-For presente mas com primeiro valor vazio devolve "",
// e quem chama pula a checagem por IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		return rip
	}
	return UnknownIP
}

// DefaultKeyFunc é a chave do token bucket de /api. Com trustProxy usa os
// headers do proxy (ClientIP); sem eles, ou sem confiar, cai no RemoteAddr.
func DefaultKeyFunc(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		if trustProxy {
			if ip := ClientIP(r); ip != "" && ip != UnknownIP {
				return ip
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return UnknownIP
	}
}
