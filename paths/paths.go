// Package paths prefixa caminhos internos com o base path de deploy
// (ex.: /chimeralinsight-web no GitHub Pages).
package paths

import "strings"

// WithBasePath devolve p prefixado com base.
//
// Ficam como estão: p vazio, URLs http(s) absolutas, âncoras (#...),
// queries (?...) e caminhos que já começam com base.
func WithBasePath(base, p string) string {
	if p == "" || isAbsoluteURL(p) {
		return p
	}
	if strings.HasPrefix(p, "#") || strings.HasPrefix(p, "?") {
		return p
	}
	base = strings.TrimRight(base, "/")
	if base != "" && hasBase(p, base) {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}

func isAbsoluteURL(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func hasBase(p, base string) bool {
	if !strings.HasPrefix(p, base) {
		return false
	}
	rest := p[len(base):]
	return rest == "" || rest[0] == '/' || rest[0] == '?' || rest[0] == '#'
}

// Prefixer fixa o base path lido da configuração.
type Prefixer string

func (b Prefixer) Path(p string) string { return WithBasePath(string(b), p) }
