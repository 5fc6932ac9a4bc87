package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão de admissão tomada para um endpoint.
//
// Table diz qual tabela decidiu ("email", "ip", "api"). Cuidado com
// cardinalidade: Key só deve ser persistida quando explicitamente habilitado.
type StatsEvent struct {
	Endpoint string
	Table    string
	Key      Key
	Allowed  bool

	At time.Time
}

// StatsStore persiste estatísticas das decisões.
//
// Erros são best-effort: nunca derrubam a request.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
