package domain

import (
	"context"
	"time"
)

// Window configura uma tabela de janela deslizante: no máximo Max tentativas
// registradas dentro dos últimos Length.
//
// Cada tabela tem a sua própria Window (ex.: email 60s/3, IP 5m/10).
type Window struct {
	Length time.Duration
	Max    int
}

// AttemptLog guarda, por chave, a sequência de instantes das tentativas
// ainda dentro da janela.
//
// Não existe operação atômica de read-modify-write: quem usa faz Attempts e
// depois SetAttempts. Duas verificações concorrentes para a mesma chave podem
// perder uma atualização. O throttling é best-effort e isso é aceito.
type AttemptLog interface {
	Attempts(ctx context.Context, key Key) ([]time.Time, error)
	SetAttempts(ctx context.Context, key Key, attempts []time.Time) error
}
