package application

import (
	"context"
	"time"

	"chimeral-forms/middleware/ratelimit/domain"
)

// Prune é o núcleo puro da janela deslizante.
//
// Mantém só os instantes t com now-t < w.Length (um instante com exatamente
// w.Length de idade já expirou), acrescenta now e diz se a sequência
// resultante passou de w.Max. A chamada que estoura o limite também é
// registrada.
func Prune(attempts []time.Time, w domain.Window, now time.Time) ([]time.Time, bool) {
	kept := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if now.Sub(t) < w.Length {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	return kept, len(kept) > w.Max
}

// CheckAndRecord carrega as tentativas de key, aplica Prune e grava o
// resultado de volta em log. Retorna true quando a chamada deve ser rejeitada.
//
// now é injetado e deve ser não-decrescente entre chamadas.
// Erro só acontece com logs remotos (ex.: Redis); a tabela em memória nunca falha.
func CheckAndRecord(ctx context.Context, log domain.AttemptLog, key domain.Key, w domain.Window, now time.Time) (bool, error) {
	_, limited, err := record(ctx, log, key, w, now)
	return limited, err
}

func record(ctx context.Context, log domain.AttemptLog, key domain.Key, w domain.Window, now time.Time) ([]time.Time, bool, error) {
	attempts, err := log.Attempts(ctx, key)
	if err != nil {
		return nil, false, err
	}
	kept, limited := Prune(attempts, w, now)
	if err := log.SetAttempts(ctx, key, kept); err != nil {
		return nil, false, err
	}
	return kept, limited, nil
}

// WindowService decide a admissão de uma tabela de janela deslizante.
//
// Não sabe nada de HTTP: devolve uma Decision com RetryAfter calculado a
// partir das tentativas retidas.
type WindowService struct {
	Log    domain.AttemptLog
	Window domain.Window
}

func (s WindowService) Decide(ctx context.Context, key domain.Key, now time.Time) (domain.Decision, error) {
	if s.Log == nil {
		return domain.Decision{Allowed: true}, nil
	}

	kept, limited, err := record(ctx, s.Log, key, s.Window, now)
	if err != nil {
		return domain.Decision{Allowed: true}, err
	}
	if !limited {
		return domain.Decision{Allowed: true}, nil
	}
	return domain.Decision{Allowed: false, RetryAfter: retryAfter(kept, s.Window, now)}, nil
}

// retryAfter é quanto falta para a próxima chamada ser admitida: ela precisa
// encontrar no máximo Max-1 tentativas retidas, ou seja, kept[len-Max] expirar.
func retryAfter(kept []time.Time, w domain.Window, now time.Time) time.Duration {
	if w.Max <= 0 || len(kept) < w.Max {
		return w.Length
	}
	d := kept[len(kept)-w.Max].Add(w.Length).Sub(now)
	if d <= 0 {
		return w.Length
	}
	return d
}
