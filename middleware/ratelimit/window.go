package ratelimit

import (
	"context"
	"time"

	"chimeral-forms/middleware/ratelimit/application"
	"chimeral-forms/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

// WindowGuard é uma tabela de janela deslizante pronta para um handler de
// formulário: decide, grava estatística e falha aberto se o log remoto cair.
//
// Chave vazia não é responsabilidade do guard: o handler pula a checagem.
type WindowGuard struct {
	Endpoint string
	Table    string
	Service  application.WindowService
	Stats    domain.StatsStore
	Logger   *zap.Logger
	// Now é o relógio injetado; nil usa time.Now.
	Now func() time.Time
}

func NewWindowGuard(endpoint, table string, log domain.AttemptLog, w domain.Window) *WindowGuard {
	return &WindowGuard{
		Endpoint: endpoint,
		Table:    table,
		Service:  application.WindowService{Log: log, Window: w},
	}
}

func (g *WindowGuard) Check(ctx context.Context, key string) domain.Decision {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	at := now()

	dec, err := g.Service.Decide(ctx, domain.Key(key), at)
	if err != nil && g.Logger != nil {
		g.Logger.Warn("rate limit check failed, admitting request",
			zap.String("endpoint", g.Endpoint),
			zap.String("table", g.Table),
			zap.Error(err),
		)
	}
	if g.Stats != nil {
		if err := g.Stats.Record(ctx, domain.StatsEvent{
			Endpoint: g.Endpoint,
			Table:    g.Table,
			Key:      domain.Key(key),
			Allowed:  dec.Allowed,
			At:       at,
		}); err != nil && g.Logger != nil {
			g.Logger.Debug("rate limit stats not recorded", zap.Error(err))
		}
	}
	return dec
}
