// Package domain define contratos e tipos de domínio para o controle de admissão
// dos formulários (janela deslizante por email/IP, token bucket, concorrência).
//
// Este pacote não depende de net/http nem de implementações concretas:
// as tabelas de tentativas são injetadas (AttemptLog) e o relógio também.
package domain
