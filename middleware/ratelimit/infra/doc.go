// Package infra contém implementações concretas para os contratos do pacote domain.
//
//   - AttemptTable: tabela de tentativas em memória + janitor (Sweep)
//   - RedisAttemptLog: mesma tabela em sorted sets do Redis, compartilhada entre instâncias
//   - BucketStore: token bucket por chave usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
//   - MemoryStatsStore / RedisStatsStore: contadores de decisões
package infra
