// Package ratelimit fornece os adapters HTTP (net/http) do controle de admissão
// dos formulários do site.
//
// Visão geral (camadas):
//
//   - domain: contratos (Key, Window, AttemptLog, Decision...) sem net/http
//   - application: CheckAndRecord / WindowService (janela deslizante), BucketService, SlotService
//   - infra: tabelas em memória e Redis, token bucket, semáforo, estatísticas
//   - ratelimit (este pacote): extração do IP, WindowGuard para handlers,
//     middlewares de token bucket e de concorrência
//
// Fluxo num formulário:
//
//  1. Extrai email (do corpo) e IP (X-Forwarded-For / X-Real-IP / "unknown")
//  2. Checa a tabela de email e depois a de IP; cada checagem registra a tentativa
//  3. Se bloqueado, responde 429 com {"error": ...} e Retry-After
//  4. Se admitido, segue para validação e para o provedor de email
package ratelimit
