// Package application contém os casos de uso do controle de admissão.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: CheckAndRecord(ctx, log, key, window, now) registra a tentativa e diz
// se ela passou do limite; WindowService.Decide devolve a Decision com Retry-After.
package application
