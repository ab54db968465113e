package kv

import (
	"context"
	"encoding/json"
)

// Store é o contrato mínimo do key-value store usado pelo feed.
// Get devolve ok=false (sem erro) quando a chave não existe.
// Set sobrescreve incondicionalmente: sem versão, sem merge.
type Store interface {
	Get(ctx context.Context, key string) (raw []byte, ok bool, err error)
	Set(ctx context.Context, key string, v any) error
	Ping(ctx context.Context) error
}

// Normalize converte o payload armazenado em um documento JSON válido.
//
//   - payload que não é JSON vira uma string JSON com o texto cru;
//   - string JSON cujo conteúdo também é JSON (dupla codificação legada) é
//     decodificada uma vez e o documento interno é devolvido;
//   - qualquer outro JSON volta inalterado.
//
// Escritas novas são sempre codificadas uma única vez; este desvio existe
// apenas para tolerar dados antigos.
func Normalize(payload []byte) []byte {
	if !json.Valid(payload) {
		b, _ := json.Marshal(string(payload))
		return b
	}
	var inner string
	if err := json.Unmarshal(payload, &inner); err == nil && json.Valid([]byte(inner)) {
		return []byte(inner)
	}
	return payload
}

// GetJSON busca a chave e decodifica em dst. ok=false quando ausente.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return true, json.Unmarshal(raw, dst)
}
