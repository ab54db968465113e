package plays

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/parlay-feed/internal/feed-service/kv"
)

// Repository persiste a coleção inteira de plays como um único documento JSON
// (mais recente primeiro) sob uma chave fixa do key-value store.
//
// Toda mutação é ler-tudo, alterar, gravar-tudo, sem versão nem lock:
// escritores concorrentes podem sobrescrever a alteração um do outro
// (last-write-wins no nível da coleção). Limitação aceita.
type Repository struct {
	store kv.Store
	key   string

	now   func() time.Time
	newID func() string
}

func NewRepository(store kv.Store, key string) *Repository {
	return &Repository{
		store: store,
		key:   key,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List devolve as plays na ordem de armazenamento, já normalizadas.
// Coleção inexistente é uma lista vazia.
func (r *Repository) List(ctx context.Context) ([]Play, error) {
	var out []Play
	ok, err := kv.GetJSON(ctx, r.store, r.key, &out)
	if err != nil {
		return nil, fmt.Errorf("list plays: %w", err)
	}
	if !ok || out == nil {
		return []Play{}, nil
	}
	return out, nil
}

// Create valida o payload, atribui id e postedAt e insere no topo da coleção
func (r *Repository) Create(ctx context.Context, in NewPlay) (Play, error) {
	in, err := Validate(in)
	if err != nil {
		return Play{}, err
	}

	list, err := r.List(ctx)
	if err != nil {
		return Play{}, err
	}

	p := Play{
		ID:         r.newID(),
		Legs:       in.Legs,
		ParlayOdds: in.ParlayOdds,
		Units:      in.Units,
		SlipImage:  in.SlipImage,
		PostedAt:   r.now().UTC().Format(time.RFC3339),
		Result:     ResultPending,
	}

	list = append([]Play{p}, list...)
	if err := r.store.Set(ctx, r.key, list); err != nil {
		return Play{}, fmt.Errorf("create play: %w", err)
	}
	return p, nil
}

// UpdateResult grava o resultado literalmente. Valor igual ao atual não gera
// escrita e devolve changed=false.
func (r *Repository) UpdateResult(ctx context.Context, id string, res Result) (p Play, changed bool, err error) {
	if !res.Valid() {
		return Play{}, false, &ValidationError{Fields: []string{"result"}}
	}
	return r.mutateResult(ctx, id, func(Result) Result { return res })
}

// ToggleResult segue o botão de grading do admin: clicar no resultado já
// ativo volta a play para pending; qualquer outro resultado é aplicado.
func (r *Repository) ToggleResult(ctx context.Context, id string, res Result) (p Play, changed bool, err error) {
	if !res.Valid() {
		return Play{}, false, &ValidationError{Fields: []string{"result"}}
	}
	return r.mutateResult(ctx, id, func(cur Result) Result {
		if cur == res {
			return ResultPending
		}
		return res
	})
}

func (r *Repository) mutateResult(ctx context.Context, id string, next func(Result) Result) (Play, bool, error) {
	list, err := r.List(ctx)
	if err != nil {
		return Play{}, false, err
	}

	for i := range list {
		if list[i].ID != id {
			continue
		}
		res := next(list[i].Result)
		if list[i].Result == res {
			return list[i], false, nil
		}
		list[i].Result = res
		if err := r.store.Set(ctx, r.key, list); err != nil {
			return Play{}, false, fmt.Errorf("update play %s: %w", id, err)
		}
		return list[i], true, nil
	}
	return Play{}, false, ErrNotFound
}

// Delete é idempotente: id ausente não é erro (removed=false)
func (r *Repository) Delete(ctx context.Context, id string) (removed bool, err error) {
	list, err := r.List(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]Play, 0, len(list))
	for _, p := range list {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return false, nil
	}

	if err := r.store.Set(ctx, r.key, kept); err != nil {
		return false, fmt.Errorf("delete play %s: %w", id, err)
	}
	return true, nil
}

// Validate normaliza o payload de criação: textos aparados, betType/sport
// vazios recebem o default e units vazio vira 1U.
func Validate(in NewPlay) (NewPlay, error) {
	var bad []string

	if len(in.Legs) == 0 {
		bad = append(bad, "legs")
	}

	legs := make([]Leg, len(in.Legs))
	for i, l := range in.Legs {
		l = Leg{
			Team:    strings.TrimSpace(l.Team),
			BetType: strings.TrimSpace(l.BetType),
			Odds:    strings.TrimSpace(l.Odds),
			Matchup: strings.TrimSpace(l.Matchup),
			Sport:   strings.TrimSpace(l.Sport),
		}
		if l.BetType == "" {
			l.BetType = DefaultBetType
		}
		if l.Sport == "" {
			l.Sport = DefaultSport
		}
		if l.Team == "" {
			bad = append(bad, fmt.Sprintf("legs[%d].team", i))
		}
		if l.Matchup == "" {
			bad = append(bad, fmt.Sprintf("legs[%d].matchup", i))
		}
		if !ValidBetType(l.BetType) {
			bad = append(bad, fmt.Sprintf("legs[%d].betType", i))
		}
		if !ValidSport(l.Sport) {
			bad = append(bad, fmt.Sprintf("legs[%d].sport", i))
		}
		legs[i] = l
	}

	out := NewPlay{
		Legs:       legs,
		ParlayOdds: strings.TrimSpace(in.ParlayOdds),
		Units:      strings.TrimSpace(in.Units),
		SlipImage:  in.SlipImage,
	}
	if out.ParlayOdds == "" {
		bad = append(bad, "parlayOdds")
	}
	if out.Units == "" {
		out.Units = DefaultUnits
	}

	if len(bad) > 0 {
		return NewPlay{}, &ValidationError{Fields: bad}
	}
	return out, nil
}
