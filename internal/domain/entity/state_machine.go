package entity

import (
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// StateMachine es la tabla de adyacencia cerrada de un tipo de documento.
type StateMachine[S ~string] struct {
	kind     DocumentKind
	edges    map[S]map[Transition]S
	editable map[S]bool
}

// Next devuelve el estado destino o *domain.InvalidTransitionError si la transición no está en la tabla.
func (m StateMachine[S]) Next(from S, t Transition) (S, error) {
	if to, ok := m.edges[from][t]; ok {
		return to, nil
	}
	return from, &domain.InvalidTransitionError{Kind: string(m.kind), From: string(from), Transition: string(t)}
}

// Allowed lista las transiciones válidas desde un estado.
func (m StateMachine[S]) Allowed(from S) []Transition {
	out := make([]Transition, 0, len(m.edges[from]))
	for t := range m.edges[from] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Editable indica si las líneas y la cabecera pueden modificarse en ese estado.
func (m StateMachine[S]) Editable(s S) bool {
	return m.editable[s]
}

// Terminal es true cuando no sale ninguna transición del estado.
func (m StateMachine[S]) Terminal(s S) bool {
	return len(m.edges[s]) == 0
}
