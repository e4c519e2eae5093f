package geo

import (
	"context"
	"errors"
)

// ErrUpstream wraps failures talking to the geography provider.
var ErrUpstream = errors.New("geography provider unavailable")

// State is a Brazilian federative unit.
type State struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

type Directory interface {
	States(ctx context.Context) ([]State, error)
	Cities(ctx context.Context, uf string) ([]string, error)
	// HasCity reports whether city belongs to uf, ignoring case.
	HasCity(ctx context.Context, uf, city string) (bool, error)
}
