package storage

import (
	"context"
	"errors"
)

// ErrDisabled sinaliza que nenhum bucket de avatares foi configurado.
var ErrDisabled = errors.New("storage: bucket de avatares não configurado")

// AvatarStore persiste a foto de perfil e devolve a URL pública.
type AvatarStore interface {
	SaveAvatar(ctx context.Context, usuarioID string, body []byte, contentType string) (string, error)
}

// Disabled é o AvatarStore usado quando não há bucket configurado.
type Disabled struct{}

// SaveAvatar sempre devolve ErrDisabled.
func (Disabled) SaveAvatar(ctx context.Context, usuarioID string, body []byte, contentType string) (string, error) {
	return "", ErrDisabled
}
