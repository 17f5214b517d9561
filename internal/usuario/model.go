package usuario

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound é retornado quando nenhum usuário corresponde à busca.
	ErrNotFound = errors.New("usuário não encontrado")
	// ErrEmailEmUso indica tentativa de cadastro com e-mail duplicado.
	ErrEmailEmUso = errors.New("e-mail já cadastrado")
	// ErrSessionNotFound indica sessão de refresh desconhecida.
	ErrSessionNotFound = errors.New("sessão não encontrada")
)

// Usuario representa um servidor municipal com acesso ao painel.
type Usuario struct {
	ID           uuid.UUID  `json:"id"`
	Nome         string     `json:"nome"`
	Email        string     `json:"email"`
	SenhaHash    string     `json:"-"`
	AvatarURL    *string    `json:"avatarUrl"`
	Admin        bool       `json:"adm"`
	Secretaria   string     `json:"secretaria"`
	Departamento string     `json:"departamento"`
	CriadoEm     time.Time  `json:"criadoEm"`
	AtualizadoEm *time.Time `json:"atualizadoEm,omitempty"`
}

// CreateInput agrupa campos de cadastro.
type CreateInput struct {
	Nome         string
	Email        string
	SenhaHash    string
	Secretaria   string
	Departamento string
}

// UpdateProfileInput permite alterar nome e avatar.
type UpdateProfileInput struct {
	ID          uuid.UUID
	Nome        string
	AvatarURL   *string
	ClearAvatar bool
}

// Sessao é o registro persistido de um refresh token emitido.
type Sessao struct {
	ID        uuid.UUID
	UsuarioID uuid.UUID
	TokenHash string
	Expiracao time.Time
	Revogada  bool
	CriadaEm  time.Time
}
