package chamado

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound é retornado quando o chamado não existe.
	ErrNotFound = errors.New("chamado não encontrado")
	// ErrInvalidStatus indica status fora do ciclo de vida conhecido.
	ErrInvalidStatus = errors.New("status inválido")
)

const (
	StatusAberto    = "aberto"
	StatusProgresso = "progresso"
	StatusAtendido  = "atendido"
)

var validStatuses = map[string]struct{}{
	StatusAberto:    {},
	StatusProgresso: {},
	StatusAtendido:  {},
}

// Chamado representa um pedido de suporte com ciclo de vida próprio.
// Cliente guarda uma cópia desnormalizada do nome do cliente no momento
// da última sincronização; ClienteID é a referência estável. Secretaria e
// Departamento são capturados na abertura e não acompanham renomeações
// posteriores da estrutura organizacional.
type Chamado struct {
	ID           uuid.UUID  `json:"id"`
	Cliente      string     `json:"cliente"`
	ClienteID    uuid.UUID  `json:"clienteId"`
	Assunto      string     `json:"assunto"`
	Status       string     `json:"status"`
	Complemento  string     `json:"complemento"`
	UsuarioID    uuid.UUID  `json:"userId"`
	UsuarioNome  string     `json:"userName"`
	Secretaria   string     `json:"secretaria"`
	Departamento string     `json:"departamento"`
	CriadoEm     time.Time  `json:"created"`
	AtendidoEm   *time.Time `json:"atendidoEm,omitempty"`
}

// CreateInput encapsula campos para abertura de chamado.
type CreateInput struct {
	ClienteID    uuid.UUID
	Assunto      string
	Complemento  string
	UsuarioID    uuid.UUID
	UsuarioNome  string
	Secretaria   string
	Departamento string
}

// UpdateInput permite a triagem alterar status/assunto/complemento e
// revincular o chamado a outro cliente.
type UpdateInput struct {
	ID          uuid.UUID
	ClienteID   *uuid.UUID
	Status      *string
	Assunto     *string
	Complemento *string
	AtendidoEm  *time.Time
}

// Filter permite filtrar a listagem de chamados.
type Filter struct {
	Status    []string
	ClienteID *uuid.UUID
	UsuarioID *uuid.UUID
	Limit     int
	Offset    int
}

// NormalizeStatus garante padrão em letras minúsculas.
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return StatusAberto
	}
	return status
}

// IsValidStatus indica se o status é aceito.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}
