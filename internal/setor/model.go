package setor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound é retornado quando a secretaria não existe.
	ErrNotFound = errors.New("secretaria não encontrada")
	// ErrDepartamentoNotFound é retornado quando o departamento não existe.
	ErrDepartamentoNotFound = errors.New("departamento não encontrado")
	// ErrNomeEmUso indica conflito com nome já cadastrado.
	ErrNomeEmUso = errors.New("nome já cadastrado")
)

// Secretaria é o agrupamento de primeiro nível (ex.: Saúde, Educação).
type Secretaria struct {
	ID       uuid.UUID `json:"id"`
	Nome     string    `json:"nome"`
	CriadaEm time.Time `json:"criadaEm"`
}

// Departamento é o agrupamento de segundo nível, vinculado à secretaria dona.
type Departamento struct {
	ID           uuid.UUID `json:"id"`
	SecretariaID uuid.UUID `json:"secretariaId"`
	Nome         string    `json:"nome"`
	CriadoEm     time.Time `json:"criadoEm"`
}

// Setor agrega uma secretaria e seus departamentos para listagem.
type Setor struct {
	Secretaria
	Departamentos []Departamento `json:"departamentos"`
}
