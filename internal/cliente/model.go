package cliente

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound é retornado quando o cliente não existe.
	ErrNotFound = errors.New("cliente não encontrado")
	// ErrCamposObrigatorios indica cadastro com campo vazio.
	ErrCamposObrigatorios = errors.New("complete todos os campos")
)

// Cliente representa o órgão/servidor atendido pelos chamados.
// O campo NomeEmpresa é a fonte de verdade do nome exibido; os chamados
// guardam uma cópia desnormalizada que é sincronizada a cada edição.
// A tag "endereço" preserva o nome de campo usado nos dados legados.
type Cliente struct {
	ID          uuid.UUID `json:"id"`
	NomeEmpresa string    `json:"nomeEmpresa"`
	CNPJ        string    `json:"cnpj"`
	Endereco    string    `json:"endereço"`
	CriadoEm    time.Time `json:"criadoEm"`
}

// CreateInput agrupa campos de cadastro.
type CreateInput struct {
	NomeEmpresa string
	CNPJ        string
	Endereco    string
}

// UpdateInput agrupa campos de edição.
type UpdateInput struct {
	ID          uuid.UUID
	NomeEmpresa string
	CNPJ        string
	Endereco    string
}

// UpdateResult informa o resultado da edição sincronizada.
type UpdateResult struct {
	Cliente             *Cliente `json:"cliente"`
	ChamadosAtualizados int64    `json:"chamadosAtualizados"`
}
