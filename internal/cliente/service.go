package cliente

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type repository interface {
	Create(ctx context.Context, input CreateInput) (*Cliente, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Cliente, error)
	List(ctx context.Context) ([]Cliente, error)
	UpdateComPropagacao(ctx context.Context, input UpdateInput) (*UpdateResult, error)
}

// Service reúne regras de negócio de clientes.
type Service struct {
	repo repository
}

// NewService cria uma nova instância do serviço.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Create cadastra um novo cliente. Todos os campos são obrigatórios.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Cliente, error) {
	input.NomeEmpresa = strings.TrimSpace(input.NomeEmpresa)
	input.CNPJ = strings.TrimSpace(input.CNPJ)
	input.Endereco = strings.TrimSpace(input.Endereco)

	if input.NomeEmpresa == "" || input.CNPJ == "" || input.Endereco == "" {
		return nil, ErrCamposObrigatorios
	}

	return s.repo.Create(ctx, input)
}

// Get recupera um cliente.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Cliente, error) {
	return s.repo.GetByID(ctx, id)
}

// List devolve todos os clientes.
func (s *Service) List(ctx context.Context) ([]Cliente, error) {
	return s.repo.List(ctx)
}

// Update edita o cliente e propaga o novo nome para os chamados que o
// referenciam. Cliente e chamados mudam juntos ou não mudam.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*UpdateResult, error) {
	input.NomeEmpresa = strings.TrimSpace(input.NomeEmpresa)
	input.CNPJ = strings.TrimSpace(input.CNPJ)
	input.Endereco = strings.TrimSpace(input.Endereco)

	if input.NomeEmpresa == "" || input.CNPJ == "" || input.Endereco == "" {
		return nil, ErrCamposObrigatorios
	}

	return s.repo.UpdateComPropagacao(ctx, input)
}
