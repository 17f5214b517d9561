package setor

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNomeObrigatorio indica nome vazio após trim.
	ErrNomeObrigatorio = errors.New("nome obrigatório")
)

type repository interface {
	ListSetores(ctx context.Context) ([]Setor, error)
	GetSecretaria(ctx context.Context, id uuid.UUID) (*Secretaria, error)
	GetDepartamento(ctx context.Context, id uuid.UUID) (*Departamento, error)
	CreateSecretaria(ctx context.Context, nome string, departamentos []string) (*Setor, error)
	RenameSecretaria(ctx context.Context, id uuid.UUID, novoNome string) error
	DeleteSecretaria(ctx context.Context, id uuid.UUID) error
	AddDepartamento(ctx context.Context, secretariaID uuid.UUID, nome string) (*Departamento, error)
	RenameDepartamento(ctx context.Context, id uuid.UUID, novoNome string) error
	DeleteDepartamento(ctx context.Context, id uuid.UUID) error
}

// Service reúne regras de negócio da estrutura organizacional.
type Service struct {
	repo repository
}

// NewService cria uma nova instância do serviço.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// ListSetores devolve secretarias agrupadas com seus departamentos.
func (s *Service) ListSetores(ctx context.Context) ([]Setor, error) {
	return s.repo.ListSetores(ctx)
}

// CreateSecretaria cadastra a secretaria com seus departamentos iniciais.
// A criação é atômica: falha em qualquer departamento desfaz tudo.
func (s *Service) CreateSecretaria(ctx context.Context, nome string, departamentos []string) (*Setor, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, ErrNomeObrigatorio
	}

	cleaned := make([]string, 0, len(departamentos))
	for _, dep := range departamentos {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			return nil, ErrNomeObrigatorio
		}
		cleaned = append(cleaned, dep)
	}

	return s.repo.CreateSecretaria(ctx, nome, cleaned)
}

// RenameSecretaria altera o nome da secretaria. Renomear para o mesmo nome
// é um no-op: nenhuma escrita acontece e nenhum erro é devolvido.
func (s *Service) RenameSecretaria(ctx context.Context, id uuid.UUID, novoNome string) (*Secretaria, error) {
	novoNome = strings.TrimSpace(novoNome)
	if novoNome == "" {
		return nil, ErrNomeObrigatorio
	}

	atual, err := s.repo.GetSecretaria(ctx, id)
	if err != nil {
		return nil, err
	}

	if atual.Nome == novoNome {
		return atual, nil
	}

	if err := s.repo.RenameSecretaria(ctx, id, novoNome); err != nil {
		return nil, err
	}

	atual.Nome = novoNome
	return atual, nil
}

// DeleteSecretaria remove a secretaria e todos os seus departamentos.
func (s *Service) DeleteSecretaria(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSecretaria(ctx, id)
}

// AddDepartamento acrescenta um departamento à secretaria.
func (s *Service) AddDepartamento(ctx context.Context, secretariaID uuid.UUID, nome string) (*Departamento, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, ErrNomeObrigatorio
	}

	if _, err := s.repo.GetSecretaria(ctx, secretariaID); err != nil {
		return nil, err
	}

	return s.repo.AddDepartamento(ctx, secretariaID, nome)
}

// RenameDepartamento altera o nome de um único departamento.
func (s *Service) RenameDepartamento(ctx context.Context, id uuid.UUID, novoNome string) (*Departamento, error) {
	novoNome = strings.TrimSpace(novoNome)
	if novoNome == "" {
		return nil, ErrNomeObrigatorio
	}

	atual, err := s.repo.GetDepartamento(ctx, id)
	if err != nil {
		return nil, err
	}

	if atual.Nome == novoNome {
		return atual, nil
	}

	if err := s.repo.RenameDepartamento(ctx, id, novoNome); err != nil {
		return nil, err
	}

	atual.Nome = novoNome
	return atual, nil
}

// DeleteDepartamento remove um único departamento.
func (s *Service) DeleteDepartamento(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDepartamento(ctx, id)
}
