package chamado

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type repository interface {
	Create(ctx context.Context, input CreateInput) (*Chamado, error)
	Get(ctx context.Context, id uuid.UUID) (*Chamado, error)
	List(ctx context.Context, filter Filter) ([]Chamado, error)
	Update(ctx context.Context, input UpdateInput) (*Chamado, error)
}

// Service reúne regras de negócio dos chamados.
type Service struct {
	repo repository
}

// NewService cria uma nova instância do serviço.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Create abre um novo chamado em nome do usuário autenticado. A secretaria
// e o departamento do usuário são gravados no chamado como atribuição fixa.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Chamado, error) {
	input.Assunto = strings.TrimSpace(input.Assunto)
	if input.Assunto == "" {
		return nil, errors.New("assunto obrigatório")
	}
	if input.ClienteID == uuid.Nil {
		return nil, errors.New("cliente obrigatório")
	}

	return s.repo.Create(ctx, input)
}

// Get recupera um chamado.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Chamado, error) {
	return s.repo.Get(ctx, id)
}

// List lista chamados dentro do filtro informado.
func (s *Service) List(ctx context.Context, filter Filter) ([]Chamado, error) {
	if len(filter.Status) > 0 {
		normalized := make([]string, 0, len(filter.Status))
		for _, status := range filter.Status {
			status = NormalizeStatus(status)
			if IsValidStatus(status) {
				normalized = append(normalized, status)
			}
		}
		filter.Status = normalized
	}
	return s.repo.List(ctx, filter)
}

// Update altera status/assunto/complemento durante a triagem e, quando
// informado, revincula o chamado a outro cliente.
func (s *Service) Update(ctx context.Context, id uuid.UUID, status, assunto, complemento *string, clienteID *uuid.UUID) (*Chamado, error) {
	update := UpdateInput{ID: id, Assunto: assunto, Complemento: complemento}

	if clienteID != nil {
		if *clienteID == uuid.Nil {
			return nil, errors.New("cliente obrigatório")
		}
		update.ClienteID = clienteID
	}

	if status != nil {
		normalized := NormalizeStatus(*status)
		if !IsValidStatus(normalized) {
			return nil, ErrInvalidStatus
		}
		update.Status = &normalized

		if normalized == StatusAtendido {
			now := time.Now().UTC()
			update.AtendidoEm = &now
		}
	}

	return s.repo.Update(ctx, update)
}
