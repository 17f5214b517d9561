package chamado

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela de chamados.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const chamadoColumns = `id, cliente, cliente_id, assunto, status, complemento, usuario_id, usuario_nome, secretaria, departamento, criado_em, atendido_em`

// Create insere um novo chamado. O nome do cliente é copiado da tabela de
// clientes no mesmo comando, garantindo que a cópia nasce consistente.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Chamado, error) {
	const query = `
        INSERT INTO chamados (cliente, cliente_id, assunto, status, complemento, usuario_id, usuario_nome, secretaria, departamento)
        SELECT c.nome_empresa, c.id, $2, $3, $4, $5, $6, $7, $8
        FROM clientes c
        WHERE c.id = $1
        RETURNING ` + chamadoColumns

	row := r.pool.QueryRow(ctx, query,
		input.ClienteID,
		strings.TrimSpace(input.Assunto),
		StatusAberto,
		strings.TrimSpace(input.Complemento),
		input.UsuarioID,
		strings.TrimSpace(input.UsuarioNome),
		strings.TrimSpace(input.Secretaria),
		strings.TrimSpace(input.Departamento),
	)

	c, err := scanChamado(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// INSERT..SELECT sem linha: o cliente informado não existe.
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Get busca um chamado específico.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Chamado, error) {
	const query = `SELECT ` + chamadoColumns + ` FROM chamados WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanChamado(row)
}

// List lista chamados aplicando filtros simples.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Chamado, error) {
	base := `SELECT ` + chamadoColumns + ` FROM chamados`

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if len(filter.Status) > 0 {
		normalized := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			normalized[i] = strings.ToLower(strings.TrimSpace(status))
		}
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", idx))
		args = append(args, normalized)
		idx++
	}

	if filter.ClienteID != nil {
		clauses = append(clauses, fmt.Sprintf("cliente_id = $%d", idx))
		args = append(args, *filter.ClienteID)
		idx++
	}

	if filter.UsuarioID != nil {
		clauses = append(clauses, fmt.Sprintf("usuario_id = $%d", idx))
		args = append(args, *filter.UsuarioID)
		idx++
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" ORDER BY criado_em DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chamados []Chamado
	for rows.Next() {
		c, err := scanChamado(rows)
		if err != nil {
			return nil, err
		}
		chamados = append(chamados, *c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return chamados, nil
}

// Update atualiza campos do chamado.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Chamado, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", idx))
		args = append(args, strings.ToLower(strings.TrimSpace(*input.Status)))
		idx++
	}
	if input.Assunto != nil {
		setParts = append(setParts, fmt.Sprintf("assunto = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Assunto))
		idx++
	}
	if input.Complemento != nil {
		setParts = append(setParts, fmt.Sprintf("complemento = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Complemento))
		idx++
	}
	if input.AtendidoEm != nil {
		setParts = append(setParts, fmt.Sprintf("atendido_em = $%d", idx))
		args = append(args, *input.AtendidoEm)
		idx++
	} else if input.Status != nil {
		// quando reabrir, limpa atendido_em
		setParts = append(setParts, "atendido_em = NULL")
	}

	if input.ClienteID != nil {
		// revincular copia o nome do novo cliente no mesmo comando
		setParts = append(setParts, "cliente_id = c.id", "cliente = c.nome_empresa")
		args = append(args, input.ID, *input.ClienteID)
		query := fmt.Sprintf(`
        UPDATE chamados
        SET %s
        FROM clientes c
        WHERE chamados.id = $%d AND c.id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), idx, idx+1, qualifiedChamadoColumns())

		row := r.pool.QueryRow(ctx, query, args...)
		return scanChamado(row)
	}

	if len(setParts) == 0 {
		return r.Get(ctx, input.ID)
	}

	args = append(args, input.ID)
	query := fmt.Sprintf(`
        UPDATE chamados
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), idx, chamadoColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanChamado(row)
}

func qualifiedChamadoColumns() string {
	cols := strings.Split(chamadoColumns, ", ")
	for i, col := range cols {
		cols[i] = "chamados." + col
	}
	return strings.Join(cols, ", ")
}

func scanChamado(row pgx.Row) (*Chamado, error) {
	var c Chamado
	err := row.Scan(
		&c.ID,
		&c.Cliente,
		&c.ClienteID,
		&c.Assunto,
		&c.Status,
		&c.Complemento,
		&c.UsuarioID,
		&c.UsuarioNome,
		&c.Secretaria,
		&c.Departamento,
		&c.CriadoEm,
		&c.AtendidoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
