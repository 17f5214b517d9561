package cliente

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prefeituradigital/chamados/internal/db"
)

// Repository provê acesso à tabela de clientes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clienteColumns = `id, nome_empresa, cnpj, endereco, criado_em`

// Create insere um novo cliente.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Cliente, error) {
	const query = `
        INSERT INTO clientes (nome_empresa, cnpj, endereco)
        VALUES ($1, $2, $3)
        RETURNING ` + clienteColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.NomeEmpresa),
		strings.TrimSpace(input.CNPJ),
		strings.TrimSpace(input.Endereco),
	)
	return scanCliente(row)
}

// GetByID busca cliente pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Cliente, error) {
	const query = `SELECT ` + clienteColumns + ` FROM clientes WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanCliente(row)
}

// List devolve todos os clientes por ordem alfabética.
func (r *Repository) List(ctx context.Context) ([]Cliente, error) {
	const query = `SELECT ` + clienteColumns + ` FROM clientes ORDER BY nome_empresa ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clientes []Cliente
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, err
		}
		clientes = append(clientes, *c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return clientes, nil
}

// UpdateComPropagacao edita o cliente e sincroniza a cópia desnormalizada
// do nome em todos os chamados vinculados, dentro de uma única transação.
// Falha no commit não deixa nenhuma escrita aplicada: nunca existe janela
// em que o cliente mostra o nome novo e um chamado mostra o antigo.
func (r *Repository) UpdateComPropagacao(ctx context.Context, input UpdateInput) (*UpdateResult, error) {
	var result UpdateResult

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
            UPDATE clientes
            SET nome_empresa = $2, cnpj = $3, endereco = $4
            WHERE id = $1
            RETURNING `+clienteColumns,
			input.ID,
			strings.TrimSpace(input.NomeEmpresa),
			strings.TrimSpace(input.CNPJ),
			strings.TrimSpace(input.Endereco),
		)

		c, err := scanCliente(row)
		if err != nil {
			return err
		}
		result.Cliente = c

		// O id do cliente nos chamados nunca é tocado; apenas o nome copiado.
		cmd, err := tx.Exec(ctx, `
            UPDATE chamados
            SET cliente = $2
            WHERE cliente_id = $1
        `, input.ID, c.NomeEmpresa)
		if err != nil {
			return err
		}
		result.ChamadosAtualizados = cmd.RowsAffected()

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func scanCliente(row pgx.Row) (*Cliente, error) {
	var c Cliente
	if err := row.Scan(&c.ID, &c.NomeEmpresa, &c.CNPJ, &c.Endereco, &c.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
