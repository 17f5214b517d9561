package setor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prefeituradigital/chamados/internal/db"
)

// Repository provê acesso às tabelas de secretarias e departamentos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSetores devolve todas as secretarias com seus departamentos.
func (r *Repository) ListSetores(ctx context.Context) ([]Setor, error) {
	const query = `
        SELECT s.id, s.nome, s.criada_em,
               d.id, d.secretaria_id, d.nome, d.criado_em
        FROM secretarias s
        LEFT JOIN departamentos d ON d.secretaria_id = s.id
        ORDER BY s.nome ASC, d.nome ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		setores []Setor
		index   = map[uuid.UUID]int{}
	)

	for rows.Next() {
		var (
			sec     Secretaria
			depID   *uuid.UUID
			depSec  *uuid.UUID
			depNome *string
			depEm   *time.Time
		)
		if err := rows.Scan(&sec.ID, &sec.Nome, &sec.CriadaEm, &depID, &depSec, &depNome, &depEm); err != nil {
			return nil, err
		}

		pos, ok := index[sec.ID]
		if !ok {
			setores = append(setores, Setor{Secretaria: sec, Departamentos: []Departamento{}})
			pos = len(setores) - 1
			index[sec.ID] = pos
		}

		if depID != nil {
			setores[pos].Departamentos = append(setores[pos].Departamentos, Departamento{
				ID:           *depID,
				SecretariaID: *depSec,
				Nome:         *depNome,
				CriadoEm:     *depEm,
			})
		}
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return setores, nil
}

// GetSecretaria busca secretaria pelo identificador.
func (r *Repository) GetSecretaria(ctx context.Context, id uuid.UUID) (*Secretaria, error) {
	const query = `SELECT id, nome, criada_em FROM secretarias WHERE id = $1`

	var sec Secretaria
	err := r.pool.QueryRow(ctx, query, id).Scan(&sec.ID, &sec.Nome, &sec.CriadaEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sec, nil
}

// GetDepartamento busca departamento pelo identificador.
func (r *Repository) GetDepartamento(ctx context.Context, id uuid.UUID) (*Departamento, error) {
	const query = `SELECT id, secretaria_id, nome, criado_em FROM departamentos WHERE id = $1`

	var dep Departamento
	err := r.pool.QueryRow(ctx, query, id).Scan(&dep.ID, &dep.SecretariaID, &dep.Nome, &dep.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDepartamentoNotFound
		}
		return nil, err
	}
	return &dep, nil
}

// CreateSecretaria cria a secretaria e os departamentos iniciais em uma
// única transação: ou o setor inteiro entra, ou nada entra.
func (r *Repository) CreateSecretaria(ctx context.Context, nome string, departamentos []string) (*Setor, error) {
	var result Setor

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
            INSERT INTO secretarias (nome)
            VALUES ($1)
            RETURNING id, nome, criada_em
        `, strings.TrimSpace(nome)).Scan(&result.ID, &result.Nome, &result.CriadaEm)
		if err != nil {
			return err
		}

		result.Departamentos = []Departamento{}
		for _, depNome := range departamentos {
			var dep Departamento
			err := tx.QueryRow(ctx, `
                INSERT INTO departamentos (secretaria_id, nome)
                VALUES ($1, $2)
                RETURNING id, secretaria_id, nome, criado_em
            `, result.ID, strings.TrimSpace(depNome)).Scan(&dep.ID, &dep.SecretariaID, &dep.Nome, &dep.CriadoEm)
			if err != nil {
				return err
			}
			result.Departamentos = append(result.Departamentos, dep)
		}

		return nil
	})
	if err != nil {
		return nil, translateUnique(err)
	}

	return &result, nil
}

// RenameSecretaria altera o nome da secretaria. Os departamentos referenciam
// a dona por id, então todos observam o novo nome atomicamente.
func (r *Repository) RenameSecretaria(ctx context.Context, id uuid.UUID, novoNome string) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE secretarias SET nome = $2 WHERE id = $1
    `, id, strings.TrimSpace(novoNome))
	if err != nil {
		return translateUnique(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSecretaria remove a secretaria e todos os seus departamentos em uma
// única transação (tudo ou nada).
func (r *Repository) DeleteSecretaria(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM departamentos WHERE secretaria_id = $1`, id); err != nil {
			return err
		}

		cmd, err := tx.Exec(ctx, `DELETE FROM secretarias WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddDepartamento insere um departamento na secretaria.
func (r *Repository) AddDepartamento(ctx context.Context, secretariaID uuid.UUID, nome string) (*Departamento, error) {
	var dep Departamento
	err := r.pool.QueryRow(ctx, `
        INSERT INTO departamentos (secretaria_id, nome)
        VALUES ($1, $2)
        RETURNING id, secretaria_id, nome, criado_em
    `, secretariaID, strings.TrimSpace(nome)).Scan(&dep.ID, &dep.SecretariaID, &dep.Nome, &dep.CriadoEm)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, ErrNomeEmUso
			case "23503":
				return nil, ErrNotFound
			}
		}
		return nil, err
	}
	return &dep, nil
}

// RenameDepartamento altera o nome de um único departamento.
func (r *Repository) RenameDepartamento(ctx context.Context, id uuid.UUID, novoNome string) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE departamentos SET nome = $2 WHERE id = $1
    `, id, strings.TrimSpace(novoNome))
	if err != nil {
		return translateUnique(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrDepartamentoNotFound
	}
	return nil
}

// DeleteDepartamento remove um único departamento.
func (r *Repository) DeleteDepartamento(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM departamentos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDepartamentoNotFound
	}
	return nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNomeEmUso
	}
	return err
}
