package usuario

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso às tabelas de usuários e sessões.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const usuarioColumns = `id, nome, email, senha_hash, avatar_url, adm, secretaria, departamento, criado_em, atualizado_em`

// Create insere um novo usuário.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Usuario, error) {
	const query = `
        INSERT INTO usuarios (nome, email, senha_hash, secretaria, departamento)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + usuarioColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Nome),
		strings.ToLower(strings.TrimSpace(input.Email)),
		input.SenhaHash,
		strings.TrimSpace(input.Secretaria),
		strings.TrimSpace(input.Departamento),
	)

	user, err := scanUsuario(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation (email)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailEmUso
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail busca usuário pelo e-mail normalizado.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE email = $1`
	row := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)))
	return scanUsuario(row)
}

// GetByID busca usuário pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanUsuario(row)
}

// UpdateProfile altera nome e avatar do usuário.
func (r *Repository) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*Usuario, error) {
	query := `
        UPDATE usuarios
        SET nome = $2, atualizado_em = now()`
	args := []any{input.ID, strings.TrimSpace(input.Nome)}

	if input.AvatarURL != nil {
		query += `, avatar_url = $3`
		args = append(args, *input.AvatarURL)
	} else if input.ClearAvatar {
		query += `, avatar_url = NULL`
	}

	query += `
        WHERE id = $1
        RETURNING ` + usuarioColumns

	row := r.pool.QueryRow(ctx, query, args...)
	return scanUsuario(row)
}

// UpdateAvatar troca somente a foto de perfil; nome e demais campos não
// são tocados. url nil remove o avatar.
func (r *Repository) UpdateAvatar(ctx context.Context, id uuid.UUID, url *string) (*Usuario, error) {
	const query = `
        UPDATE usuarios
        SET avatar_url = $2, atualizado_em = now()
        WHERE id = $1
        RETURNING ` + usuarioColumns

	row := r.pool.QueryRow(ctx, query, id, url)
	return scanUsuario(row)
}

// CreateSessao registra o hash de um refresh token emitido.
func (r *Repository) CreateSessao(ctx context.Context, usuarioID uuid.UUID, tokenHash string, expiracao time.Time) (*Sessao, error) {
	const query = `
        INSERT INTO sessoes (usuario_id, token_hash, expiracao)
        VALUES ($1, $2, $3)
        RETURNING id, usuario_id, token_hash, expiracao, revogada, criada_em
    `

	var s Sessao
	err := r.pool.QueryRow(ctx, query, usuarioID, tokenHash, expiracao).
		Scan(&s.ID, &s.UsuarioID, &s.TokenHash, &s.Expiracao, &s.Revogada, &s.CriadaEm)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSessaoByHash localiza sessão pelo hash do refresh token.
func (r *Repository) GetSessaoByHash(ctx context.Context, tokenHash string) (*Sessao, error) {
	const query = `
        SELECT id, usuario_id, token_hash, expiracao, revogada, criada_em
        FROM sessoes
        WHERE token_hash = $1
    `

	var s Sessao
	err := r.pool.QueryRow(ctx, query, tokenHash).
		Scan(&s.ID, &s.UsuarioID, &s.TokenHash, &s.Expiracao, &s.Revogada, &s.CriadaEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// RevokeSessao marca a sessão como revogada.
func (r *Repository) RevokeSessao(ctx context.Context, tokenHash string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE sessoes SET revogada = true WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RevokeOtherSessoes revoga todas as sessões do usuário exceto a atual.
func (r *Repository) RevokeOtherSessoes(ctx context.Context, usuarioID uuid.UUID, keepHash string) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE sessoes
        SET revogada = true
        WHERE usuario_id = $1 AND token_hash <> $2 AND NOT revogada
    `, usuarioID, keepHash)
	return err
}

func scanUsuario(row pgx.Row) (*Usuario, error) {
	var u Usuario
	err := row.Scan(
		&u.ID,
		&u.Nome,
		&u.Email,
		&u.SenhaHash,
		&u.AvatarURL,
		&u.Admin,
		&u.Secretaria,
		&u.Departamento,
		&u.CriadoEm,
		&u.AtualizadoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
