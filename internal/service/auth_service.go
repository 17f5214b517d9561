package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/prefeituradigital/chamados/internal/auth"
	"github.com/prefeituradigital/chamados/internal/usuario"
	"github.com/prefeituradigital/chamados/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrEmailEmUso indica cadastro com e-mail duplicado.
	ErrEmailEmUso = errors.New("e-mail já cadastrado")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

type authRepository interface {
	Create(ctx context.Context, input usuario.CreateInput) (*usuario.Usuario, error)
	GetByEmail(ctx context.Context, email string) (*usuario.Usuario, error)
	GetByID(ctx context.Context, id uuid.UUID) (*usuario.Usuario, error)
	UpdateProfile(ctx context.Context, input usuario.UpdateProfileInput) (*usuario.Usuario, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, url *string) (*usuario.Usuario, error)
	CreateSessao(ctx context.Context, usuarioID uuid.UUID, tokenHash string, expiracao time.Time) (*usuario.Sessao, error)
	GetSessaoByHash(ctx context.Context, tokenHash string) (*usuario.Sessao, error)
	RevokeSessao(ctx context.Context, tokenHash string) error
	RevokeOtherSessoes(ctx context.Context, usuarioID uuid.UUID, keepHash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e sessões.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(repo authRepository, redisClient redisCommander, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Usuario       *usuario.Usuario
	RefreshExpiry time.Time
}

// RegisterInput agrupa campos do cadastro de conta.
type RegisterInput struct {
	Nome         string
	Email        string
	Senha        string
	Secretaria   string
	Departamento string
}

// Login autentica por e-mail e senha. Qualquer falha de credencial devolve
// ErrInvalidCredentials sem detalhar a causa; nenhuma sessão é gravada.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, usuario.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// Register cria a conta e já devolve uma sessão autenticada.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Senha); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Secretaria, "secretaria"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Departamento, "departamento"); err != nil {
		return nil, err
	}

	hash, err := auth.Hash(input.Senha)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, usuario.CreateInput{
		Nome:         input.Nome,
		Email:        input.Email,
		SenhaHash:    hash,
		Secretaria:   input.Secretaria,
		Departamento: input.Departamento,
	})
	if err != nil {
		if errors.Is(err, usuario.ErrEmailEmUso) {
			return nil, ErrEmailEmUso
		}
		return nil, err
	}

	return s.issueSession(ctx, user)
}

// Refresh troca um refresh token válido por uma nova sessão, revogando a
// anterior (rotação).
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	sessao, err := s.repo.GetSessaoByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, usuario.ErrSessionNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if sessao.Revogada || time.Now().UTC().After(sessao.Expiracao) {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.SessionRedisKey(hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	user, err := s.repo.GetByID(ctx, sessao.UsuarioID)
	if err != nil {
		return nil, err
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	// Revoga o token anterior (DB + Redis)
	if err := s.repo.RevokeSessao(ctx, hash); err != nil && !errors.Is(err, usuario.ErrSessionNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeSessao(ctx, hash); err != nil && !errors.Is(err, usuario.ErrSessionNotFound) {
		return err
	}
	redisKey := auth.SessionRedisKey(hash)
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// Me devolve o perfil do subject autenticado.
func (s *AuthService) Me(ctx context.Context, subject uuid.UUID) (*usuario.Usuario, error) {
	return s.repo.GetByID(ctx, subject)
}

// UpdateProfile altera nome e avatar do usuário.
func (s *AuthService) UpdateProfile(ctx context.Context, input usuario.UpdateProfileInput) (*usuario.Usuario, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, input)
}

// UpdateAvatar grava a URL da foto sem tocar no restante do perfil. O nome
// no token pode estar defasado em relação ao banco, então ele nunca é
// reaproveitado aqui.
func (s *AuthService) UpdateAvatar(ctx context.Context, subject uuid.UUID, url *string) (*usuario.Usuario, error) {
	return s.repo.UpdateAvatar(ctx, subject, url)
}

func (s *AuthService) issueSession(ctx context.Context, user *usuario.Usuario) (*LoginResult, error) {
	token, _, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		Subject:      user.ID.String(),
		Nome:         user.Nome,
		Admin:        user.Admin,
		Secretaria:   user.Secretaria,
		Departamento: user.Departamento,
	})
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if _, err := s.repo.CreateSessao(ctx, user.ID, refreshHash, expires); err != nil {
		return nil, err
	}
	if err := s.repo.RevokeOtherSessoes(ctx, user.ID, refreshHash); err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, auth.SessionRedisKey(refreshHash), "active", time.Until(expires)).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Usuario:       user,
		RefreshExpiry: expires,
	}, nil
}
