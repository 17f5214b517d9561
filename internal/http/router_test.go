package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/prefeituradigital/chamados/internal/auth"
	"github.com/prefeituradigital/chamados/internal/chamado"
	"github.com/prefeituradigital/chamados/internal/cliente"
	"github.com/prefeituradigital/chamados/internal/config"
	"github.com/prefeituradigital/chamados/internal/service"
	"github.com/prefeituradigital/chamados/internal/setor"
	"github.com/prefeituradigital/chamados/internal/storage"
	"github.com/prefeituradigital/chamados/internal/usuario"
)

const testSecret = "segredo-de-teste-com-32-caracteres!"

type noopAuthRepo struct{}

func (noopAuthRepo) Create(ctx context.Context, input usuario.CreateInput) (*usuario.Usuario, error) {
	return nil, usuario.ErrEmailEmUso
}

func (noopAuthRepo) GetByEmail(ctx context.Context, email string) (*usuario.Usuario, error) {
	return nil, usuario.ErrNotFound
}

func (noopAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*usuario.Usuario, error) {
	return nil, usuario.ErrNotFound
}

func (noopAuthRepo) UpdateProfile(ctx context.Context, input usuario.UpdateProfileInput) (*usuario.Usuario, error) {
	return nil, usuario.ErrNotFound
}

func (noopAuthRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, url *string) (*usuario.Usuario, error) {
	return nil, usuario.ErrNotFound
}

func (noopAuthRepo) CreateSessao(ctx context.Context, usuarioID uuid.UUID, tokenHash string, expiracao time.Time) (*usuario.Sessao, error) {
	return &usuario.Sessao{ID: uuid.New(), UsuarioID: usuarioID, TokenHash: tokenHash, Expiracao: expiracao}, nil
}

func (noopAuthRepo) GetSessaoByHash(ctx context.Context, tokenHash string) (*usuario.Sessao, error) {
	return nil, usuario.ErrSessionNotFound
}

func (noopAuthRepo) RevokeSessao(ctx context.Context, tokenHash string) error { return nil }

func (noopAuthRepo) RevokeOtherSessoes(ctx context.Context, usuarioID uuid.UUID, keepHash string) error {
	return nil
}

type noopRedis struct{}

func (noopRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (noopRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	cmd.SetErr(redis.Nil)
	return cmd
}

func (noopRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(0)
	return cmd
}

// perfilAuthRepo guarda um único usuário, refletindo o estado do banco que
// pode estar à frente do que o token carrega.
type perfilAuthRepo struct {
	noopAuthRepo
	user *usuario.Usuario
}

func (s *perfilAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*usuario.Usuario, error) {
	if s.user == nil || s.user.ID != id {
		return nil, usuario.ErrNotFound
	}
	return s.user, nil
}

func (s *perfilAuthRepo) UpdateProfile(ctx context.Context, input usuario.UpdateProfileInput) (*usuario.Usuario, error) {
	if s.user == nil || s.user.ID != input.ID {
		return nil, usuario.ErrNotFound
	}
	s.user.Nome = input.Nome
	if input.AvatarURL != nil {
		s.user.AvatarURL = input.AvatarURL
	} else if input.ClearAvatar {
		s.user.AvatarURL = nil
	}
	return s.user, nil
}

func (s *perfilAuthRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, url *string) (*usuario.Usuario, error) {
	if s.user == nil || s.user.ID != id {
		return nil, usuario.ErrNotFound
	}
	s.user.AvatarURL = url
	return s.user, nil
}

// failingAuthRepo simula indisponibilidade do banco.
type failingAuthRepo struct {
	noopAuthRepo
}

func (failingAuthRepo) Create(ctx context.Context, input usuario.CreateInput) (*usuario.Usuario, error) {
	return nil, errors.New("pg: conexão recusada")
}

func (failingAuthRepo) UpdateProfile(ctx context.Context, input usuario.UpdateProfileInput) (*usuario.Usuario, error) {
	return nil, errors.New("pg: conexão recusada")
}

type fakeAvatarStore struct {
	lastContentType string
}

func (f *fakeAvatarStore) SaveAvatar(ctx context.Context, usuarioID string, body []byte, contentType string) (string, error) {
	f.lastContentType = contentType
	return "https://cdn.prefeitura.gov.br/avatars/" + usuarioID + ".png", nil
}

type setorStub struct {
	secretarias map[uuid.UUID]*setor.Secretaria
	renames     int
}

func newSetorStub() *setorStub {
	return &setorStub{secretarias: map[uuid.UUID]*setor.Secretaria{}}
}

func (s *setorStub) ListSetores(ctx context.Context) ([]setor.Setor, error) {
	out := make([]setor.Setor, 0, len(s.secretarias))
	for _, sec := range s.secretarias {
		out = append(out, setor.Setor{Secretaria: *sec})
	}
	return out, nil
}

func (s *setorStub) GetSecretaria(ctx context.Context, id uuid.UUID) (*setor.Secretaria, error) {
	sec, ok := s.secretarias[id]
	if !ok {
		return nil, setor.ErrNotFound
	}
	cp := *sec
	return &cp, nil
}

func (s *setorStub) GetDepartamento(ctx context.Context, id uuid.UUID) (*setor.Departamento, error) {
	return nil, setor.ErrDepartamentoNotFound
}

func (s *setorStub) CreateSecretaria(ctx context.Context, nome string, departamentos []string) (*setor.Setor, error) {
	sec := &setor.Secretaria{ID: uuid.New(), Nome: nome}
	s.secretarias[sec.ID] = sec
	out := &setor.Setor{Secretaria: *sec, Departamentos: []setor.Departamento{}}
	for _, dep := range departamentos {
		out.Departamentos = append(out.Departamentos, setor.Departamento{ID: uuid.New(), SecretariaID: sec.ID, Nome: dep})
	}
	return out, nil
}

func (s *setorStub) RenameSecretaria(ctx context.Context, id uuid.UUID, novoNome string) error {
	sec, ok := s.secretarias[id]
	if !ok {
		return setor.ErrNotFound
	}
	sec.Nome = novoNome
	s.renames++
	return nil
}

func (s *setorStub) DeleteSecretaria(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.secretarias[id]; !ok {
		return setor.ErrNotFound
	}
	delete(s.secretarias, id)
	return nil
}

func (s *setorStub) AddDepartamento(ctx context.Context, secretariaID uuid.UUID, nome string) (*setor.Departamento, error) {
	return &setor.Departamento{ID: uuid.New(), SecretariaID: secretariaID, Nome: nome}, nil
}

func (s *setorStub) RenameDepartamento(ctx context.Context, id uuid.UUID, novoNome string) error {
	return setor.ErrDepartamentoNotFound
}

func (s *setorStub) DeleteDepartamento(ctx context.Context, id uuid.UUID) error {
	return setor.ErrDepartamentoNotFound
}

type clienteStub struct {
	clientes map[uuid.UUID]*cliente.Cliente
}

func newClienteStub() *clienteStub {
	return &clienteStub{clientes: map[uuid.UUID]*cliente.Cliente{}}
}

func (s *clienteStub) Create(ctx context.Context, input cliente.CreateInput) (*cliente.Cliente, error) {
	c := &cliente.Cliente{ID: uuid.New(), NomeEmpresa: input.NomeEmpresa, CNPJ: input.CNPJ, Endereco: input.Endereco}
	s.clientes[c.ID] = c
	return c, nil
}

func (s *clienteStub) GetByID(ctx context.Context, id uuid.UUID) (*cliente.Cliente, error) {
	c, ok := s.clientes[id]
	if !ok {
		return nil, cliente.ErrNotFound
	}
	return c, nil
}

func (s *clienteStub) List(ctx context.Context) ([]cliente.Cliente, error) {
	out := make([]cliente.Cliente, 0, len(s.clientes))
	for _, c := range s.clientes {
		out = append(out, *c)
	}
	return out, nil
}

func (s *clienteStub) UpdateComPropagacao(ctx context.Context, input cliente.UpdateInput) (*cliente.UpdateResult, error) {
	c, ok := s.clientes[input.ID]
	if !ok {
		return nil, cliente.ErrNotFound
	}
	c.NomeEmpresa = input.NomeEmpresa
	c.CNPJ = input.CNPJ
	c.Endereco = input.Endereco
	return &cliente.UpdateResult{Cliente: c}, nil
}

type chamadoStub struct {
	chamados   map[uuid.UUID]*chamado.Chamado
	lastFilter chamado.Filter
	lastCreate chamado.CreateInput
}

func newChamadoStub() *chamadoStub {
	return &chamadoStub{chamados: map[uuid.UUID]*chamado.Chamado{}}
}

func (s *chamadoStub) Create(ctx context.Context, input chamado.CreateInput) (*chamado.Chamado, error) {
	s.lastCreate = input
	c := &chamado.Chamado{
		ID:           uuid.New(),
		Cliente:      "Cliente Teste",
		ClienteID:    input.ClienteID,
		Assunto:      input.Assunto,
		Status:       chamado.StatusAberto,
		Complemento:  input.Complemento,
		UsuarioID:    input.UsuarioID,
		UsuarioNome:  input.UsuarioNome,
		Secretaria:   input.Secretaria,
		Departamento: input.Departamento,
	}
	s.chamados[c.ID] = c
	return c, nil
}

func (s *chamadoStub) Get(ctx context.Context, id uuid.UUID) (*chamado.Chamado, error) {
	c, ok := s.chamados[id]
	if !ok {
		return nil, chamado.ErrNotFound
	}
	return c, nil
}

func (s *chamadoStub) List(ctx context.Context, filter chamado.Filter) ([]chamado.Chamado, error) {
	s.lastFilter = filter
	out := make([]chamado.Chamado, 0, len(s.chamados))
	for _, c := range s.chamados {
		out = append(out, *c)
	}
	return out, nil
}

func (s *chamadoStub) Update(ctx context.Context, input chamado.UpdateInput) (*chamado.Chamado, error) {
	c, ok := s.chamados[input.ID]
	if !ok {
		return nil, chamado.ErrNotFound
	}
	if input.Status != nil {
		c.Status = *input.Status
	}
	if input.Assunto != nil {
		c.Assunto = *input.Assunto
	}
	if input.Complemento != nil {
		c.Complemento = *input.Complemento
	}
	c.AtendidoEm = input.AtendidoEm
	return c, nil
}

type testEnv struct {
	router   http.Handler
	jwt      *auth.JWTManager
	setores  *setorStub
	chamados *chamadoStub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jwtMgr := auth.NewJWTManager(testSecret, 15*time.Minute)
	authSvc := service.NewAuthService(noopAuthRepo{}, noopRedis{}, jwtMgr, time.Hour)

	setores := newSetorStub()
	chamados := newChamadoStub()

	h := NewHandler(
		authSvc,
		setor.NewService(setores),
		cliente.NewService(newClienteStub()),
		chamado.NewService(chamados),
		nil,
	)

	cfg := &config.Config{
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}

	return &testEnv{router: NewRouter(cfg, h), jwt: jwtMgr, setores: setores, chamados: chamados}
}

func (e *testEnv) token(t *testing.T, subject uuid.UUID, admin bool) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(auth.AccessTokenInput{
		Subject:      subject.String(),
		Nome:         "Maria Silva",
		Admin:        admin,
		Secretaria:   "Saúde",
		Departamento: "Farmácia",
	})
	if err != nil {
		t.Fatalf("gerar token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decodificar envelope: %v", err)
	}
	if envelope.Error == nil {
		t.Fatal("envelope sem erro")
	}
	return envelope.Error.Code
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRotasProtegidasExigemToken(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/chamados"},
		{http.MethodGet, "/clientes"},
		{http.MethodGet, "/setores"},
		{http.MethodGet, "/auth/me"},
	}

	for _, p := range paths {
		rec := env.do(t, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d, esperado 401", p.method, p.path, rec.Code)
		}
		if code := errorCode(t, rec); code != "AUTH" {
			t.Fatalf("%s %s: code = %q", p.method, p.path, code)
		}
	}
}

func TestTokenInvalidoRejeitado(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/chamados", "token-que-nao-e-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", rec.Code)
	}
}

func TestRotasAdminNegadasParaComum(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New(), false)

	rec := env.do(t, http.MethodPost, "/setores", token, map[string]any{
		"nome":          "Secretaria de Obras",
		"departamentos": []string{"Pavimentação"},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, esperado 403", rec.Code)
	}
	if code := errorCode(t, rec); code != "FORBIDDEN" {
		t.Fatalf("code = %q", code)
	}

	if len(env.setores.secretarias) != 0 {
		t.Fatal("secretaria não deveria ter sido criada")
	}
}

func TestCreateSecretariaComoAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New(), true)

	rec := env.do(t, http.MethodPost, "/setores", token, map[string]any{
		"nome":          "Secretaria de Obras",
		"departamentos": []string{"Pavimentação", "Iluminação"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, corpo: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Setor setor.Setor `json:"setor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decodificar resposta: %v", err)
	}
	if envelope.Data.Setor.Nome != "Secretaria de Obras" {
		t.Fatalf("nome = %q", envelope.Data.Setor.Nome)
	}
	if len(envelope.Data.Setor.Departamentos) != 2 {
		t.Fatalf("departamentos = %d", len(envelope.Data.Setor.Departamentos))
	}
}

func TestRenameSecretariaComoAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New(), true)

	sec := &setor.Secretaria{ID: uuid.New(), Nome: "Secretaria de Educação"}
	env.setores.secretarias[sec.ID] = sec

	rec := env.do(t, http.MethodPut, "/setores/"+sec.ID.String(), token, map[string]any{
		"nome": "Secretaria de Educação e Cultura",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, corpo: %s", rec.Code, rec.Body.String())
	}

	if env.setores.renames != 1 {
		t.Fatalf("renames = %d", env.setores.renames)
	}
	if sec.Nome != "Secretaria de Educação e Cultura" {
		t.Fatalf("nome = %q", sec.Nome)
	}
}

func TestRenameSecretariaInexistente(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New(), true)

	rec := env.do(t, http.MethodPut, "/setores/"+uuid.NewString(), token, map[string]any{
		"nome": "Qualquer",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, esperado 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "NOT_FOUND" {
		t.Fatalf("code = %q", code)
	}
}

func TestCreateChamadoAtribuicaoVemDoToken(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	token := env.token(t, userID, false)

	rec := env.do(t, http.MethodPost, "/chamados", token, map[string]any{
		"clienteId":   uuid.NewString(),
		"assunto":     "Suporte",
		"complemento": "Impressora sem toner",
		// atribuição enviada no corpo deve ser ignorada
		"secretaria": "Outra",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, corpo: %s", rec.Code, rec.Body.String())
	}

	got := env.chamados.lastCreate
	if got.UsuarioID != userID {
		t.Fatalf("usuarioID = %s", got.UsuarioID)
	}
	if got.UsuarioNome != "Maria Silva" {
		t.Fatalf("usuarioNome = %q", got.UsuarioNome)
	}
	if got.Secretaria != "Saúde" || got.Departamento != "Farmácia" {
		t.Fatalf("atribuição = %q/%q", got.Secretaria, got.Departamento)
	}
}

func TestListChamadosRestringeNaoAdmin(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	token := env.token(t, userID, false)

	rec := env.do(t, http.MethodGet, "/chamados", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if env.chamados.lastFilter.UsuarioID == nil || *env.chamados.lastFilter.UsuarioID != userID {
		t.Fatal("listagem de não-admin deveria filtrar pelo próprio usuário")
	}
}

func TestListChamadosAdminSemFiltro(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New(), true)

	rec := env.do(t, http.MethodGet, "/chamados", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if env.chamados.lastFilter.UsuarioID != nil {
		t.Fatal("admin não deveria ter filtro de usuário forçado")
	}
}

func TestUpdateChamadoSomenteAdmin(t *testing.T) {
	env := newTestEnv(t)

	c := &chamado.Chamado{ID: uuid.New(), Status: chamado.StatusAberto}
	env.chamados.chamados[c.ID] = c

	comum := env.token(t, uuid.New(), false)
	rec := env.do(t, http.MethodPut, "/chamados/"+c.ID.String(), comum, map[string]any{"status": "atendido"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, esperado 403", rec.Code)
	}

	admin := env.token(t, uuid.New(), true)
	rec = env.do(t, http.MethodPut, "/chamados/"+c.ID.String(), admin, map[string]any{"status": "Atendido"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, corpo: %s", rec.Code, rec.Body.String())
	}
	if c.Status != chamado.StatusAtendido {
		t.Fatalf("status = %q", c.Status)
	}
	if c.AtendidoEm == nil {
		t.Fatal("atendidoEm deveria ter sido preenchido")
	}
}

func TestGetChamadoRestritoAoAutor(t *testing.T) {
	env := newTestEnv(t)

	autor := uuid.New()
	c := &chamado.Chamado{ID: uuid.New(), UsuarioID: autor, Status: chamado.StatusAberto}
	env.chamados.chamados[c.ID] = c

	outro := env.token(t, uuid.New(), false)
	rec := env.do(t, http.MethodGet, "/chamados/"+c.ID.String(), outro, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, esperado 403", rec.Code)
	}

	dono := env.token(t, autor, false)
	rec = env.do(t, http.MethodGet, "/chamados/"+c.ID.String(), dono, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

// authRepoDouble espelha o contrato que o serviço de autenticação espera,
// permitindo trocar o repositório por dublês nos testes de perfil.
type authRepoDouble interface {
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

func newPerfilRouter(t *testing.T, repo authRepoDouble, avatars *fakeAvatarStore) (http.Handler, *auth.JWTManager) {
	t.Helper()

	jwtMgr := auth.NewJWTManager(testSecret, 15*time.Minute)
	authSvc := service.NewAuthService(repo, noopRedis{}, jwtMgr, time.Hour)

	var store storage.AvatarStore
	if avatars != nil {
		store = avatars
	}

	h := NewHandler(
		authSvc,
		setor.NewService(newSetorStub()),
		cliente.NewService(newClienteStub()),
		chamado.NewService(newChamadoStub()),
		store,
	)

	cfg := &config.Config{
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}

	return NewRouter(cfg, h), jwtMgr
}

func TestUploadAvatarPreservaNomeRenomeado(t *testing.T) {
	user := &usuario.Usuario{ID: uuid.New(), Nome: "Maria Nova", Email: "maria@prefeitura.gov.br"}
	repo := &perfilAuthRepo{user: user}
	router, jwtMgr := newPerfilRouter(t, repo, &fakeAvatarStore{})

	// token emitido antes da renomeação ainda carrega o nome antigo
	token, _, err := jwtMgr.GenerateAccessToken(auth.AccessTokenInput{
		Subject: user.ID.String(),
		Nome:    "Maria Antiga",
	})
	if err != nil {
		t.Fatalf("gerar token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/perfil/avatar", bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}))
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, corpo: %s", rec.Code, rec.Body.String())
	}
	if user.Nome != "Maria Nova" {
		t.Fatalf("upload de avatar reverteu o nome: %q", user.Nome)
	}
	if user.AvatarURL == nil || !strings.Contains(*user.AvatarURL, user.ID.String()) {
		t.Fatalf("avatarUrl = %v", user.AvatarURL)
	}
}

func TestRegisterFalhaInternaNaoVazaDetalhe(t *testing.T) {
	router, _ := newPerfilRouter(t, failingAuthRepo{}, nil)

	payload, _ := json.Marshal(map[string]any{
		"nome":         "Maria",
		"email":        "maria@prefeitura.gov.br",
		"senha":        "12345678",
		"secretaria":   "Saúde",
		"departamento": "Farmácia",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, esperado 500", rec.Code)
	}
	if code := errorCode(t, rec); code != "INTERNAL" {
		t.Fatalf("code = %q", code)
	}
	if strings.Contains(rec.Body.String(), "conexão recusada") {
		t.Fatal("resposta vazou detalhe do erro interno")
	}
}

func TestRegisterValidacaoContinua400(t *testing.T) {
	router, _ := newPerfilRouter(t, failingAuthRepo{}, nil)

	payload, _ := json.Marshal(map[string]any{
		"nome":         "Maria",
		"email":        "sem-arroba",
		"senha":        "12345678",
		"secretaria":   "Saúde",
		"departamento": "Farmácia",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, esperado 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "VALIDATION" {
		t.Fatalf("code = %q", code)
	}
}

func TestUpdateProfileFalhaInterna(t *testing.T) {
	router, jwtMgr := newPerfilRouter(t, failingAuthRepo{}, nil)

	token, _, err := jwtMgr.GenerateAccessToken(auth.AccessTokenInput{Subject: uuid.NewString(), Nome: "Maria"})
	if err != nil {
		t.Fatalf("gerar token: %v", err)
	}

	payload, _ := json.Marshal(map[string]any{"nome": "Maria Nova"})
	req := httptest.NewRequest(http.MethodPut, "/perfil", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, esperado 500", rec.Code)
	}
	if code := errorCode(t, rec); code != "INTERNAL" {
		t.Fatalf("code = %q", code)
	}
	if strings.Contains(rec.Body.String(), "conexão recusada") {
		t.Fatal("resposta vazou detalhe do erro interno")
	}
}

func TestLoginComCredenciaisInvalidas(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "naoexiste@prefeitura.gov.br",
		"senha": "qualquer-senha",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", rec.Code)
	}
	if code := errorCode(t, rec); code != "AUTH" {
		t.Fatalf("code = %q", code)
	}
}
