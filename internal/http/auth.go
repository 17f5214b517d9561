package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	httpmiddleware "github.com/prefeituradigital/chamados/internal/http/middleware"
	"github.com/prefeituradigital/chamados/internal/service"
	"github.com/prefeituradigital/chamados/internal/storage"
	"github.com/prefeituradigital/chamados/internal/usuario"
	"github.com/prefeituradigital/chamados/internal/util"
)

const maxAvatarBytes = 2 << 20 // 2 MB

type sessionResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	Usuario      *usuario.Usuario `json:"usuario"`
}

// Login autentica por e-mail e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	result, err := h.auth.Login(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "credenciais inválidas", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível autenticar", nil)
		return
	}

	WriteJSON(w, http.StatusOK, sessionResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Usuario:      result.Usuario,
	})
}

// Register cria uma nova conta de servidor municipal.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome         string `json:"nome"`
		Email        string `json:"email"`
		Senha        string `json:"senha"`
		Secretaria   string `json:"secretaria"`
		Departamento string `json:"departamento"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Nome:         payload.Nome,
		Email:        payload.Email,
		Senha:        payload.Senha,
		Secretaria:   payload.Secretaria,
		Departamento: payload.Departamento,
	})
	if err != nil {
		var vErr *util.ValidationError
		switch {
		case errors.Is(err, service.ErrEmailEmUso):
			WriteError(w, http.StatusConflict, "VALIDATION", "e-mail já cadastrado", nil)
		case errors.As(err, &vErr):
			WriteError(w, http.StatusBadRequest, "VALIDATION", vErr.Error(), nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível concluir o cadastro", nil)
		}
		return
	}

	WriteJSON(w, http.StatusCreated, sessionResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Usuario:      result.Usuario,
	})
}

// Refresh troca o refresh token por uma nova sessão.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	result, err := h.auth.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "sessão expirada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível renovar a sessão", nil)
		return
	}

	WriteJSON(w, http.StatusOK, sessionResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Usuario:      result.Usuario,
	})
}

// Logout revoga o refresh token informado.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.auth.Logout(r.Context(), payload.RefreshToken); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível encerrar a sessão", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Me devolve o perfil do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	user, err := h.auth.Me(r.Context(), subject)
	if err != nil {
		if errors.Is(err, usuario.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar o perfil", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": user})
}

// UpdateProfile altera nome e avatar do usuário autenticado.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	subject, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	var payload struct {
		Nome        string  `json:"nome"`
		AvatarURL   *string `json:"avatarUrl"`
		ClearAvatar bool    `json:"removerAvatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), usuario.UpdateProfileInput{
		ID:          subject,
		Nome:        payload.Nome,
		AvatarURL:   payload.AvatarURL,
		ClearAvatar: payload.ClearAvatar,
	})
	if err != nil {
		var vErr *util.ValidationError
		switch {
		case errors.Is(err, usuario.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
		case errors.As(err, &vErr):
			WriteError(w, http.StatusBadRequest, "VALIDATION", vErr.Error(), nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível atualizar o perfil", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": user})
}

// UploadAvatar recebe a imagem de perfil e grava no bucket configurado.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	subject, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxAvatarBytes+1))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "não foi possível ler a imagem", nil)
		return
	}
	if len(body) == 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "imagem vazia", nil)
		return
	}
	if len(body) > maxAvatarBytes {
		WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION", "imagem excede 2 MB", nil)
		return
	}

	contentType := strings.TrimSpace(r.Header.Get("Content-Type"))
	url, err := h.avatars.SaveAvatar(r.Context(), subject.String(), body, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "upload de avatar indisponível", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	// apenas a foto muda; o nome no banco pode ser mais novo que o do token
	user, err := h.auth.UpdateAvatar(r.Context(), subject, &url)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível salvar o avatar", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"usuario": user})
}

func (h *Handler) subjectUUID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(httpmiddleware.GetSubject(r.Context()))
}
