package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prefeituradigital/chamados/internal/chamado"
	httpmiddleware "github.com/prefeituradigital/chamados/internal/http/middleware"
)

// ListChamados lista chamados filtrando por status/cliente/autor.
func (h *Handler) ListChamados(w http.ResponseWriter, r *http.Request) {
	var filter chamado.Filter

	if statusParam := strings.TrimSpace(r.URL.Query().Get("status")); statusParam != "" {
		parts := strings.Split(statusParam, ",")
		filter.Status = make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part != "" {
				filter.Status = append(filter.Status, part)
			}
		}
	}

	if clienteIDStr := strings.TrimSpace(r.URL.Query().Get("cliente_id")); clienteIDStr != "" {
		clienteID, err := uuid.Parse(clienteIDStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "cliente_id inválido", nil)
			return
		}
		filter.ClienteID = &clienteID
	}

	// não-administradores enxergam apenas os próprios chamados
	if !httpmiddleware.IsAdmin(r.Context()) {
		subject, err := h.subjectUUID(r)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
			return
		}
		filter.UsuarioID = &subject
	}

	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = v
		}
	}
	if offsetStr := strings.TrimSpace(r.URL.Query().Get("offset")); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = v
		}
	}

	chamados, err := h.chamados.List(r.Context(), filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar chamados", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"chamados": chamados})
}

// CreateChamado abre novo chamado em nome do usuário autenticado. A
// secretaria e o departamento vêm das claims, não do corpo da requisição.
func (h *Handler) CreateChamado(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ClienteID   string `json:"clienteId"`
		Assunto     string `json:"assunto"`
		Complemento string `json:"complemento"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	clienteID, err := uuid.Parse(strings.TrimSpace(payload.ClienteID))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "clienteId inválido", nil)
		return
	}

	subject, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	ctx := r.Context()
	c, err := h.chamados.Create(ctx, chamado.CreateInput{
		ClienteID:    clienteID,
		Assunto:      payload.Assunto,
		Complemento:  payload.Complemento,
		UsuarioID:    subject,
		UsuarioNome:  httpmiddleware.GetNome(ctx),
		Secretaria:   httpmiddleware.GetSecretaria(ctx),
		Departamento: httpmiddleware.GetDepartamento(ctx),
	})
	if err != nil {
		if errors.Is(err, chamado.ErrNotFound) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "cliente não encontrado", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"chamado": c})
}

// GetChamado devolve detalhes do chamado.
func (h *Handler) GetChamado(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	c, err := h.chamados.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, chamado.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar o chamado", nil)
		return
	}

	if !httpmiddleware.IsAdmin(r.Context()) {
		subject, err := h.subjectUUID(r)
		if err != nil || c.UsuarioID != subject {
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito ao autor do chamado", nil)
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{"chamado": c})
}

// UpdateChamado permite à triagem alterar status/assunto/complemento.
func (h *Handler) UpdateChamado(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Status      *string `json:"status"`
		Assunto     *string `json:"assunto"`
		Complemento *string `json:"complemento"`
		ClienteID   *string `json:"clienteId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	var clienteID *uuid.UUID
	if payload.ClienteID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*payload.ClienteID))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "clienteId inválido", nil)
			return
		}
		clienteID = &parsed
	}

	c, err := h.chamados.Update(r.Context(), id, payload.Status, payload.Assunto, payload.Complemento, clienteID)
	if err != nil {
		switch {
		case errors.Is(err, chamado.ErrInvalidStatus):
			WriteError(w, http.StatusBadRequest, "VALIDATION", "status inválido", nil)
		case errors.Is(err, chamado.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível atualizar o chamado", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"chamado": c})
}
