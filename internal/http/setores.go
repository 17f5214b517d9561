package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prefeituradigital/chamados/internal/setor"
)

// ListSetores devolve as secretarias agrupadas com seus departamentos.
func (h *Handler) ListSetores(w http.ResponseWriter, r *http.Request) {
	setores, err := h.setores.ListSetores(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar setores", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"setores": setores})
}

// CreateSecretaria cadastra a secretaria e os departamentos iniciais.
func (h *Handler) CreateSecretaria(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome          string   `json:"nome"`
		Departamentos []string `json:"departamentos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	s, err := h.setores.CreateSecretaria(r.Context(), payload.Nome, payload.Departamentos)
	if err != nil {
		writeSetorError(w, err, "não foi possível cadastrar o setor")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"setor": s})
}

// RenameSecretaria altera o nome da secretaria.
func (h *Handler) RenameSecretaria(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Nome string `json:"nome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	sec, err := h.setores.RenameSecretaria(r.Context(), id, payload.Nome)
	if err != nil {
		writeSetorError(w, err, "não foi possível renomear a secretaria")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"secretaria": sec})
}

// DeleteSecretaria remove a secretaria e todos os seus departamentos.
func (h *Handler) DeleteSecretaria(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.setores.DeleteSecretaria(r.Context(), id); err != nil {
		writeSetorError(w, err, "não foi possível remover a secretaria")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// AddDepartamento acrescenta um departamento à secretaria.
func (h *Handler) AddDepartamento(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Nome string `json:"nome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	dep, err := h.setores.AddDepartamento(r.Context(), id, payload.Nome)
	if err != nil {
		writeSetorError(w, err, "não foi possível cadastrar o departamento")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"departamento": dep})
}

// RenameDepartamento altera o nome de um departamento.
func (h *Handler) RenameDepartamento(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Nome string `json:"nome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	dep, err := h.setores.RenameDepartamento(r.Context(), id, payload.Nome)
	if err != nil {
		writeSetorError(w, err, "não foi possível renomear o departamento")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"departamento": dep})
}

// DeleteDepartamento remove um departamento.
func (h *Handler) DeleteDepartamento(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.setores.DeleteDepartamento(r.Context(), id); err != nil {
		writeSetorError(w, err, "não foi possível remover o departamento")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeSetorError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, setor.ErrNomeObrigatorio):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "nome obrigatório", nil)
	case errors.Is(err, setor.ErrNomeEmUso):
		WriteError(w, http.StatusConflict, "VALIDATION", "nome já cadastrado", nil)
	case errors.Is(err, setor.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "secretaria não encontrada", nil)
	case errors.Is(err, setor.ErrDepartamentoNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "departamento não encontrado", nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", fallback, nil)
	}
}
