package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prefeituradigital/chamados/internal/cliente"
)

// ListClientes devolve todos os clientes cadastrados.
func (h *Handler) ListClientes(w http.ResponseWriter, r *http.Request) {
	clientes, err := h.clientes.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar clientes", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"clientes": clientes})
}

// CreateCliente cadastra um novo cliente.
func (h *Handler) CreateCliente(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NomeEmpresa string `json:"nomeEmpresa"`
		CNPJ        string `json:"cnpj"`
		Endereco    string `json:"endereço"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c, err := h.clientes.Create(r.Context(), cliente.CreateInput{
		NomeEmpresa: payload.NomeEmpresa,
		CNPJ:        payload.CNPJ,
		Endereco:    payload.Endereco,
	})
	if err != nil {
		if errors.Is(err, cliente.ErrCamposObrigatorios) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "complete todos os campos", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível cadastrar o cliente", nil)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"cliente": c})
}

// GetCliente devolve um cliente específico.
func (h *Handler) GetCliente(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	c, err := h.clientes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, cliente.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "cliente não encontrado", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar o cliente", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"cliente": c})
}

// UpdateCliente edita o cadastro e sincroniza o nome em todos os chamados
// vinculados na mesma transação.
func (h *Handler) UpdateCliente(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		NomeEmpresa string `json:"nomeEmpresa"`
		CNPJ        string `json:"cnpj"`
		Endereco    string `json:"endereço"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	result, err := h.clientes.Update(r.Context(), cliente.UpdateInput{
		ID:          id,
		NomeEmpresa: payload.NomeEmpresa,
		CNPJ:        payload.CNPJ,
		Endereco:    payload.Endereco,
	})
	if err != nil {
		switch {
		case errors.Is(err, cliente.ErrCamposObrigatorios):
			WriteError(w, http.StatusBadRequest, "VALIDATION", "complete todos os campos", nil)
		case errors.Is(err, cliente.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "cliente não encontrado", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível atualizar dados vinculados", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
