package http

import (
	"encoding/json"
	"net/http"
)

// Toda resposta segue o envelope {"data": ..., "error": ...}; um dos dois
// lados é sempre null.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody padroniza o lado de erro do envelope. Code é estável e
// destinado ao front; Message é texto exibível.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON responde sucesso com o dado dentro do envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, SuccessEnvelope{Data: data})
}

// WriteError responde falha normalizada.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	writeEnvelope(w, status, ErrorEnvelope{Error: &ErrorBody{Code: code, Message: message, Details: details}})
}

func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
