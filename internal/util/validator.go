package util

import (
	"net/mail"
	"strings"
)

// ValidationError marca falhas de entrada do usuário, permitindo que a
// borda HTTP as distinga de erros internos.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ValidateEmail aceita qualquer endereço que net/mail consiga interpretar.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Msg: "email obrigatório"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Msg: "email inválido"}
	}
	return nil
}

// ValidatePassword exige o tamanho mínimo; regras de composição ficam a
// cargo do painel.
func ValidatePassword(senha string) error {
	if len(senha) < 8 {
		return &ValidationError{Msg: "senha deve ter pelo menos 8 caracteres"}
	}
	return nil
}

// RequireString rejeita valores vazios ou somente com espaços.
func RequireString(valor, campo string) error {
	if strings.TrimSpace(valor) == "" {
		return &ValidationError{Msg: campo + " obrigatório"}
	}
	return nil
}
