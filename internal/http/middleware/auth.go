package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prefeituradigital/chamados/internal/auth"
)

type contextKey string

const (
	ContextKeySubject      contextKey = "subject"
	ContextKeyNome         contextKey = "nome"
	ContextKeyAdmin        contextKey = "admin"
	ContextKeySecretaria   contextKey = "secretaria"
	ContextKeyDepartamento contextKey = "departamento"
)

// Auth valida o JWT de acesso e injeta claims no contexto. Requisições sem
// sessão válida param aqui; nenhum handler protegido roda sem identidade.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyNome, claims.Nome)
			ctx = context.WithValue(ctx, ContextKeyAdmin, claims.Admin)
			ctx = context.WithValue(ctx, ContextKeySecretaria, claims.Secretaria)
			ctx = context.WithValue(ctx, ContextKeyDepartamento, claims.Departamento)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetNome recupera o nome do usuário autenticado.
func GetNome(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyNome).(string)
	return val
}

// IsAdmin indica se o usuário autenticado é administrador.
func IsAdmin(ctx context.Context) bool {
	val, _ := ctx.Value(ContextKeyAdmin).(bool)
	return val
}

// GetSecretaria recupera a secretaria do usuário autenticado.
func GetSecretaria(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySecretaria).(string)
	return val
}

// GetDepartamento recupera o departamento do usuário autenticado.
func GetDepartamento(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyDepartamento).(string)
	return val
}

// RequireAdmin restringe a rota a administradores.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
