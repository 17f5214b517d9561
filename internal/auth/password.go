package auth

import "github.com/alexedwards/argon2id"

// Parâmetros para novos hashes. Hashes já emitidos carregam os próprios
// parâmetros, então ajustar estes valores não invalida senhas antigas.
var params = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash codifica a senha com Argon2id.
func Hash(senha string) (string, error) {
	return argon2id.CreateHash(senha, params)
}

// Verify confere a senha contra um hash Argon2id existente.
func Verify(senha, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(senha, hash)
}
