// internal/core/auth/service.go
package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service autentica o operador e emite o token de acesso.
type Service interface {
	Login(username, password string) (string, error)
}

type service struct {
	usuario   string
	senhaHash []byte
	jwtSecret []byte
}

// NewService cria o serviço de autenticação a partir do ambiente:
// ADMIN_USER, ADMIN_PASSWORD_HASH (hash bcrypt) e JWT_SECRET.
func NewService() Service {
	return &service{
		usuario:   os.Getenv("ADMIN_USER"),
		senhaHash: []byte(os.Getenv("ADMIN_PASSWORD_HASH")),
		jwtSecret: []byte(os.Getenv("JWT_SECRET")),
	}
}

// NewServiceComCredenciais é usado nos testes para injetar credenciais.
func NewServiceComCredenciais(usuario string, senhaHash, jwtSecret []byte) Service {
	return &service{usuario: usuario, senhaHash: senhaHash, jwtSecret: jwtSecret}
}

func (s *service) Login(username, password string) (string, error) {
	if s.usuario == "" || len(s.senhaHash) == 0 {
		return "", errors.New("autenticação não configurada no servidor")
	}
	if username != s.usuario {
		return "", errors.New("usuário ou senha inválidos")
	}
	if err := bcrypt.CompareHashAndPassword(s.senhaHash, []byte(password)); err != nil {
		return "", errors.New("usuário ou senha inválidos")
	}

	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"roles":    []string{"admin"},
		"exp":      time.Now().Add(time.Hour * 24).Unix(), // Token expira em 24 horas
	})

	tokenString, err := claims.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.New("erro ao gerar token de acesso")
	}
	return tokenString, nil
}
