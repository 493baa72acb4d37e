package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func novoServicoTeste(t *testing.T, senha string) Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("erro ao gerar o hash: %v", err)
	}
	return NewServiceComCredenciais("admin", hash, []byte("segredo-de-teste"))
}

func TestLogin(t *testing.T) {
	svc := novoServicoTeste(t, "senha-forte")

	t.Run("credenciais corretas emitem token válido", func(t *testing.T) {
		tokenString, err := svc.Login("admin", "senha-forte")
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte("segredo-de-teste"), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("token inválido: %v", err)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			t.Fatal("claims em formato inesperado")
		}
		if claims["username"] != "admin" {
			t.Errorf("username = %v", claims["username"])
		}
		roles, ok := claims["roles"].([]interface{})
		if !ok || len(roles) != 1 || roles[0] != "admin" {
			t.Errorf("roles = %v", claims["roles"])
		}
		if _, ok := claims["exp"]; !ok {
			t.Error("token sem expiração")
		}
	})

	t.Run("senha errada é rejeitada", func(t *testing.T) {
		if _, err := svc.Login("admin", "outra-senha"); err == nil {
			t.Error("esperava erro de credenciais")
		}
	})

	t.Run("usuário errado é rejeitado", func(t *testing.T) {
		if _, err := svc.Login("visitante", "senha-forte"); err == nil {
			t.Error("esperava erro de credenciais")
		}
	})

	t.Run("serviço sem configuração recusa login", func(t *testing.T) {
		vazio := NewServiceComCredenciais("", nil, nil)
		if _, err := vazio.Login("admin", "senha-forte"); err == nil {
			t.Error("esperava erro de configuração")
		}
	})
}
