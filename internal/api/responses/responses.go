// internal/api/responses/responses.go
package responses

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger *zap.Logger

// InitLogger inicializa o logger estruturado global da aplicação.
func InitLogger() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger devolve o logger da aplicação (nunca nil).
func Logger() *zap.Logger {
	if logger == nil {
		InitLogger()
	}
	return logger
}

// Error registra a falha e responde o erro em JSON no formato da API.
func Error(c *gin.Context, status int, mensagem string, detalhes ...string) {
	campos := []zap.Field{
		zap.Int("status", status),
		zap.String("rota", c.FullPath()),
	}
	if len(detalhes) > 0 {
		campos = append(campos, zap.Strings("detalhes", detalhes))
	}
	Logger().Warn(mensagem, campos...)

	corpo := gin.H{"error": mensagem}
	if len(detalhes) > 0 {
		corpo["detalhes"] = detalhes
	}
	c.JSON(status, corpo)
}
