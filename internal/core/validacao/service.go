// internal/core/validacao/service.go
package validacao

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"google.golang.org/genai"
)

// ResultadoCampo é o veredito do validador para um campo do registro.
type ResultadoCampo struct {
	Campo    string `json:"campo"`
	Valido   bool   `json:"valido"`
	Mensagem string `json:"mensagem,omitempty"`
}

// Service é o colaborador externo de validação assistida: recebe um registro
// canônico e devolve um veredito por campo do esquema. O contrato é fixo; o
// conteúdo da análise fica a cargo do modelo.
type Service interface {
	ValidarRegistro(ctx context.Context, registro domain.Cliente) ([]ResultadoCampo, error)
}

type service struct {
	modelo string
}

// NewService cria o validador. O modelo pode ser sobrescrito por VALIDACAO_MODELO.
func NewService() Service {
	modelo := os.Getenv("VALIDACAO_MODELO")
	if modelo == "" {
		modelo = "gemini-2.0-flash"
	}
	return &service{modelo: modelo}
}

const instrucao = `Você valida registros de beneficiários importados de planilhas.
Para cada campo do registro recebido, responda se o valor é plausível para o
campo (CPF com 11 dígitos, datas em DD/MM/AAAA, valores monetários decimais,
idade numérica). Responda somente um array JSON, um item por campo, no formato:
[{"campo": "...", "valido": true|false, "mensagem": "..."}].`

func (s *service) ValidarRegistro(ctx context.Context, registro domain.Cliente) ([]ResultadoCampo, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY não configurada")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar cliente de validação: %w", err)
	}

	corpo, err := json.Marshal(registro.Campos())
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar registro: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instrucao}},
		},
	}

	resposta, err := client.Models.GenerateContent(ctx, s.modelo, genai.Text(string(corpo)), config)
	if err != nil {
		return nil, fmt.Errorf("erro na chamada de validação: %w", err)
	}

	texto := resposta.Text()
	var resultados []ResultadoCampo
	if err := json.Unmarshal([]byte(strings.TrimSpace(texto)), &resultados); err != nil {
		return nil, fmt.Errorf("resposta de validação fora do contrato: %w", err)
	}
	return resultados, nil
}
