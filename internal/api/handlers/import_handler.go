// internal/api/handlers/import_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/EduardoCSampaio/CentralBancaria/internal/api/responses"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/clientes"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/mapeamento"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/planilha"
	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"github.com/gin-gonic/gin"
)

// ImportHandler lida com o fluxo de importação de planilhas: decodificação
// com mapeamento sugerido e o processamento final com o mapeamento do
// operador. Como a API não guarda estado entre as duas etapas, o arquivo é
// reenviado na segunda chamada; o mapeamento nunca é persistido.
type ImportHandler struct {
	decoder  planilha.Service
	clientes clientes.Service
}

// NewImportHandler cria um novo handler de importação.
func NewImportHandler(decoder planilha.Service, clientes clientes.Service) *ImportHandler {
	return &ImportHandler{decoder: decoder, clientes: clientes}
}

// HandleDecodificar recebe a planilha e devolve os cabeçalhos, uma prévia
// das primeiras linhas e o mapeamento automático para o operador revisar.
func (h *ImportHandler) HandleDecodificar(c *gin.Context) {
	tabela, ok := h.decodificarUpload(c)
	if !ok {
		return
	}

	m := mapeamento.MapearAutomaticamente(tabela.Cabecalhos)

	sugestoes := make(map[string]string)
	for _, cabecalho := range tabela.Cabecalhos {
		if _, mapeado := m[cabecalho]; !mapeado {
			if campo := mapeamento.Sugerir(cabecalho); campo != "" {
				sugestoes[cabecalho] = campo
			}
		}
	}

	previa := make([][]string, 0, 5)
	for i := 0; i < len(tabela.Linhas) && i < 5; i++ {
		linha := make([]string, len(tabela.Linhas[i]))
		for j, celula := range tabela.Linhas[i] {
			linha[j] = celula.Formatada
		}
		previa = append(previa, linha)
	}

	c.JSON(http.StatusOK, gin.H{
		"cabecalhos":   tabela.Cabecalhos,
		"total_linhas": len(tabela.Linhas),
		"previa":       previa,
		"mapeamento":   m,
		"sugestoes":    sugestoes,
		"faltantes":    m.Faltantes(),
	})
}

// HandleImportar recebe a planilha e o mapeamento final, materializa os
// registros e grava na coleção. Mapeamento incompleto bloqueia o
// processamento e devolve a lista de rótulos faltantes.
func (h *ImportHandler) HandleImportar(c *gin.Context) {
	tabela, ok := h.decodificarUpload(c)
	if !ok {
		return
	}

	mapeamentoJSON := c.PostForm("mapeamento")
	if mapeamentoJSON == "" {
		responses.Error(c, http.StatusBadRequest, "Mapeamento de colunas não fornecido")
		return
	}

	var bruto map[string]string
	if err := json.Unmarshal([]byte(mapeamentoJSON), &bruto); err != nil {
		responses.Error(c, http.StatusBadRequest, "Mapeamento de colunas inválido")
		return
	}

	// Reaplica cada atribuição via Remapear para garantir a injetividade
	// mesmo com um mapeamento malformado vindo do cliente.
	m := make(mapeamento.Mapeamento)
	for _, cabecalho := range tabela.Cabecalhos {
		if campo, ok := bruto[cabecalho]; ok {
			m.Remapear(cabecalho, campo)
		}
	}

	if faltantes := m.Faltantes(); len(faltantes) > 0 {
		responses.Error(c, http.StatusBadRequest,
			"Mapeamento incompleto: mapeie os campos "+strings.Join(faltantes, ", "),
			faltantes...)
		return
	}

	registros := h.clientes.Materializar(tabela, m)
	salvos, err := h.clientes.Salvar(c.Request.Context(), registros)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao salvar os dados no banco de dados", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"linhas_processadas": len(registros),
		"registros_salvos":   salvos,
	})
}

func (h *ImportHandler) decodificarUpload(c *gin.Context) (*domain.Tabela, bool) {
	fileHeader, err := c.FormFile("arquivo")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo de planilha não encontrado ou inválido")
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo enviado")
		return nil, false
	}
	defer file.Close()

	decodificada, err := h.decoder.Decodificar(file, fileHeader.Filename)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Não foi possível ler a planilha", err.Error())
		return nil, false
	}
	return decodificada, true
}
