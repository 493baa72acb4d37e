// internal/api/handlers/clientes_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/EduardoCSampaio/CentralBancaria/internal/api/responses"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/clientes"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/validacao"
	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"github.com/gin-gonic/gin"
)

// sentinelaLimpeza é o CPF impossível passado ao filtro da limpeza total.
const sentinelaLimpeza = "0"

// ClientesHandler lida com as requisições de consulta, exportação,
// estatísticas e manutenção da base de clientes.
type ClientesHandler struct {
	service   clientes.Service
	validador validacao.Service
}

// NewClientesHandler cria um novo handler de clientes.
func NewClientesHandler(service clientes.Service, validador validacao.Service) *ClientesHandler {
	return &ClientesHandler{service: service, validador: validador}
}

// HandleConsultarCPF busca o registro exato do CPF informado.
func (h *ClientesHandler) HandleConsultarCPF(c *gin.Context) {
	cliente, encontrado := h.service.BuscarPorCPF(c.Request.Context(), c.Param("cpf"))
	if !encontrado {
		responses.Error(c, http.StatusNotFound, "Cliente não encontrado para o CPF informado")
		return
	}
	c.JSON(http.StatusOK, cliente)
}

// HandleBuscar faz a busca textual em todos os campos de todos os registros.
func (h *ClientesHandler) HandleBuscar(c *gin.Context) {
	termo := c.Query("busca")
	if termo == "" {
		responses.Error(c, http.StatusBadRequest, "Informe o termo de busca no parâmetro 'busca'")
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientes": h.service.BuscarTexto(c.Request.Context(), termo)})
}

// HandleExportar gera o backup CSV da base e o entrega como download.
func (h *ClientesHandler) HandleExportar(c *gin.Context) {
	csv := h.service.ExportarCSV(c.Request.Context())
	if len(csv) == 0 {
		responses.Error(c, http.StatusNotFound, "Nenhum dado para exportar: a base de dados está vazia")
		return
	}

	fileName := fmt.Sprintf("backup_dados_bancarios_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csv)
}

// HandleEstatisticas devolve os números do dashboard.
func (h *ClientesHandler) HandleEstatisticas(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Estatisticas(c.Request.Context()))
}

// HandleCorrigirDatas dispara a correção em massa de datas de nascimento.
func (h *ClientesHandler) HandleCorrigirDatas(c *gin.Context) {
	corrigidos, err := h.service.CorrigirDatas(c.Request.Context())
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao corrigir as datas", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"corrigidos": corrigidos})
}

// HandleCorrigirValores dispara a correção em massa dos campos de moeda.
func (h *ClientesHandler) HandleCorrigirValores(c *gin.Context) {
	corrigidos, err := h.service.CorrigirValores(c.Request.Context())
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao corrigir os valores", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"corrigidos": corrigidos})
}

// HandleValidar envia o registro ao validador assistido e devolve o veredito
// por campo.
func (h *ClientesHandler) HandleValidar(c *gin.Context) {
	var registro domain.Cliente
	if err := c.ShouldBindJSON(&registro); err != nil {
		responses.Error(c, http.StatusBadRequest, "Registro inválido para validação")
		return
	}

	resultados, err := h.validador.ValidarRegistro(c.Request.Context(), registro)
	if err != nil {
		responses.Error(c, http.StatusBadGateway, "Erro ao validar o registro", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"resultados": resultados})
}

// HandleLimpar apaga a base inteira. Operação destrutiva: exige a frase de
// confirmação além da permissão de admin.
func (h *ClientesHandler) HandleLimpar(c *gin.Context) {
	if c.Query("confirmar") != "LIMPAR-TUDO" {
		responses.Error(c, http.StatusBadRequest, "Limpeza não confirmada: envie confirmar=LIMPAR-TUDO")
		return
	}
	if err := h.service.LimparTudo(c.Request.Context(), sentinelaLimpeza); err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao limpar a base de dados", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "base limpa"})
}
