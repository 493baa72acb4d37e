// internal/domain/models.go
package domain

import "time"

// Chaves dos campos do esquema. O conjunto é fixo e fechado: toda planilha
// importada precisa ser mapeada para exatamente estes dez campos.
const (
	CampoCPF              = "cpf"
	CampoBeneficio        = "beneficio"
	CampoNome             = "nome"
	CampoValorBeneficio   = "valor_beneficio"
	CampoDataNascimento   = "data_nascimento"
	CampoIdade            = "idade"
	CampoCodigoEspecie    = "codigo_especie"
	CampoMargemDisponivel = "margem_disponivel"
	CampoMargemRMC        = "margem_rmc"
	CampoTelefone         = "telefone"
)

// CamposObrigatorios lista os campos do esquema na ordem de exibição.
var CamposObrigatorios = []string{
	CampoCPF,
	CampoBeneficio,
	CampoNome,
	CampoValorBeneficio,
	CampoDataNascimento,
	CampoIdade,
	CampoCodigoEspecie,
	CampoMargemDisponivel,
	CampoMargemRMC,
	CampoTelefone,
}

// Rotulos mapeia cada chave de campo para o rótulo exibido ao operador.
var Rotulos = map[string]string{
	CampoCPF:              "CPF",
	CampoBeneficio:        "Benefício",
	CampoNome:             "Nome",
	CampoValorBeneficio:   "Valor Benefício",
	CampoDataNascimento:   "Data Nascimento",
	CampoIdade:            "Idade",
	CampoCodigoEspecie:    "Código Espécie",
	CampoMargemDisponivel: "Margem Disponível",
	CampoMargemRMC:        "Margem RMC",
	CampoTelefone:         "Telefone",
}

// CamposMoeda são os campos que recebem normalização de moeda (R$).
var CamposMoeda = []string{CampoValorBeneficio, CampoMargemDisponivel, CampoMargemRMC}

// Cliente é o registro canônico de um beneficiário. Todos os valores são
// strings já normalizadas; o CPF é a chave única na coleção persistente.
type Cliente struct {
	CPF              string `json:"cpf" firestore:"cpf"`
	Beneficio        string `json:"beneficio" firestore:"beneficio"`
	Nome             string `json:"nome" firestore:"nome"`
	ValorBeneficio   string `json:"valor_beneficio" firestore:"valor_beneficio"`
	DataNascimento   string `json:"data_nascimento" firestore:"data_nascimento"`
	Idade            string `json:"idade" firestore:"idade"`
	CodigoEspecie    string `json:"codigo_especie" firestore:"codigo_especie"`
	MargemDisponivel string `json:"margem_disponivel" firestore:"margem_disponivel"`
	MargemRMC        string `json:"margem_rmc" firestore:"margem_rmc"`
	Telefone         string `json:"telefone" firestore:"telefone"`
}

// Campo devolve o valor do campo pela chave do esquema.
func (c *Cliente) Campo(chave string) string {
	switch chave {
	case CampoCPF:
		return c.CPF
	case CampoBeneficio:
		return c.Beneficio
	case CampoNome:
		return c.Nome
	case CampoValorBeneficio:
		return c.ValorBeneficio
	case CampoDataNascimento:
		return c.DataNascimento
	case CampoIdade:
		return c.Idade
	case CampoCodigoEspecie:
		return c.CodigoEspecie
	case CampoMargemDisponivel:
		return c.MargemDisponivel
	case CampoMargemRMC:
		return c.MargemRMC
	case CampoTelefone:
		return c.Telefone
	}
	return ""
}

// DefinirCampo grava o valor do campo pela chave do esquema. Chaves fora do
// esquema são ignoradas.
func (c *Cliente) DefinirCampo(chave, valor string) {
	switch chave {
	case CampoCPF:
		c.CPF = valor
	case CampoBeneficio:
		c.Beneficio = valor
	case CampoNome:
		c.Nome = valor
	case CampoValorBeneficio:
		c.ValorBeneficio = valor
	case CampoDataNascimento:
		c.DataNascimento = valor
	case CampoIdade:
		c.Idade = valor
	case CampoCodigoEspecie:
		c.CodigoEspecie = valor
	case CampoMargemDisponivel:
		c.MargemDisponivel = valor
	case CampoMargemRMC:
		c.MargemRMC = valor
	case CampoTelefone:
		c.Telefone = valor
	}
}

// Campos devolve o registro como mapa chave → valor, na forma usada pela
// exportação CSV e pela busca textual.
func (c *Cliente) Campos() map[string]string {
	campos := make(map[string]string, len(CamposObrigatorios))
	for _, chave := range CamposObrigatorios {
		campos[chave] = c.Campo(chave)
	}
	return campos
}

// TipoCelula identifica a leitura bruta de uma célula da planilha.
type TipoCelula int

const (
	CelulaVazia TipoCelula = iota
	CelulaNumero
	CelulaTexto
	CelulaData
)

// Celula carrega as duas leituras de uma célula decodificada: a formatada
// (string, como a planilha exibiria) e a bruta (o valor armazenado, que para
// datas é o número de série de dias da planilha).
type Celula struct {
	Formatada string
	Tipo      TipoCelula
	Numero    float64
	Data      time.Time
}

// Tabela é o resultado da decodificação de uma planilha: a linha de
// cabeçalhos e o corpo. Toda linha tem o mesmo comprimento de Cabecalhos.
type Tabela struct {
	Cabecalhos []string
	Linhas     [][]Celula
}
