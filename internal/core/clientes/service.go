// internal/core/clientes/service.go
package clientes

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/EduardoCSampaio/CentralBancaria/internal/core/mapeamento"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/normalizacao"
	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"github.com/EduardoCSampaio/CentralBancaria/internal/storage"
	"go.uber.org/zap"
)

// tamanhoPagina é o teto de linhas por página imposto ao leitor da coleção.
const tamanhoPagina = 1000

// FaixaEtaria é uma barra do histograma de idades do dashboard.
type FaixaEtaria struct {
	Faixa      string `json:"faixa"`
	Quantidade int    `json:"quantidade"`
}

// Estatisticas resume a coleção para o dashboard administrativo.
type Estatisticas struct {
	TotalClientes int           `json:"total_clientes"`
	IdadeMedia    int           `json:"idade_media"`
	Distribuicao  []FaixaEtaria `json:"distribuicao_idades"`
}

// Service reúne as operações do núcleo sobre a coleção de clientes:
// materialização de linhas mapeadas, gravação com mesclagem por CPF, leitura
// integral paginada, buscas, exportação e as correções em massa.
type Service interface {
	Materializar(tabela *domain.Tabela, m mapeamento.Mapeamento) []domain.Cliente
	Salvar(ctx context.Context, registros []domain.Cliente) (int, error)
	LerTodos(ctx context.Context) []domain.Cliente
	BuscarPorCPF(ctx context.Context, cpf string) (*domain.Cliente, bool)
	BuscarTexto(ctx context.Context, termo string) []domain.Cliente
	ExportarCSV(ctx context.Context) []byte
	Estatisticas(ctx context.Context) Estatisticas
	CorrigirDatas(ctx context.Context) (int, error)
	CorrigirValores(ctx context.Context) (int, error)
	LimparTudo(ctx context.Context, sentinelaCPF string) error
}

type service struct {
	store  storage.ClienteStore
	logger *zap.Logger
}

// NewService cria o serviço de clientes sobre um store concreto.
func NewService(store storage.ClienteStore, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{store: store, logger: logger}
}

// Materializar converte cada linha decodificada em um registro canônico,
// aplicando a normalização do campo mapeado. Campos sem cabeçalho atribuído
// ficam com string vazia; um mapeamento incompleto não é erro aqui — a trava
// de completude acontece antes, na decisão de processar.
func (s *service) Materializar(tabela *domain.Tabela, m mapeamento.Mapeamento) []domain.Cliente {
	registros := make([]domain.Cliente, 0, len(tabela.Linhas))
	for _, linha := range tabela.Linhas {
		var registro domain.Cliente
		for j, cabecalho := range tabela.Cabecalhos {
			campo, ok := m[cabecalho]
			if !ok || j >= len(linha) {
				continue
			}
			registro.DefinirCampo(campo, normalizarValor(campo, linha[j]))
		}
		registros = append(registros, registro)
	}
	return registros
}

// normalizarValor aplica a regra de canonicalização do campo à célula.
func normalizarValor(campo string, celula domain.Celula) string {
	switch {
	case campo == domain.CampoCPF:
		return normalizacao.NormalizarCPF(celula.Formatada)

	case ehCampoMoeda(campo):
		return normalizacao.NormalizarMoeda(celula.Formatada)

	case campo == domain.CampoDataNascimento:
		if celula.Tipo == domain.CelulaData {
			return normalizacao.FormatarData(celula.Data)
		}
		if celula.Tipo == domain.CelulaNumero {
			if data, ok := normalizacao.SerialParaData(celula.Numero,
				normalizacao.SerialMinImportacao, normalizacao.SerialMaxImportacao); ok {
				return data
			}
		}
		return strings.TrimSpace(celula.Formatada)

	default:
		return strings.TrimSpace(celula.Formatada)
	}
}

func ehCampoMoeda(campo string) bool {
	for _, c := range domain.CamposMoeda {
		if campo == c {
			return true
		}
	}
	return false
}

// Salvar grava um lote na coleção com semântica de última escrita vence:
// dentro do lote, o último registro de cada CPF prevalece; na coleção, o
// registro gravado substitui por inteiro qualquer versão anterior do mesmo
// CPF. Registros sem CPF são descartados. Lote vazio é um no-op. Devolve a
// quantidade de registros efetivamente gravados.
func (s *service) Salvar(ctx context.Context, registros []domain.Cliente) (int, error) {
	ultimo := make(map[string]domain.Cliente)
	var ordem []string
	for _, registro := range registros {
		if registro.CPF == "" {
			continue
		}
		if _, visto := ultimo[registro.CPF]; !visto {
			ordem = append(ordem, registro.CPF)
		}
		ultimo[registro.CPF] = registro
	}

	if len(ordem) == 0 {
		return 0, nil
	}

	lote := make([]domain.Cliente, 0, len(ordem))
	for _, cpf := range ordem {
		lote = append(lote, ultimo[cpf])
	}

	if err := s.store.Upsert(ctx, lote); err != nil {
		return 0, fmt.Errorf("erro ao salvar os registros: %w", err)
	}
	return len(lote), nil
}

// LerTodos percorre a coleção inteira em páginas de tamanho fixo, avançando o
// offset pelo que cada página devolveu, e encerra na página curta (ou quando
// o total informado pelo store é atingido). Falha em uma página degrada para
// devolver o que já foi acumulado; quem consome precisa tratar um resultado
// curto como potencialmente incompleto.
func (s *service) LerTodos(ctx context.Context) []domain.Cliente {
	var todos []domain.Cliente
	offset := 0
	for {
		pagina, total, err := s.store.SelectRange(ctx, offset, tamanhoPagina)
		if err != nil {
			s.logger.Warn("leitura integral interrompida; devolvendo resultado parcial",
				zap.Int("acumulados", len(todos)), zap.Error(err))
			return todos
		}
		todos = append(todos, pagina...)
		if len(pagina) < tamanhoPagina {
			break
		}
		if total != storage.TotalDesconhecido && int64(len(todos)) >= total {
			break
		}
		offset += len(pagina)
	}
	return todos
}

// BuscarPorCPF procura o registro exato do CPF informado. A entrada é
// normalizada (dígitos e zeros à esquerda) antes da comparação.
func (s *service) BuscarPorCPF(ctx context.Context, cpf string) (*domain.Cliente, bool) {
	alvo := normalizacao.NormalizarCPF(cpf)
	if alvo == "" {
		return nil, false
	}
	for _, cliente := range s.LerTodos(ctx) {
		if cliente.CPF == alvo {
			c := cliente
			return &c, true
		}
	}
	return nil, false
}

// BuscarTexto devolve os registros em que qualquer campo contém o termo,
// sem diferenciar maiúsculas.
func (s *service) BuscarTexto(ctx context.Context, termo string) []domain.Cliente {
	termo = strings.ToLower(strings.TrimSpace(termo))
	if termo == "" {
		return nil
	}
	var encontrados []domain.Cliente
	for _, cliente := range s.LerTodos(ctx) {
		for _, valor := range cliente.Campos() {
			if strings.Contains(strings.ToLower(valor), termo) {
				encontrados = append(encontrados, cliente)
				break
			}
		}
	}
	return encontrados
}

// ExportarCSV monta o backup da coleção: UTF-8 com BOM, cabeçalho com as
// chaves do esquema, todo campo entre aspas duplas (aspas internas dobradas)
// e linhas separadas por \n. Coleção vazia produz nil.
func (s *service) ExportarCSV(ctx context.Context) []byte {
	clientes := s.LerTodos(ctx)
	if len(clientes) == 0 {
		return nil
	}

	var buffer bytes.Buffer
	buffer.WriteString("\uFEFF")

	linha := make([]string, len(domain.CamposObrigatorios))
	for i, chave := range domain.CamposObrigatorios {
		linha[i] = `"` + strings.ReplaceAll(chave, `"`, `""`) + `"`
	}
	buffer.WriteString(strings.Join(linha, ","))

	for _, cliente := range clientes {
		for i, chave := range domain.CamposObrigatorios {
			linha[i] = `"` + strings.ReplaceAll(cliente.Campo(chave), `"`, `""`) + `"`
		}
		buffer.WriteString("\n")
		buffer.WriteString(strings.Join(linha, ","))
	}
	return buffer.Bytes()
}

// Estatisticas calcula os números do dashboard: total de clientes, idade
// média e a distribuição por faixas de dez anos.
func (s *service) Estatisticas(ctx context.Context) Estatisticas {
	clientes := s.LerTodos(ctx)
	stats := Estatisticas{TotalClientes: len(clientes), Distribuicao: []FaixaEtaria{}}
	if len(clientes) == 0 {
		return stats
	}

	somaIdades := 0
	porFaixa := make(map[int]int)
	for _, cliente := range clientes {
		idade, err := strconv.Atoi(strings.TrimSpace(cliente.Idade))
		if err != nil {
			continue
		}
		somaIdades += idade
		porFaixa[idade/10*10]++
	}
	stats.IdadeMedia = int(float64(somaIdades)/float64(len(clientes)) + 0.5)

	inicios := make([]int, 0, len(porFaixa))
	for inicio := range porFaixa {
		inicios = append(inicios, inicio)
	}
	sort.Ints(inicios)
	for _, inicio := range inicios {
		stats.Distribuicao = append(stats.Distribuicao, FaixaEtaria{
			Faixa:      fmt.Sprintf("%d-%d", inicio, inicio+9),
			Quantidade: porFaixa[inicio],
		})
	}
	return stats
}

// CorrigirDatas varre a coleção atrás de datas de nascimento ainda gravadas
// como número de série de planilha (valor numérico sem "/") e as reescreve
// no formato DD/MM/AAAA, regravando apenas os registros alterados. Idempotente:
// uma segunda execução não encontra nada para corrigir.
func (s *service) CorrigirDatas(ctx context.Context) (int, error) {
	var corrigidos []domain.Cliente
	for _, cliente := range s.LerTodos(ctx) {
		valor := strings.TrimSpace(cliente.DataNascimento)
		if valor == "" || strings.Contains(valor, "/") {
			continue
		}
		serial, err := strconv.ParseFloat(valor, 64)
		if err != nil {
			continue
		}
		data, ok := normalizacao.SerialParaData(serial,
			normalizacao.SerialMinCorrecao, normalizacao.SerialMaxCorrecao)
		if !ok {
			continue
		}
		cliente.DataNascimento = data
		corrigidos = append(corrigidos, cliente)
	}

	if len(corrigidos) == 0 {
		return 0, nil
	}
	if _, err := s.Salvar(ctx, corrigidos); err != nil {
		return 0, fmt.Errorf("erro ao regravar datas corrigidas: %w", err)
	}
	return len(corrigidos), nil
}

// CorrigirValores varre a coleção atrás de campos de moeda gravados no
// formato legado de centavos inteiros (sem "." nem ",") e os reescreve com
// duas casas decimais. Um registro entra no lote de regravação quando
// qualquer um dos seus campos de moeda foi corrigido. Idempotente.
func (s *service) CorrigirValores(ctx context.Context) (int, error) {
	var corrigidos []domain.Cliente
	for _, cliente := range s.LerTodos(ctx) {
		alterado := false
		for _, campo := range domain.CamposMoeda {
			if valor, ok := normalizacao.CentavosParaDecimal(cliente.Campo(campo)); ok {
				cliente.DefinirCampo(campo, valor)
				alterado = true
			}
		}
		if alterado {
			corrigidos = append(corrigidos, cliente)
		}
	}

	if len(corrigidos) == 0 {
		return 0, nil
	}
	if _, err := s.Salvar(ctx, corrigidos); err != nil {
		return 0, fmt.Errorf("erro ao regravar valores corrigidos: %w", err)
	}
	return len(corrigidos), nil
}

// LimparTudo apaga a coleção inteira. A sentinela obrigatória segue o padrão
// do filtro que não casa com nenhum CPF real.
func (s *service) LimparTudo(ctx context.Context, sentinelaCPF string) error {
	if err := s.store.DeleteAll(ctx, sentinelaCPF); err != nil {
		return fmt.Errorf("erro ao limpar a base de clientes: %w", err)
	}
	return nil
}
