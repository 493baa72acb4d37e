// internal/core/planilha/decoder.go
package planilha

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Service decodifica uma planilha binária em cabeçalhos e corpo, com as duas
// leituras por célula (formatada e bruta).
type Service interface {
	Decodificar(arquivo io.Reader, nomeArquivo string) (*domain.Tabela, error)
}

type service struct{}

// NewService cria uma nova instância do decodificador de planilhas.
func NewService() Service {
	return &service{}
}

// layouts de data que o excelize costuma produzir na leitura formatada de
// células com estilo de data.
var layoutsData = []string{"01-02-06", "1/2/06", "01/02/2006", "2006-01-02", "02/01/2006"}

func (svc *service) Decodificar(arquivo io.Reader, nomeArquivo string) (*domain.Tabela, error) {
	dados, err := io.ReadAll(arquivo)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler o arquivo: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(nomeArquivo))
	switch ext {
	case ".xlsx":
		return svc.decodificarXLSX(dados)
	case ".xls":
		return svc.decodificarXLS(dados)
	default:
		return nil, fmt.Errorf("formato de planilha não suportado: %s", ext)
	}
}

func (svc *service) decodificarXLSX(dados []byte) (*domain.Tabela, error) {
	f, err := excelize.OpenReader(bytes.NewReader(dados))
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir a planilha: %w", err)
	}
	defer f.Close()

	abas := f.GetSheetList()
	if len(abas) == 0 {
		return nil, fmt.Errorf("a planilha não contém abas")
	}
	aba := abas[0]

	// Duas passadas: a primeira com os valores formatados (datas já no
	// formato do estilo da célula), a segunda com os valores brutos (datas
	// como número de série).
	formatadas, err := f.GetRows(aba)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler as linhas da planilha: %w", err)
	}
	brutas, err := f.GetRows(aba, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("erro ao ler os valores brutos da planilha: %w", err)
	}

	if len(formatadas) < 2 {
		return nil, fmt.Errorf("a planilha está vazia ou contém apenas o cabeçalho")
	}

	cabecalhos := make([]string, len(formatadas[0]))
	copy(cabecalhos, formatadas[0])

	tabela := &domain.Tabela{Cabecalhos: cabecalhos}
	for i := 1; i < len(formatadas); i++ {
		linha := make([]domain.Celula, len(cabecalhos))
		for j := range cabecalhos {
			formatada := valorEm(formatadas, i, j)
			bruta := valorEm(brutas, i, j)
			linha[j] = montarCelula(formatada, bruta)
		}
		tabela.Linhas = append(tabela.Linhas, linha)
	}
	return tabela, nil
}

// decodificarXLS cobre o formato legado. O leitor de .xls só expõe a leitura
// de texto da célula; se o conteúdo não for .xls de verdade, tenta o caminho
// .xlsx antes de desistir.
func (svc *service) decodificarXLS(dados []byte) (*domain.Tabela, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(dados))
	if err != nil {
		if tabela, errX := svc.decodificarXLSX(dados); errX == nil {
			return tabela, nil
		}
		return nil, fmt.Errorf("erro ao abrir a planilha .xls: %w", err)
	}

	abas := workbook.GetSheets()
	if len(abas) == 0 {
		return nil, fmt.Errorf("a planilha não contém abas")
	}

	var linhasTexto [][]string
	for _, row := range abas[0].GetRows() {
		var linha []string
		for _, cell := range row.GetCols() {
			linha = append(linha, cell.GetString())
		}
		linhasTexto = append(linhasTexto, linha)
	}

	if len(linhasTexto) < 2 {
		return nil, fmt.Errorf("a planilha está vazia ou contém apenas o cabeçalho")
	}

	cabecalhos := linhasTexto[0]
	tabela := &domain.Tabela{Cabecalhos: cabecalhos}
	for i := 1; i < len(linhasTexto); i++ {
		linha := make([]domain.Celula, len(cabecalhos))
		for j := range cabecalhos {
			valor := ""
			if j < len(linhasTexto[i]) {
				valor = linhasTexto[i][j]
			}
			linha[j] = montarCelula(valor, valor)
		}
		tabela.Linhas = append(tabela.Linhas, linha)
	}
	return tabela, nil
}

func valorEm(linhas [][]string, i, j int) string {
	if i < len(linhas) && j < len(linhas[i]) {
		return linhas[i][j]
	}
	return ""
}

// montarCelula classifica a leitura bruta. Quando a célula tem estilo de data
// (a leitura formatada difere da bruta numérica e interpreta como data), o
// decodificador entrega o valor nativo de data.
func montarCelula(formatada, bruta string) domain.Celula {
	celula := domain.Celula{Formatada: formatada}

	brutaLimpa := strings.TrimSpace(bruta)
	if brutaLimpa == "" {
		celula.Tipo = domain.CelulaVazia
		return celula
	}

	numero, err := strconv.ParseFloat(brutaLimpa, 64)
	if err != nil {
		celula.Tipo = domain.CelulaTexto
		return celula
	}

	celula.Tipo = domain.CelulaNumero
	celula.Numero = numero

	if formatada != bruta {
		for _, layout := range layoutsData {
			if data, err := time.Parse(layout, strings.TrimSpace(formatada)); err == nil {
				celula.Tipo = domain.CelulaData
				celula.Data = data
				break
			}
		}
	}
	return celula
}
