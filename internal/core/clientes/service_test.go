package clientes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/EduardoCSampaio/CentralBancaria/internal/core/mapeamento"
	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"github.com/EduardoCSampaio/CentralBancaria/internal/storage"
)

// fakeStore implementa storage.ClienteStore em memória para os testes do
// núcleo, com paginação real e falha opcional a partir de um offset.
type fakeStore struct {
	registros    map[string]domain.Cliente
	upserts      int
	informaTotal bool
	falharOffset int // -1 nunca falha
}

func newFakeStore() *fakeStore {
	return &fakeStore{registros: make(map[string]domain.Cliente), falharOffset: -1}
}

func (f *fakeStore) Upsert(_ context.Context, clientes []domain.Cliente) error {
	f.upserts++
	for _, c := range clientes {
		f.registros[c.CPF] = c
	}
	return nil
}

func (f *fakeStore) SelectRange(_ context.Context, offset, limit int) ([]domain.Cliente, int64, error) {
	if f.falharOffset >= 0 && offset >= f.falharOffset {
		return nil, storage.TotalDesconhecido, errors.New("página indisponível")
	}

	cpfs := make([]string, 0, len(f.registros))
	for cpf := range f.registros {
		cpfs = append(cpfs, cpf)
	}
	sort.Strings(cpfs)

	var pagina []domain.Cliente
	for i := offset; i < len(cpfs) && len(pagina) < limit; i++ {
		pagina = append(pagina, f.registros[cpfs[i]])
	}

	total := storage.TotalDesconhecido
	if f.informaTotal {
		total = int64(len(f.registros))
	}
	return pagina, total, nil
}

func (f *fakeStore) DeleteAll(_ context.Context, sentinelaCPF string) error {
	if sentinelaCPF == "" {
		return errors.New("sentinela obrigatória")
	}
	for cpf := range f.registros {
		if cpf != sentinelaCPF {
			delete(f.registros, cpf)
		}
	}
	return nil
}

func celulaTexto(valor string) domain.Celula {
	return domain.Celula{Formatada: valor, Tipo: domain.CelulaTexto}
}

func celulaNumero(valor float64) domain.Celula {
	return domain.Celula{Formatada: fmt.Sprintf("%g", valor), Tipo: domain.CelulaNumero, Numero: valor}
}

// TestMaterializar cobre a completude do registro canônico e a normalização
// por campo.
func TestMaterializar(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	t.Run("mapeamento parcial produz todos os campos", func(t *testing.T) {
		tabela := &domain.Tabela{
			Cabecalhos: []string{"Documento", "Nome Completo"},
			Linhas: [][]domain.Celula{
				{celulaTexto("123"), celulaTexto("Maria da Silva")},
			},
		}
		m := mapeamento.Mapeamento{"Documento": domain.CampoCPF, "Nome Completo": domain.CampoNome}

		registros := svc.Materializar(tabela, m)
		if len(registros) != 1 {
			t.Fatalf("esperava 1 registro, obteve %d", len(registros))
		}

		campos := registros[0].Campos()
		if len(campos) != len(domain.CamposObrigatorios) {
			t.Errorf("registro tem %d campos, esperava %d", len(campos), len(domain.CamposObrigatorios))
		}
		for _, chave := range domain.CamposObrigatorios {
			valor, presente := campos[chave]
			if !presente {
				t.Errorf("campo %q ausente", chave)
			}
			if chave != domain.CampoCPF && chave != domain.CampoNome && valor != "" {
				t.Errorf("campo não mapeado %q deveria ser vazio, obteve %q", chave, valor)
			}
		}
		if campos[domain.CampoCPF] != "00000000123" {
			t.Errorf("cpf = %q, esperava \"00000000123\"", campos[domain.CampoCPF])
		}
	})

	t.Run("moeda e data são normalizadas", func(t *testing.T) {
		tabela := &domain.Tabela{
			Cabecalhos: []string{"CPF", "Valor", "Nascimento"},
			Linhas: [][]domain.Celula{
				{celulaTexto("98765432100"), celulaTexto("R$ 1.234,56"), celulaNumero(32874)},
			},
		}
		m := mapeamento.Mapeamento{
			"CPF":        domain.CampoCPF,
			"Valor":      domain.CampoValorBeneficio,
			"Nascimento": domain.CampoDataNascimento,
		}

		registro := svc.Materializar(tabela, m)[0]
		if registro.ValorBeneficio != "1234.56" {
			t.Errorf("valor_beneficio = %q, esperava \"1234.56\"", registro.ValorBeneficio)
		}
		if registro.DataNascimento != "01/01/1990" {
			t.Errorf("data_nascimento = %q, esperava \"01/01/1990\"", registro.DataNascimento)
		}
	})

	t.Run("data nativa do decodificador é formatada direto", func(t *testing.T) {
		celula := domain.Celula{
			Formatada: "01-28-90",
			Tipo:      domain.CelulaData,
			Data:      time.Date(1990, 1, 28, 0, 0, 0, 0, time.UTC),
		}
		tabela := &domain.Tabela{
			Cabecalhos: []string{"Nascimento"},
			Linhas:     [][]domain.Celula{{celula}},
		}
		m := mapeamento.Mapeamento{"Nascimento": domain.CampoDataNascimento}

		registro := svc.Materializar(tabela, m)[0]
		if registro.DataNascimento != "28/01/1990" {
			t.Errorf("data_nascimento = %q, esperava \"28/01/1990\"", registro.DataNascimento)
		}
	})

	t.Run("serial fora do intervalo fica como texto", func(t *testing.T) {
		tabela := &domain.Tabela{
			Cabecalhos: []string{"Nascimento"},
			Linhas:     [][]domain.Celula{{celulaNumero(150)}},
		}
		m := mapeamento.Mapeamento{"Nascimento": domain.CampoDataNascimento}

		registro := svc.Materializar(tabela, m)[0]
		if registro.DataNascimento != "150" {
			t.Errorf("data_nascimento = %q, esperava \"150\"", registro.DataNascimento)
		}
	})
}

// TestSalvar cobre a semântica de última escrita vence dentro do lote e
// entre lotes.
func TestSalvar(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicata no lote: o último prevalece", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil)

		salvos, err := svc.Salvar(ctx, []domain.Cliente{
			{CPF: "00000000123", Nome: "Primeiro"},
			{CPF: "00000000123", Nome: "Segundo"},
		})
		if err != nil {
			t.Fatalf("erro inesperado: %v", err)
		}
		if salvos != 1 {
			t.Errorf("salvos = %d, esperava 1", salvos)
		}
		if store.registros["00000000123"].Nome != "Segundo" {
			t.Errorf("nome gravado = %q, esperava \"Segundo\"", store.registros["00000000123"].Nome)
		}
	})

	t.Run("lote posterior substitui o registro inteiro", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil)

		svc.Salvar(ctx, []domain.Cliente{{CPF: "00000000123", Nome: "Antigo", Telefone: "111"}})
		svc.Salvar(ctx, []domain.Cliente{{CPF: "00000000123", Nome: "Novo"}})

		gravado := store.registros["00000000123"]
		if gravado.Nome != "Novo" {
			t.Errorf("nome = %q, esperava \"Novo\"", gravado.Nome)
		}
		if gravado.Telefone != "" {
			t.Errorf("telefone = %q: substituição deveria ser integral, não mesclada", gravado.Telefone)
		}
	})

	t.Run("lote vazio é no-op", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil)

		salvos, err := svc.Salvar(ctx, nil)
		if err != nil || salvos != 0 {
			t.Errorf("Salvar(nil) = (%d, %v), esperava (0, nil)", salvos, err)
		}
		if store.upserts != 0 {
			t.Errorf("o store não deveria ter sido chamado, upserts = %d", store.upserts)
		}
	})

	t.Run("registros sem CPF são descartados", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, nil)

		salvos, _ := svc.Salvar(ctx, []domain.Cliente{{Nome: "Sem Documento"}})
		if salvos != 0 || store.upserts != 0 {
			t.Errorf("registro sem CPF não deveria ser gravado (salvos=%d, upserts=%d)", salvos, store.upserts)
		}
	})
}

func semearClientes(store *fakeStore, quantidade int) {
	for i := 0; i < quantidade; i++ {
		cpf := fmt.Sprintf("%011d", i+1)
		store.registros[cpf] = domain.Cliente{CPF: cpf, Nome: fmt.Sprintf("Cliente %d", i+1)}
	}
}

// TestLerTodos cobre a totalidade da leitura paginada e a degradação em
// falha de página.
func TestLerTodos(t *testing.T) {
	ctx := context.Background()

	t.Run("coleção maior que a página vem inteira", func(t *testing.T) {
		store := newFakeStore()
		semearClientes(store, 2500)
		svc := NewService(store, nil)

		todos := svc.LerTodos(ctx)
		if len(todos) != 2500 {
			t.Errorf("len = %d, esperava 2500", len(todos))
		}
	})

	t.Run("múltiplo exato da página encerra sem página extra infinita", func(t *testing.T) {
		store := newFakeStore()
		semearClientes(store, 2000)
		svc := NewService(store, nil)

		todos := svc.LerTodos(ctx)
		if len(todos) != 2000 {
			t.Errorf("len = %d, esperava 2000", len(todos))
		}
	})

	t.Run("total informado pelo store encerra no total", func(t *testing.T) {
		store := newFakeStore()
		store.informaTotal = true
		semearClientes(store, 1000)
		svc := NewService(store, nil)

		todos := svc.LerTodos(ctx)
		if len(todos) != 1000 {
			t.Errorf("len = %d, esperava 1000", len(todos))
		}
	})

	t.Run("falha de página devolve o acumulado", func(t *testing.T) {
		store := newFakeStore()
		semearClientes(store, 2500)
		store.falharOffset = 1000
		svc := NewService(store, nil)

		todos := svc.LerTodos(ctx)
		if len(todos) != 1000 {
			t.Errorf("len = %d, esperava os 1000 acumulados antes da falha", len(todos))
		}
	})

	t.Run("coleção vazia devolve vazio", func(t *testing.T) {
		svc := NewService(newFakeStore(), nil)
		if todos := svc.LerTodos(ctx); len(todos) != 0 {
			t.Errorf("len = %d, esperava 0", len(todos))
		}
	})
}

// TestBuscas cobre a consulta exata por CPF e a busca textual.
func TestBuscas(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.registros["00000000123"] = domain.Cliente{CPF: "00000000123", Nome: "Maria da Silva"}
	store.registros["98765432100"] = domain.Cliente{CPF: "98765432100", Nome: "João Souza", Telefone: "47999990000"}
	svc := NewService(store, nil)

	t.Run("CPF curto é preenchido antes da busca", func(t *testing.T) {
		cliente, ok := svc.BuscarPorCPF(ctx, "123")
		if !ok {
			t.Fatal("deveria encontrar o cliente")
		}
		if cliente.Nome != "Maria da Silva" {
			t.Errorf("nome = %q", cliente.Nome)
		}
	})

	t.Run("CPF inexistente não encontra", func(t *testing.T) {
		if _, ok := svc.BuscarPorCPF(ctx, "55555555555"); ok {
			t.Error("não deveria encontrar")
		}
	})

	t.Run("busca textual ignora maiúsculas", func(t *testing.T) {
		encontrados := svc.BuscarTexto(ctx, "joão")
		if len(encontrados) != 1 || encontrados[0].CPF != "98765432100" {
			t.Errorf("encontrados = %v", encontrados)
		}
	})

	t.Run("busca textual alcança qualquer campo", func(t *testing.T) {
		encontrados := svc.BuscarTexto(ctx, "479999")
		if len(encontrados) != 1 {
			t.Errorf("esperava encontrar pelo telefone, obteve %d", len(encontrados))
		}
	})
}

// TestExportarCSV cobre o formato do backup: BOM, aspas e quebras de linha.
func TestExportarCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("coleção vazia não exporta", func(t *testing.T) {
		svc := NewService(newFakeStore(), nil)
		if csv := svc.ExportarCSV(ctx); csv != nil {
			t.Errorf("esperava nil, obteve %q", csv)
		}
	})

	t.Run("formato do arquivo", func(t *testing.T) {
		store := newFakeStore()
		store.registros["00000000123"] = domain.Cliente{CPF: "00000000123", Nome: `Maria "Mary" Silva`}
		svc := NewService(store, nil)

		csv := string(svc.ExportarCSV(ctx))
		if !strings.HasPrefix(csv, "\uFEFF") {
			t.Error("exportação deveria começar com BOM")
		}

		linhas := strings.Split(strings.TrimPrefix(csv, "\uFEFF"), "\n")
		if len(linhas) != 2 {
			t.Fatalf("esperava cabeçalho + 1 linha, obteve %d", len(linhas))
		}
		if !strings.HasPrefix(linhas[0], `"cpf","beneficio"`) {
			t.Errorf("cabeçalho inesperado: %q", linhas[0])
		}
		if !strings.Contains(linhas[1], `"Maria ""Mary"" Silva"`) {
			t.Errorf("aspas internas deveriam ser dobradas: %q", linhas[1])
		}
		if !strings.Contains(linhas[1], `"00000000123"`) {
			t.Errorf("todo campo deveria vir entre aspas: %q", linhas[1])
		}
	})
}

// TestEstatisticas cobre os números do dashboard.
func TestEstatisticas(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.registros["00000000001"] = domain.Cliente{CPF: "00000000001", Idade: "34"}
	store.registros["00000000002"] = domain.Cliente{CPF: "00000000002", Idade: "38"}
	store.registros["00000000003"] = domain.Cliente{CPF: "00000000003", Idade: "62"}
	store.registros["00000000004"] = domain.Cliente{CPF: "00000000004", Idade: "não informada"}
	svc := NewService(store, nil)

	stats := svc.Estatisticas(ctx)
	if stats.TotalClientes != 4 {
		t.Errorf("total = %d, esperava 4", stats.TotalClientes)
	}
	if stats.IdadeMedia != 34 { // (34+38+62+0)/4 arredondado
		t.Errorf("idade média = %d, esperava 34", stats.IdadeMedia)
	}
	if len(stats.Distribuicao) != 2 {
		t.Fatalf("distribuição = %v, esperava 2 faixas", stats.Distribuicao)
	}
	if stats.Distribuicao[0].Faixa != "30-39" || stats.Distribuicao[0].Quantidade != 2 {
		t.Errorf("faixa 30-39 = %+v", stats.Distribuicao[0])
	}
	if stats.Distribuicao[1].Faixa != "60-69" || stats.Distribuicao[1].Quantidade != 1 {
		t.Errorf("faixa 60-69 = %+v", stats.Distribuicao[1])
	}
}

// TestCorrigirDatas cobre a correção em massa de datas e a idempotência.
func TestCorrigirDatas(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.registros["00000000001"] = domain.Cliente{CPF: "00000000001", DataNascimento: "32874"}
	store.registros["00000000002"] = domain.Cliente{CPF: "00000000002", DataNascimento: "28/01/1990"}
	store.registros["00000000003"] = domain.Cliente{CPF: "00000000003", DataNascimento: "1"}
	store.registros["00000000004"] = domain.Cliente{CPF: "00000000004", DataNascimento: ""}
	svc := NewService(store, nil)

	corrigidos, err := svc.CorrigirDatas(ctx)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if corrigidos != 1 {
		t.Errorf("corrigidos = %d, esperava 1", corrigidos)
	}
	if got := store.registros["00000000001"].DataNascimento; got != "01/01/1990" {
		t.Errorf("data corrigida = %q, esperava \"01/01/1990\"", got)
	}
	if got := store.registros["00000000002"].DataNascimento; got != "28/01/1990" {
		t.Errorf("data já formatada foi alterada para %q", got)
	}
	if got := store.registros["00000000003"].DataNascimento; got != "1" {
		t.Errorf("serial 1 não deveria converter, virou %q", got)
	}

	t.Run("segunda execução não corrige nada", func(t *testing.T) {
		upsertsAntes := store.upserts
		corrigidos, err := svc.CorrigirDatas(ctx)
		if err != nil || corrigidos != 0 {
			t.Errorf("segunda execução = (%d, %v), esperava (0, nil)", corrigidos, err)
		}
		if store.upserts != upsertsAntes {
			t.Error("sem correções não deveria haver upsert")
		}
	})
}

// TestCorrigirValores cobre a correção em massa de moeda e a idempotência.
func TestCorrigirValores(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.registros["00000000001"] = domain.Cliente{
		CPF:              "00000000001",
		ValorBeneficio:   "123456",
		MargemDisponivel: "1234.56",
		MargemRMC:        "7890",
		Nome:             "Maria",
	}
	store.registros["00000000002"] = domain.Cliente{CPF: "00000000002", ValorBeneficio: "1500.00"}
	svc := NewService(store, nil)

	corrigidos, err := svc.CorrigirValores(ctx)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if corrigidos != 1 {
		t.Errorf("corrigidos = %d, esperava 1", corrigidos)
	}

	gravado := store.registros["00000000001"]
	if gravado.ValorBeneficio != "1234.56" {
		t.Errorf("valor_beneficio = %q, esperava \"1234.56\"", gravado.ValorBeneficio)
	}
	if gravado.MargemDisponivel != "1234.56" {
		t.Errorf("campo já decimal foi alterado: %q", gravado.MargemDisponivel)
	}
	if gravado.MargemRMC != "78.90" {
		t.Errorf("margem_rmc = %q, esperava \"78.90\"", gravado.MargemRMC)
	}
	if gravado.Nome != "Maria" {
		t.Errorf("os demais campos deveriam passar inalterados, nome = %q", gravado.Nome)
	}
	if store.registros["00000000002"].ValorBeneficio != "1500.00" {
		t.Error("registro sem formato legado não deveria mudar")
	}

	t.Run("segunda execução não corrige nada", func(t *testing.T) {
		corrigidos, err := svc.CorrigirValores(ctx)
		if err != nil || corrigidos != 0 {
			t.Errorf("segunda execução = (%d, %v), esperava (0, nil)", corrigidos, err)
		}
	})
}

// TestImportacaoCompleta é o cenário de ponta a ponta: decodificação já
// feita, mapeamento manual e materialização com serial de data.
func TestImportacaoCompleta(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewService(store, nil)

	tabela := &domain.Tabela{
		Cabecalhos: []string{"Documento", "Nome Completo", "Nasc."},
		Linhas: [][]domain.Celula{
			{celulaTexto("123"), celulaTexto("Maria da Silva"), celulaNumero(32874)},
			{celulaTexto("98765432100"), celulaTexto("João Souza"), celulaNumero(32901)},
		},
	}

	// Nenhum destes cabeçalhos casa com o esquema: o operador remapeia.
	m := mapeamento.MapearAutomaticamente(tabela.Cabecalhos)
	if len(m) != 0 {
		t.Fatalf("mapeamento automático deveria estar vazio, obteve %v", m)
	}
	m.Remapear("Documento", domain.CampoCPF)
	m.Remapear("Nome Completo", domain.CampoNome)
	m.Remapear("Nasc.", domain.CampoDataNascimento)

	registros := svc.Materializar(tabela, m)
	if _, err := svc.Salvar(ctx, registros); err != nil {
		t.Fatalf("erro ao salvar: %v", err)
	}

	maria, ok := svc.BuscarPorCPF(ctx, "123")
	if !ok {
		t.Fatal("deveria encontrar o CPF preenchido com zeros")
	}
	if maria.CPF != "00000000123" {
		t.Errorf("cpf = %q, esperava \"00000000123\"", maria.CPF)
	}
	if maria.DataNascimento != "01/01/1990" {
		t.Errorf("data_nascimento = %q, esperava \"01/01/1990\"", maria.DataNascimento)
	}

	joao := store.registros["98765432100"]
	if joao.DataNascimento != "28/01/1990" {
		t.Errorf("data_nascimento = %q, esperava \"28/01/1990\"", joao.DataNascimento)
	}
}
