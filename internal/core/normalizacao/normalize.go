// internal/core/normalizacao/normalize.go
package normalizacao

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Limites do número de série aceitos em cada contexto. Na importação o
// intervalo é estreito para não confundir valores numéricos comuns com datas;
// na correção em massa o intervalo é largo porque o campo já é sabidamente
// uma data de nascimento.
const (
	SerialMinImportacao = 20000
	SerialMaxImportacao = 80000
	SerialMinCorrecao   = 1
	SerialMaxCorrecao   = 100000
)

// diasEpoca é o deslocamento entre 01/01/1900 e 01/01/1970 usado pelas
// planilhas, já contando o bug histórico do ano bissexto de 1900.
const diasEpoca = 25569

var naoDigitos = regexp.MustCompile(`\D`)
var prefixoMoeda = regexp.MustCompile(`R\$\s?`)

// NormalizarCPF remove caracteres que não sejam dígitos e completa com zeros
// à esquerda até 11 posições. Entrada sem nenhum dígito vira string vazia.
func NormalizarCPF(valor string) string {
	digitos := naoDigitos.ReplaceAllString(strings.TrimSpace(valor), "")
	if digitos == "" {
		return ""
	}
	if len(digitos) >= 11 {
		return digitos
	}
	return strings.Repeat("0", 11-len(digitos)) + digitos
}

// NormalizarMoeda converte a notação brasileira ("R$ 1.234,56") para uma
// string decimal simples ("1234.56"): remove o símbolo e o espaço seguinte,
// descarta os pontos de milhar e troca a vírgula decimal por ponto.
func NormalizarMoeda(valor string) string {
	s := prefixoMoeda.ReplaceAllString(strings.TrimSpace(valor), "")
	s = strings.ReplaceAll(s, ".", "")
	return strings.Replace(s, ",", ".", 1)
}

// CentavosParaDecimal detecta o formato legado de moeda: valor sem nenhum
// separador que interpreta como inteiro positivo de centavos. Devolve o valor
// reescrito com duas casas decimais e true quando a correção se aplica.
//
// Heurística sabidamente lesiva para valores genuinamente inteiros: um
// benefício gravado corretamente como "100" seria reinterpretado como "1.00".
func CentavosParaDecimal(valor string) (string, bool) {
	s := strings.TrimSpace(valor)
	if s == "" || strings.Contains(s, ".") || strings.Contains(s, ",") {
		return valor, false
	}
	centavos, err := strconv.ParseInt(s, 10, 64)
	if err != nil || centavos <= 0 {
		return valor, false
	}
	return fmt.Sprintf("%.2f", float64(centavos)/100), true
}

// SerialParaData converte um número de série de planilha para DD/MM/AAAA.
// O serial precisa estar no intervalo aberto (min, max); o cálculo usa dias
// inteiros desde 01/01/1970 UTC. Anos fora de [1900, 2100] são rejeitados.
// Devolve false quando não há conversão aplicável.
func SerialParaData(serial float64, min, max float64) (string, bool) {
	if math.IsNaN(serial) || serial <= min || serial >= max {
		return "", false
	}
	dias := int64(math.Floor(serial - diasEpoca))
	data := time.Unix(dias*86400, 0).UTC()
	if data.Year() < 1900 || data.Year() > 2100 {
		return "", false
	}
	return data.Format("02/01/2006"), true
}

// FormatarData formata um valor de data nativo produzido pelo decodificador.
func FormatarData(data time.Time) string {
	return data.Format("02/01/2006")
}
