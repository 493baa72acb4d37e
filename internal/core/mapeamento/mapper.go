// internal/core/mapeamento/mapper.go
package mapeamento

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"github.com/schollz/closestmatch"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Mapeamento é a correspondência parcial cabeçalho da planilha → chave de
// campo do esquema. Invariante: injetivo — nenhum campo aparece em dois
// cabeçalhos ao mesmo tempo.
type Mapeamento map[string]string

var espacosESublinhados = regexp.MustCompile(`[\s_]+`)

// normalizarTexto prepara um cabeçalho ou rótulo para comparação: remove
// acentos, caixa baixa e descarta espaços e sublinhados.
func normalizarTexto(texto string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	resultado, _, err := transform.String(t, texto)
	if err != nil {
		resultado = texto
	}
	resultado = strings.ToLower(resultado)
	return espacosESublinhados.ReplaceAllString(resultado, "")
}

// MapearAutomaticamente infere o mapeamento inicial: cada cabeçalho cujo
// texto normalizado é igual à chave ou ao rótulo normalizado de um campo
// recebe esse campo, desde que um cabeçalho anterior ainda não o tenha
// reivindicado. Cabeçalhos sem correspondência ficam de fora.
func MapearAutomaticamente(cabecalhos []string) Mapeamento {
	m := make(Mapeamento)
	reivindicados := make(map[string]bool)

	for _, cabecalho := range cabecalhos {
		normalizado := normalizarTexto(cabecalho)
		if normalizado == "" {
			continue
		}
		for _, campo := range domain.CamposObrigatorios {
			if reivindicados[campo] {
				continue
			}
			if normalizado == normalizarTexto(campo) || normalizado == normalizarTexto(domain.Rotulos[campo]) {
				m[cabecalho] = campo
				reivindicados[campo] = true
				break
			}
		}
	}
	return m
}

// Remapear aplica um ajuste manual do operador. Se o campo já estiver
// atribuído a outro cabeçalho, a atribuição antiga é desfeita antes, o que
// mantém a injetividade. Campo vazio ou "none" limpa o mapeamento do
// cabeçalho.
func (m Mapeamento) Remapear(cabecalho, campo string) {
	for c, f := range m {
		if f == campo {
			delete(m, c)
		}
	}
	if campo == "" || campo == "none" {
		delete(m, cabecalho)
		return
	}
	m[cabecalho] = campo
}

// Faltantes devolve os rótulos dos campos obrigatórios que ainda não têm
// cabeçalho atribuído, na ordem do esquema.
func (m Mapeamento) Faltantes() []string {
	atribuidos := make(map[string]bool, len(m))
	for _, campo := range m {
		atribuidos[campo] = true
	}
	var faltantes []string
	for _, campo := range domain.CamposObrigatorios {
		if !atribuidos[campo] {
			faltantes = append(faltantes, domain.Rotulos[campo])
		}
	}
	return faltantes
}

// Completo informa se todos os campos do esquema aparecem no mapeamento.
func (m Mapeamento) Completo() bool {
	return len(m.Faltantes()) == 0
}

// Sugerir devolve o campo do esquema com rótulo mais próximo do cabeçalho,
// para o operador confirmar manualmente. Nunca participa do mapeamento
// automático: é apenas uma sugestão para cabeçalhos que ficaram sem
// correspondência exata. Devolve "" quando não há candidato.
func Sugerir(cabecalho string) string {
	chave := normalizarTexto(cabecalho)
	if chave == "" {
		return ""
	}

	var candidatos []string
	porTexto := make(map[string]string)
	for _, campo := range domain.CamposObrigatorios {
		for _, texto := range []string{normalizarTexto(campo), normalizarTexto(domain.Rotulos[campo])} {
			if _, ok := porTexto[texto]; !ok {
				porTexto[texto] = campo
				candidatos = append(candidatos, texto)
			}
		}
	}

	cm := closestmatch.New(candidatos, []int{2, 3, 4})
	proximo := cm.Closest(chave)
	if proximo == "" {
		return ""
	}
	return porTexto[proximo]
}
