// internal/storage/store.go
package storage

import (
	"context"

	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
)

// TotalDesconhecido é devolvido por SelectRange quando o backend não informa
// a contagem exata da coleção.
const TotalDesconhecido int64 = -1

// ClienteStore é o contrato que o núcleo exige de qualquer armazenamento:
// uma coleção chaveada por CPF com upsert integral (o registro é substituído
// por inteiro, nunca mesclado campo a campo), varredura paginada e limpeza
// total condicionada a uma sentinela que não casa com nenhum CPF real.
type ClienteStore interface {
	// Upsert insere ou substitui cada registro do lote pela chave CPF.
	// O lote já chega deduplicado; a implementação pode fragmentá-lo em
	// sublotes desde que preserve a ordem.
	Upsert(ctx context.Context, clientes []domain.Cliente) error

	// SelectRange devolve uma página da coleção ordenada por CPF e, quando
	// o backend souber, a contagem total (senão TotalDesconhecido).
	SelectRange(ctx context.Context, offset, limit int) ([]domain.Cliente, int64, error)

	// DeleteAll apaga todos os registros cujo CPF difere da sentinela.
	// A sentinela deve ser um valor impossível (ex.: "0"); exigir o filtro
	// é a trava de segurança contra limpezas acidentais.
	DeleteAll(ctx context.Context, sentinelaCPF string) error
}
