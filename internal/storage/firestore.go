// internal/storage/firestore.go
package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"google.golang.org/api/iterator"
)

// tamanhoLoteFirestore é o teto de operações de um WriteBatch do Firestore.
const tamanhoLoteFirestore = 500

// FirestoreStore guarda os clientes em uma coleção do Firestore usando o CPF
// como id do documento, o que torna o upsert a própria escrita do documento.
type FirestoreStore struct {
	client  *firestore.Client
	colecao string
}

// NewFirestoreStore cria o store sobre um cliente Firestore já inicializado.
func NewFirestoreStore(client *firestore.Client, colecao string) *FirestoreStore {
	if colecao == "" {
		colecao = "clientes"
	}
	return &FirestoreStore{client: client, colecao: colecao}
}

func (s *FirestoreStore) Upsert(ctx context.Context, clientes []domain.Cliente) error {
	for inicio := 0; inicio < len(clientes); inicio += tamanhoLoteFirestore {
		fim := inicio + tamanhoLoteFirestore
		if fim > len(clientes) {
			fim = len(clientes)
		}

		lote := s.client.Batch()
		for _, cliente := range clientes[inicio:fim] {
			ref := s.client.Collection(s.colecao).Doc(cliente.CPF)
			lote.Set(ref, cliente)
		}
		if _, err := lote.Commit(ctx); err != nil {
			return fmt.Errorf("erro ao gravar lote no Firestore: %w", err)
		}
	}
	return nil
}

func (s *FirestoreStore) SelectRange(ctx context.Context, offset, limit int) ([]domain.Cliente, int64, error) {
	query := s.client.Collection(s.colecao).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Offset(offset).
		Limit(limit)

	it := query.Documents(ctx)
	defer it.Stop()

	var clientes []domain.Cliente
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, TotalDesconhecido, fmt.Errorf("erro ao ler página do Firestore: %w", err)
		}
		var cliente domain.Cliente
		if err := doc.DataTo(&cliente); err != nil {
			return nil, TotalDesconhecido, fmt.Errorf("erro ao converter documento %s: %w", doc.Ref.ID, err)
		}
		clientes = append(clientes, cliente)
	}

	// O Firestore não devolve a contagem junto da página; o leitor encerra
	// pela página curta.
	return clientes, TotalDesconhecido, nil
}

func (s *FirestoreStore) DeleteAll(ctx context.Context, sentinelaCPF string) error {
	if sentinelaCPF == "" {
		return fmt.Errorf("limpeza total exige a sentinela de filtro")
	}

	for {
		it := s.client.Collection(s.colecao).Limit(tamanhoLoteFirestore).Documents(ctx)
		apagados := 0
		lote := s.client.Batch()
		for {
			doc, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				it.Stop()
				return fmt.Errorf("erro ao listar documentos para limpeza: %w", err)
			}
			if doc.Ref.ID == sentinelaCPF {
				continue
			}
			lote.Delete(doc.Ref)
			apagados++
		}
		it.Stop()
		if apagados == 0 {
			return nil
		}
		if _, err := lote.Commit(ctx); err != nil {
			return fmt.Errorf("erro ao apagar lote: %w", err)
		}
	}
}
