// internal/storage/postgres.go
package storage

import (
	"context"
	"fmt"

	"github.com/EduardoCSampaio/CentralBancaria/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// tamanhoLotePostgres limita as linhas por comando no upsert em lote.
const tamanhoLotePostgres = 1000

// PostgresStore guarda os clientes em uma tabela Postgres (o banco hospedado
// do Supabase) com o CPF como chave primária.
type PostgresStore struct {
	pool   *pgxpool.Pool
	tabela string
}

// NewPostgresStore abre o pool de conexões a partir da URL do banco.
func NewPostgresStore(ctx context.Context, databaseURL, tabela string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao interpretar a configuração do banco: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao banco: %w", err)
	}
	if tabela == "" {
		tabela = "clientes"
	}
	return &PostgresStore{pool: pool, tabela: tabela}, nil
}

// Close encerra o pool de conexões.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Upsert(ctx context.Context, clientes []domain.Cliente) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			cpf, beneficio, nome, valor_beneficio, data_nascimento,
			idade, codigo_especie, margem_disponivel, margem_rmc, telefone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (cpf) DO UPDATE SET
			beneficio = EXCLUDED.beneficio,
			nome = EXCLUDED.nome,
			valor_beneficio = EXCLUDED.valor_beneficio,
			data_nascimento = EXCLUDED.data_nascimento,
			idade = EXCLUDED.idade,
			codigo_especie = EXCLUDED.codigo_especie,
			margem_disponivel = EXCLUDED.margem_disponivel,
			margem_rmc = EXCLUDED.margem_rmc,
			telefone = EXCLUDED.telefone
	`, s.tabela)

	for inicio := 0; inicio < len(clientes); inicio += tamanhoLotePostgres {
		fim := inicio + tamanhoLotePostgres
		if fim > len(clientes) {
			fim = len(clientes)
		}

		lote := &pgx.Batch{}
		for _, c := range clientes[inicio:fim] {
			lote.Queue(query,
				c.CPF, c.Beneficio, c.Nome, c.ValorBeneficio, c.DataNascimento,
				c.Idade, c.CodigoEspecie, c.MargemDisponivel, c.MargemRMC, c.Telefone)
		}
		resultados := s.pool.SendBatch(ctx, lote)
		if err := resultados.Close(); err != nil {
			return fmt.Errorf("erro ao gravar lote no banco: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) SelectRange(ctx context.Context, offset, limit int) ([]domain.Cliente, int64, error) {
	query := fmt.Sprintf(`
		SELECT cpf, beneficio, nome, valor_beneficio, data_nascimento,
		       idade, codigo_especie, margem_disponivel, margem_rmc, telefone,
		       COUNT(*) OVER() AS total
		FROM %s
		ORDER BY cpf
		OFFSET $1 LIMIT $2
	`, s.tabela)

	rows, err := s.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, TotalDesconhecido, fmt.Errorf("erro ao consultar página do banco: %w", err)
	}
	defer rows.Close()

	var clientes []domain.Cliente
	total := TotalDesconhecido
	for rows.Next() {
		var c domain.Cliente
		if err := rows.Scan(&c.CPF, &c.Beneficio, &c.Nome, &c.ValorBeneficio, &c.DataNascimento,
			&c.Idade, &c.CodigoEspecie, &c.MargemDisponivel, &c.MargemRMC, &c.Telefone, &total); err != nil {
			return nil, TotalDesconhecido, fmt.Errorf("erro ao ler linha: %w", err)
		}
		clientes = append(clientes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, TotalDesconhecido, fmt.Errorf("erro ao percorrer página: %w", err)
	}
	return clientes, total, nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context, sentinelaCPF string) error {
	if sentinelaCPF == "" {
		return fmt.Errorf("limpeza total exige a sentinela de filtro")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE cpf <> $1`, s.tabela)
	if _, err := s.pool.Exec(ctx, query, sentinelaCPF); err != nil {
		return fmt.Errorf("erro ao limpar a tabela: %w", err)
	}
	return nil
}
