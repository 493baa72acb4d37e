// cmd/web/main.go
package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/EduardoCSampaio/CentralBancaria/internal/api/handlers"
	"github.com/EduardoCSampaio/CentralBancaria/internal/api/middleware"
	"github.com/EduardoCSampaio/CentralBancaria/internal/api/responses"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/auth"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/clientes"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/planilha"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/validacao"
	"github.com/EduardoCSampaio/CentralBancaria/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// initStore escolhe o backend da coleção: Postgres (Supabase) quando
// DATABASE_URL está configurada, senão Firestore.
func initStore(ctx context.Context) storage.ClienteStore {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		store, err := storage.NewPostgresStore(ctx, databaseURL, os.Getenv("CLIENTES_TABELA"))
		if err != nil {
			log.Fatalf("Erro ao inicializar o store Postgres: %v\n", err)
		}
		log.Println("Conectado com sucesso ao banco Postgres")
		return store
	}

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		projectID = "central-bancaria-db"
	}
	databaseID := os.Getenv("FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		databaseID = projectID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		log.Fatalf("Erro ao inicializar cliente Firestore para o banco '%s': %v\n", databaseID, err)
	}
	log.Printf("Conectado com sucesso ao Firestore, banco de dados: %s", databaseID)
	return storage.NewFirestoreStore(client, os.Getenv("CLIENTES_TABELA"))
}

func main() {
	_ = godotenv.Load()
	responses.InitLogger()
	ctx := context.Background()

	store := initStore(ctx)
	clientesService := clientes.NewService(store, responses.Logger())
	decoderService := planilha.NewService()
	authService := auth.NewService()
	validacaoService := validacao.NewService()

	authHandler := handlers.NewAuthHandler(authService)
	importHandler := handlers.NewImportHandler(decoderService, clientesService)
	clientesHandler := handlers.NewClientesHandler(clientesService, validacaoService)

	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/login", authHandler.Login)
		protected := apiV1.Group("/")
		protected.Use(middleware.AuthMiddleware(nil))
		{
			protected.POST("/planilhas/decodificar", importHandler.HandleDecodificar)
			protected.POST("/clientes/importar", importHandler.HandleImportar)
			protected.GET("/clientes", clientesHandler.HandleBuscar)
			protected.GET("/clientes/cpf/:cpf", clientesHandler.HandleConsultarCPF)
			protected.GET("/clientes/exportar", clientesHandler.HandleExportar)
			protected.GET("/clientes/estatisticas", clientesHandler.HandleEstatisticas)
			protected.POST("/clientes/validar", clientesHandler.HandleValidar)

			admin := protected.Group("/")
			admin.Use(middleware.PermissionMiddleware("admin"))
			{
				admin.POST("/correcoes/datas", clientesHandler.HandleCorrigirDatas)
				admin.POST("/correcoes/valores", clientesHandler.HandleCorrigirValores)
				admin.DELETE("/clientes", clientesHandler.HandleLimpar)
			}
		}
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Servidor iniciado e escutando na porta %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Falha ao iniciar o servidor: ", err)
	}
}
