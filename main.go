package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Arkaprabha13/KYC/client"
	"github.com/Arkaprabha13/KYC/config"
	"github.com/Arkaprabha13/KYC/handler"
	"github.com/Arkaprabha13/KYC/metrics"
	"github.com/Arkaprabha13/KYC/service"
	"github.com/Arkaprabha13/KYC/store"
)

func main() {
	// Load configuration (defaults -> optional KYC_CONFIG yaml -> KYC_* env)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: no Gemini API key configured, extraction requests will be rejected")
	}

	// Initialize metrics registry
	m := metrics.New()

	// Initialize Gemini client and the ordered backend candidate list
	geminiClient := client.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey)

	var backends []service.Backend
	for _, model := range cfg.Models {
		backends = append(backends, service.NewGeminiBackend(model, geminiClient))
	}
	if cfg.EnableLocalFallback {
		tesseractClient := client.NewTesseractClient(cfg.TessdataPrefix)
		defer tesseractClient.Close()
		backends = append(backends, service.NewLocalBackend(tesseractClient))
		log.Println("Local Tesseract fallback backend enabled")
	}

	// Initialize the tabular store
	excelStore := store.NewExcelStore(cfg.StorePath)
	if err := excelStore.Open(); err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	// Initialize service layer
	extractionService := service.NewExtractionService(
		backends,
		service.NewPDFProcessor(),
		cfg.MaxImageDimension,
		m,
	)

	// Initialize handler layer
	kycHandler := handler.NewKYCHandler(extractionService, geminiClient, cfg.MaxFileSize)
	recordHandler := handler.NewRecordHandler(excelStore, m)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "KYC Data Extraction",
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/credentials/validate", kycHandler.ValidateCredentials)

		kyc := api.Group("/kyc")
		{
			kyc.POST("/extract", kycHandler.Extract)
			kyc.GET("/records", recordHandler.ListRecords)
			kyc.POST("/records", recordHandler.SaveRecord)
			kyc.GET("/records/export", recordHandler.ExportStore)
			kyc.POST("/export/excel", recordHandler.ExportRecordExcel)
			kyc.POST("/export/json", recordHandler.ExportRecordJSON)
		}
	}

	// Start server
	log.Printf("Starting KYC Data Extraction Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
