package api

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/caohoangphucs/giadungtinthanh/internal/api/handlers"
	"github.com/caohoangphucs/giadungtinthanh/internal/api/middleware"
	"github.com/caohoangphucs/giadungtinthanh/internal/config"
)

func SetupRouter() http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	apiMux := http.NewServeMux()

	// ---------- AUTH ----------
	apiMux.HandleFunc("POST /auth/login", handlers.AdminLogin)
	apiMux.Handle("GET /auth/me", middleware.RequireAdmin(http.HandlerFunc(handlers.AdminMe)))

	// ---------- FILES ----------
	apiMux.HandleFunc("POST /files/upload/init", handlers.InitUpload)
	apiMux.HandleFunc("POST /files/upload/chunk", handlers.UploadChunk)
	apiMux.HandleFunc("POST /files/upload/complete", handlers.CompleteUpload)
	apiMux.HandleFunc("GET /files/{file_id}", handlers.DownloadFile)
	apiMux.Handle("DELETE /files/{file_id}", middleware.RequireAdmin(http.HandlerFunc(handlers.DeleteFile)))

	// ---------- CATALOG ----------
	apiMux.HandleFunc("GET /categories", handlers.ListCategories)
	apiMux.HandleFunc("POST /categories", handlers.CreateCategory)
	apiMux.HandleFunc("GET /categories/{category_id}", handlers.GetCategory)
	apiMux.HandleFunc("GET /categories/slug/{slug}", handlers.GetCategoryBySlug)
	apiMux.HandleFunc("PUT /categories/{category_id}", handlers.UpdateCategory)
	apiMux.HandleFunc("DELETE /categories/{category_id}", handlers.DeleteCategory)

	apiMux.HandleFunc("GET /products", handlers.ListProducts)
	apiMux.HandleFunc("POST /products", handlers.CreateProduct)
	apiMux.HandleFunc("GET /products/category/{slug}", handlers.ListProductsByCategorySlug)
	apiMux.HandleFunc("GET /products/{product_id}", handlers.GetProduct)
	apiMux.HandleFunc("PUT /products/{product_id}", handlers.UpdateProduct)
	apiMux.HandleFunc("DELETE /products/{product_id}", handlers.DeleteProduct)

	// ---------- BACKUP (admin only) ----------
	backupMux := http.NewServeMux()
	backupMux.HandleFunc("POST /start", handlers.StartBackup)
	backupMux.HandleFunc("GET /status", handlers.BackupStatus)
	backupMux.HandleFunc("GET /download", handlers.DownloadBackup)
	apiMux.Handle("/backup/",
		http.StripPrefix("/backup", middleware.RequireAdmin(backupMux)),
	)

	mainMux.Handle("/api/",
		http.StripPrefix("/api", apiMux),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
