package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/caohoangphucs/giadungtinthanh/internal/api"
	"github.com/caohoangphucs/giadungtinthanh/internal/api/handlers"
	"github.com/caohoangphucs/giadungtinthanh/internal/backup"
	"github.com/caohoangphucs/giadungtinthanh/internal/cache"
	"github.com/caohoangphucs/giadungtinthanh/internal/config"
	"github.com/caohoangphucs/giadungtinthanh/internal/preview"
	"github.com/caohoangphucs/giadungtinthanh/internal/repositories"
	"github.com/caohoangphucs/giadungtinthanh/internal/upload"
)

func main() {
	ctx := context.Background()
	envs := config.Envs

	repositories.ConnectDatabase()

	store, err := repositories.NewObjectStore(ctx, envs.Minio)
	if err != nil {
		log.Fatal("Failed to initialize object store: ", err)
	}

	chunks, err := upload.NewDirStore(envs.ChunkDir)
	if err != nil {
		log.Fatal("Failed to initialize chunk store: ", err)
	}

	handlers.Uploads = &upload.Service{
		Chunks:          chunks,
		Store:           store,
		Files:           repositories.NewFileRepository(repositories.DB),
		Cache:           cache.NewRedisCache(envs.RedisAddr),
		BaseURL:         envs.DomainURL,
		GeneratePreview: preview.Generate,
	}

	handlers.BackupJobs = backup.NewJobStore()
	handlers.BackupRunner = &backup.Runner{
		Jobs:    handlers.BackupJobs,
		Store:   store,
		DBURL:   envs.DB_URL,
		WorkDir: envs.BackupDir,
	}

	go upload.NewReaper(chunks).Run(ctx)

	mux := api.SetupRouter()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", envs.Port),
		Handler: mux,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Minute, // chunk uploads can be slow
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting catalog server on port: %s", envs.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", envs.Port, err)
	}
}
