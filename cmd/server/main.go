package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"boardsync/internal/access"
	"boardsync/internal/auth"
	"boardsync/internal/board"
	"boardsync/internal/config"
	"boardsync/internal/hub"
	"boardsync/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	gin.SetMode(cfg.GinMode)

	var st *board.Store
	var persister *board.BoltPersister
	var flushStop chan struct{}
	var flushDone chan struct{}
	if cfg.BoardDBPath != "" {
		persister, err = board.OpenBolt(cfg.BoardDBPath)
		if err != nil {
			log.Fatal(err)
		}

		st, err = board.NewWithPersister(persister)
		if err != nil {
			log.Fatal(err)
		}

		flushStop = make(chan struct{})
		flushDone = make(chan struct{})
		go func() {
			st.FlushLoop(cfg.FlushInterval, flushStop)
			close(flushDone)
		}()
	} else {
		log.Printf("board_db_path not set, boards are in-memory only")
		st = board.New()
	}

	tokenCfg := auth.TokenConfig{
		Secret: cfg.TokenSecret,
		Expiry: cfg.TokenExpiry,
		Issuer: "boardsync",
	}

	router := server.NewRouter(server.Deps{
		Store:       st,
		Hub:         hub.New(),
		Memberships: access.NewRoster(cfg.OpenProjects),
		TokenConfig: tokenCfg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("listening on :%d", cfg.Port)
	runErr := server.Run(ctx, cfg, router)

	// The flush loop does a final flush on the way out; wait for it
	// before closing the database so no accepted mutation is lost.
	if persister != nil {
		close(flushStop)
		<-flushDone
		if err := persister.Close(); err != nil {
			log.Printf("board: close persister: %v", err)
		}
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
	log.Printf("server stopped")
}
