package main

import (
	"context"
	"log"

	"github.com/sanketexe/legal-chatbot/internal/bootstrap"
	"github.com/sanketexe/legal-chatbot/internal/config"
	"github.com/sanketexe/legal-chatbot/internal/server"
	"github.com/sanketexe/legal-chatbot/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap application: %v", err)
	}
	defer container.Close()

	// 3. Initialize Server
	srv := server.New(cfg, container)

	// 4. Run Server
	log.Fatal(srv.Run())
}
