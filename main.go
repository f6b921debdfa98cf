package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/ddvk/rmshapes/config"
	"github.com/ddvk/rmshapes/log"
	"github.com/ddvk/rmshapes/shell"
)

func main() {
	serverMode := flag.Bool("server", false, "run the HTTP API server")
	addr := flag.String("addr", "", "listen address, overrides server.addr")
	tokenTTL := flag.Duration("token", 0, "print an API bearer token valid for the given duration and exit")
	flag.Parse()

	log.InitLog()

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Error.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if *tokenTTL > 0 {
		if cfg.Server.Secret == "" {
			log.Error.Fatal("no server secret configured")
		}
		token, err := IssueToken([]byte(cfg.Server.Secret), "rmshapes", *tokenTTL)
		if err != nil {
			log.Error.Fatalf("Failed to sign token: %v", err)
		}
		fmt.Println(token)
		return
	}

	if *serverMode {
		runServerMode(cfg)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := shell.RunShell(ctx, cfg, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "Error: ", err)
		stop()
		os.Exit(1)
	}
}
