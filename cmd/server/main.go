package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stellarlinkco/bizbench/api"
	"github.com/stellarlinkco/bizbench/internal/config"
	"github.com/stellarlinkco/bizbench/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "path to config file")
		addr       = flag.String("addr", ":8080", "listen address")
	)
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := api.NewServer(st)
	if err != nil {
		return err
	}
	return srv.Run(addr)
}
