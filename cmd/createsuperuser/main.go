package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bitacora/internal/config"
	"github.com/bitacora/internal/db"
	"github.com/bitacora/internal/logger"
	"go.uber.org/zap"
)

// createsuperuser 创建一个已激活的超级用户；若用户名已存在则不做任何修改。
func main() {
	username := flag.String("username", "", "nombre de usuario")
	password := flag.String("password", "", "clave")
	email := flag.String("email", "", "correo electrónico")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "uso: createsuperuser -username <nombre> -password <clave> [-email <correo>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gdb, err := db.Open(db.Options{Driver: cfg.DatabaseDriver, Path: cfg.DatabasePath, DSN: cfg.DatabaseDSN})
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}

	if err := db.EnsureSuperuser(gdb, *username, *password, *email); err != nil {
		log.Fatal("create superuser failed", zap.Error(err))
	}
	log.Info("superuser ready", zap.String("username", *username))
}
