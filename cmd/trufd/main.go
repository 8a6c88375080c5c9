package main

import (
	"flag"
	"net/http"

	"github.com/sirupsen/logrus"

	"truf/internal/config"
	"truf/internal/ports/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	hub := ws.NewHub(cfg, log)
	go hub.Run()

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	log.WithField("addr", cfg.Addr).Info("truf server listening")
	if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
