package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ecopackai/ecopack/pkg/engine"
)

var (
	portFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "Port on which to run the HTTP server (optional, default: 8080)",
	}

	serverCmd = &cli.Command{
		Name:      "server",
		Usage:     "Run the recommendation API server",
		UsageText: "ecopack server --port 8080",
		Action:    cmdRunServer,
		Flags: []cli.Flag{
			portFlag,
		},
	}
)

func cmdRunServer(c *cli.Context) error {
	if c.IsSet(portFlag.Name) {
		serverPort = c.Int(portFlag.Name)
	}

	db := getDBOrFail()
	defer db.Close()

	// A missing model dir or empty catalog is not fatal, the server
	// still serves stats and materials while /api/recommend returns 503.
	eng, err := engine.Load(db, modelDir)
	if err != nil {
		log.Warnf("recommendation engine unavailable: %v", err)
		eng = nil
	}

	h := newHandler(db, eng)

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	h.register(r)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", serverPort),
		Handler:        r,
		ReadTimeout:    300 * time.Second,
		WriteTimeout:   300 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	done := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			done <- errors.Wrap(err, "server error")
			return
		}
		done <- nil
	}()
	log.Infof("server started on port %d", serverPort)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-done:
		return err
	case <-stop:
	}

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server shutdown error")
	}
	return <-done
}
