// Placeholder web server for go-placeholder
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-placeholder/internal/config"
	"github.com/go-while/go-placeholder/internal/web"
)

var (
	// command-line flags
	webhost     string
	webport     int
	webdebug    bool
	pprofAddr   string
	updateFile  string
	showVersion bool
)

var appVersion = "-unset-"

var Prof *prof.Profiler

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&webhost, "webhost", "", "Web server bind address (default: 0.0.0.0)")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 5000)")
	flag.BoolVar(&webdebug, "debug", false, "Enable gin debug mode and access log (default: false)")
	flag.StringVar(&pprofAddr, "pprof", "", "Serve pprof on this address, e.g. 127.0.0.1:51111 (default: disabled)")
	flag.StringVar(&updateFile, "updatefile", "", "Graceful shutdown when this file appears (default: .update)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(appVersion)
		os.Exit(0)
	}

	mainConfig := config.NewDefaultConfig()
	log.Printf("Starting go-placeholder: Web Server (version: %s)", appVersion)
	log.Printf("[WEB]: Web Parsed flags - host: %q, port: %d, debug: %t", webhost, webport, webdebug)

	webConfig := mainConfig.Server.WEB
	applyFlags(mainConfig)

	if err := webConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}
	log.Printf("[WEB]: Using WEB configuration: %#v", webConfig)

	if mainConfig.Debug.PprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(mainConfig.Debug.PprofAddr)
		Prof.StartMemProfile(mainConfig.Debug.MemProfileEvery, mainConfig.Debug.MemProfileFor)
		log.Printf("[WEB]: pprof enabled on %s", mainConfig.Debug.PprofAddr)
	}

	server := web.NewServer(webConfig)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Printf("[WEB]: Starting web server on http://%s", server.Addr())

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webServerErrChan <- err
		}
	}()

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	updateFileChan := make(chan bool, 1)
	go func() {
		if err := monitorUpdateFile(monitorCtx, mainConfig.Server.UpdateFile, updateFileChan); err != nil {
			log.Printf("[WEB]: Warning: update file monitor stopped: %v", err)
		}
	}()

	log.Printf("[WEB]: Press Ctrl+C to gracefully shutdown...")

	// Wait for either shutdown signal, server error, or update file
	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	case <-updateFileChan:
		log.Printf("[WEB]: Update file detected, initiating graceful shutdown for update...")
	}
	stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), mainConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("[WEB]: Failed to shutdown web server: %v", err)
	}
	log.Printf("[WEB]: Graceful shutdown completed after %s uptime", server.Uptime())
} // end main
