package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-while/go-placeholder/internal/config"
)

// applyFlags overrides config defaults with command-line flags if provided
func applyFlags(mainConfig *config.MainConfig) {
	webConfig := mainConfig.Server.WEB
	if webhost != "" {
		webConfig.ListenHost = webhost
		log.Printf("[WEB]: Overriding listen host with command-line flag: %s", webConfig.ListenHost)
	} else {
		log.Printf("[WEB]: No host flag provided, using default: %s", webConfig.ListenHost)
	}
	if webport != 0 {
		webConfig.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webConfig.ListenPort)
	} else {
		log.Printf("[WEB]: No port flag provided, using default: %d", webConfig.ListenPort)
	}
	if webdebug {
		webConfig.Debug = true
		log.Printf("[WEB]: Debug mode enabled via command-line flag")
	}
	if pprofAddr != "" {
		mainConfig.Debug.PprofAddr = pprofAddr
	}
	if updateFile != "" {
		mainConfig.Server.UpdateFile = updateFile
	}
}

// monitorUpdateFile watches for updateFilePath and signals shutdownChan once it shows up.
// The file is renamed to <name>.todo so a restart does not trigger again.
func monitorUpdateFile(ctx context.Context, updateFilePath string, shutdownChan chan<- bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			log.Printf("[WEB]: Warning: failed to close watcher: %v", cerr)
		}
	}()

	dir := filepath.Dir(updateFilePath)
	name := filepath.Base(updateFilePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Printf("[WEB]: Update file monitor started, watching for '%s'", updateFilePath)

	// file may already exist before the watcher was registered
	if _, err := os.Stat(updateFilePath); err == nil {
		if triggerUpdate(updateFilePath, shutdownChan) {
			return nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name || event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if triggerUpdate(updateFilePath, shutdownChan) {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[WEB]: Watcher error: %v", err)
		}
	}
}

// triggerUpdate renames the update file and signals shutdown; false means keep watching
func triggerUpdate(updateFilePath string, shutdownChan chan<- bool) bool {
	log.Printf("[WEB]: Update file '%s' detected, triggering graceful shutdown", updateFilePath)
	if err := os.Rename(updateFilePath, updateFilePath+".todo"); err != nil {
		log.Printf("[WEB]: Warning: Failed to rename update file '%s': %v", updateFilePath, err)
		return false
	}
	select {
	case shutdownChan <- true:
		log.Printf("[WEB]: Shutdown signal sent via update file monitor")
	default:
		log.Printf("[WEB]: Shutdown channel already signaled")
	}
	return true
}
