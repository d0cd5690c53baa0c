package handlers

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCleanupService removes stale conversion work directories left behind
// when the process was killed mid-conversion. Normal conversions clean up
// after themselves.
type FileCleanupService struct {
	tempDir string
	prefix  string
	maxAge  time.Duration
	ticker  *time.Ticker
	done    chan bool
}

func NewFileCleanupService(tempDir, prefix string, maxAge time.Duration) *FileCleanupService {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &FileCleanupService{
		tempDir: tempDir,
		prefix:  prefix,
		maxAge:  maxAge,
		done:    make(chan bool),
	}
}

func (fcs *FileCleanupService) Start() {
	fcs.ticker = time.NewTicker(1 * time.Hour) // Run cleanup every hour
	go func() {
		for {
			select {
			case <-fcs.done:
				return
			case <-fcs.ticker.C:
				fcs.cleanupStaleWorkDirs()
			}
		}
	}()
	log.Println("File cleanup service started")
}

func (fcs *FileCleanupService) Stop() {
	if fcs.ticker != nil {
		fcs.ticker.Stop()
	}
	fcs.done <- true
	log.Println("File cleanup service stopped")
}

func (fcs *FileCleanupService) cleanupStaleWorkDirs() {
	entries, err := os.ReadDir(fcs.tempDir)
	if err != nil {
		log.Printf("Error during cleanup of %s: %v", fcs.tempDir, err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), fcs.prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > fcs.maxAge {
			path := filepath.Join(fcs.tempDir, entry.Name())
			log.Printf("Cleaning up stale work directory: %s", path)
			if err := os.RemoveAll(path); err != nil {
				log.Printf("Error removing %s: %v", path, err)
			}
		}
	}
}
