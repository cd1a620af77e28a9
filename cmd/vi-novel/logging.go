package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	logFileName       = "vi-novel.log"
	defaultMaxLogSize = 10 * 1024 * 1024
)

// setupLogging routes the standard logger to dir/vi-novel.log when debug is set
// Output is discarded otherwise so nothing reaches the terminal under tcell
// A log file larger than maxSize is rotated aside with a timestamp suffix
func setupLogging(debug bool, dir string, maxSize int64) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}
	if maxSize <= 0 {
		maxSize = defaultMaxLogSize
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(dir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxSize {
		rotated := filepath.Join(dir, fmt.Sprintf("vi-novel-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rotate log file: %v\n", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("=== vi-novel started ===")
	return f
}
