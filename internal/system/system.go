// Package system holds host helpers: worker sizing and scene file lookup.
package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Workers returns the number of render workers to use: the physical core
// count, capped at limit when limit > 0.
func Workers(limit int) int {
	n, err := cpu.Counts(false)
	if err != nil || n < 1 {
		if err != nil {
			log.Printf("[!] Could not read CPU count: %v", err)
		}
		n = runtime.NumCPU()
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// ResolveScene returns path unchanged when it names a file. For a directory
// it returns the most recently modified scene file inside it.
func ResolveScene(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}
	return FindLatestScene(path)
}

// FindLatestScene returns the newest .yaml or .yml file in dir.
func FindLatestScene(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !isScene(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no scene files found in %s", dir)
	}
	return latestFile, nil
}

func isScene(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
