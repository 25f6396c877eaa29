// Package storage persists perft results, shell preferences and run
// statistics in BadgerDB.
package storage

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chesskernel"

// dataDirs says where a platform keeps per-user application data: an
// environment variable that overrides the location, then a path below the
// home directory.
type dataDirs struct {
	env  string
	home []string
}

// userDataDirs lists the platforms that do not follow the XDG layout.
var userDataDirs = map[string]dataDirs{
	"darwin":  {home: []string{"Library", "Application Support"}},
	"windows": {env: "APPDATA", home: []string{"AppData", "Roaming"}},
}

var xdgDataDirs = dataDirs{env: "XDG_DATA_HOME", home: []string{".local", "share"}}

// dataHome resolves the per-user data directory for goos.
func dataHome(goos string, getenv func(string) string, homeDir func() (string, error)) (string, error) {
	dirs, ok := userDataDirs[goos]
	if !ok {
		dirs = xdgDataDirs
	}
	if dirs.env != "" {
		if dir := getenv(dirs.env); dir != "" {
			return dir, nil
		}
	}

	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, dirs.home...)...), nil
}

// GetDataDir returns the chesskernel directory inside the user data directory,
// creating it if needed: ~/Library/Application Support on macOS, %APPDATA% on
// Windows and $XDG_DATA_HOME or ~/.local/share elsewhere.
func GetDataDir() (string, error) {
	base, err := dataHome(runtime.GOOS, os.Getenv, os.UserHomeDir)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, appName)
	return dir, os.MkdirAll(dir, 0o755)
}

// GetDatabaseDir returns the BadgerDB directory below GetDataDir.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return "", err
	}
	log.Printf("Database directory: %s", dbDir)
	return dbDir, nil
}
