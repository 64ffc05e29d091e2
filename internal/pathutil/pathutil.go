// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/somnia-sleep/somnia/internal/osutil"
)

const appDir = "somnia"

// Paths holds the absolute locations of somnia's files.
type Paths struct {
	ConfigFile    string
	DotEnvFile    string
	DBFile        string
	LogFile       string
	RecordingsDir string
}

// Resolve computes the application paths under the XDG base directories.
// A non-empty SOMNIA_ENV gives every file a suffixed name so separate
// environments do not share state.
func Resolve() (*Paths, error) {
	configName, dbName, logName := "config.yml", "somnia.db", "somnia.log"
	recordings := "recordings"

	if env := strings.TrimSpace(os.Getenv("SOMNIA_ENV")); env != "" {
		configName = fmt.Sprintf("config_%s.yml", env)
		dbName = fmt.Sprintf("somnia_%s.db", env)
		logName = fmt.Sprintf("somnia_%s.log", env)
		recordings = "recordings_" + env
	}

	configFile, err := xdg.ConfigFile(filepath.Join(appDir, configName))
	if err != nil {
		return nil, errResolve.Wrap(err)
	}

	dataDir, err := xdg.DataFile(appDir)
	if err != nil {
		return nil, errResolve.Wrap(err)
	}

	if err := os.MkdirAll(dataDir, osutil.DirPermission); err != nil {
		return nil, errResolve.Wrap(err)
	}

	return &Paths{
		ConfigFile:    configFile,
		DotEnvFile:    filepath.Join(filepath.Dir(configFile), ".env"),
		DBFile:        filepath.Join(dataDir, dbName),
		LogFile:       filepath.Join(dataDir, "log", logName),
		RecordingsDir: filepath.Join(dataDir, recordings),
	}, nil
}
