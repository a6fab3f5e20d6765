// Package interfaces
package interfaces

import (
	"github.com/cedric1982/fsd/internal/interfaces/config"
)

type ConfigManagerInterface interface {
	Config() *config.Config
	SaveConfig() error
	// Pump re-reads the configuration file when its mtime changed and raises
	// the Changed flag on groups the reload touched.
	Pump()
}
