// Package config
package config

import (
	"errors"

	"github.com/cedric1982/fsd/internal/interfaces/log"
)

// SystemConfig is the identity of this federation node. Changed is raised by
// the config manager when a reload touched this group and cleared by the
// controller once myserver has been reconfigured.
type SystemConfig struct {
	Ident        string `json:"ident"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Hostname     string `json:"hostname"`
	Location     string `json:"location"`
	Silent       bool   `json:"silent"`
	Certificates string `json:"certificates"`
	Whazzup      string `json:"whazzup"`
	Changed      bool   `json:"-"`
}

func defaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		Ident:        "FSD",
		Name:         "FSD Server",
		Email:        "admin@example.com",
		Hostname:     "localhost",
		Location:     "Unknown",
		Silent:       false,
		Certificates: "cert.db",
		Whazzup:      "whazzup.txt",
	}
}

func (config *SystemConfig) checkValid(_ log.LoggerInterface) *ValidResult {
	if config.Ident == "" {
		return ValidFail(errors.New("invalid json field system.ident, ident must not be empty"))
	}
	if config.Hostname == "" {
		return ValidFail(errors.New("invalid json field system.hostname, hostname must not be empty"))
	}
	if config.Whazzup == "" {
		return ValidFail(errors.New("invalid json field system.whazzup, whazzup must not be empty"))
	}
	return ValidPass()
}
