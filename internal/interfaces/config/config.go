// Package config
package config

import (
	"errors"
	"fmt"

	"github.com/cedric1982/fsd/internal/interfaces/log"
)

type Config struct {
	ConfigVersion string          `json:"config_version"`
	System        *SystemConfig   `json:"system"`
	Server        *ServerConfig   `json:"server"`
	Database      *DatabaseConfig `json:"database"`
	Store         *StoreConfig    `json:"store"`
}

func DefaultConfig() *Config {
	return &Config{
		ConfigVersion: ConfVersion.String(),
		System:        defaultSystemConfig(),
		Server:        defaultServerConfig(),
		Database:      defaultDatabaseConfig(),
		Store:         defaultStoreConfig(),
	}
}

func (c *Config) CheckValid(logger log.LoggerInterface) *ValidResult {
	if version, err := newVersion(c.ConfigVersion); err != nil {
		return ValidFailWith(errors.New("version string parse fail"), err)
	} else if result := ConfVersion.checkVersion(version); result != AllMatch {
		return ValidFail(fmt.Errorf("config version mismatch, expected %s, got %s", ConfVersion.String(), version.String()))
	}
	if result := c.System.checkValid(logger); result.IsFail() {
		return result
	}
	if result := c.Server.checkValid(logger); result.IsFail() {
		return result
	}
	if result := c.Database.checkValid(logger); result.IsFail() {
		return result
	}
	if result := c.Store.checkValid(logger); result.IsFail() {
		return result
	}
	return ValidPass()
}

type ServerConfig struct {
	FSDServer  *FSDServerConfig  `json:"fsd_server"`
	HttpServer *HttpServerConfig `json:"http_server"`
}

func defaultServerConfig() *ServerConfig {
	return &ServerConfig{
		FSDServer:  defaultFSDServerConfig(),
		HttpServer: defaultHttpServerConfig(),
	}
}

func (config *ServerConfig) checkValid(logger log.LoggerInterface) *ValidResult {
	if result := config.FSDServer.checkValid(logger); result.IsFail() {
		return result
	}
	if result := config.HttpServer.checkValid(logger); result.IsFail() {
		return result
	}
	return ValidPass()
}

func checkPort(port uint) *ValidResult {
	if port == 0 || port > 65535 {
		return ValidFail(fmt.Errorf("invalid port %d, port must in (0, 65535]", port))
	}
	return ValidPass()
}
