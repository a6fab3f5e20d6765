// Package config
package config

import (
	"fmt"

	"github.com/cedric1982/fsd/internal/interfaces/log"
	"github.com/thanhpk/randstr"
)

type HttpServerConfig struct {
	Enabled   bool   `json:"enabled"`
	Host      string `json:"host"`
	Port      uint   `json:"port"`
	Address   string `json:"-"`
	ProxyType int    `json:"proxy_type"`
	JWTSecret string `json:"jwt_secret"`
}

func defaultHttpServerConfig() *HttpServerConfig {
	return &HttpServerConfig{
		Enabled:   true,
		Host:      "0.0.0.0",
		Port:      6810,
		ProxyType: 0,
		JWTSecret: "",
	}
}

func (config *HttpServerConfig) checkValid(logger log.LoggerInterface) *ValidResult {
	if !config.Enabled {
		return ValidPass()
	}
	if result := checkPort(config.Port); result.IsFail() {
		return result
	}
	config.Address = fmt.Sprintf("%s:%d", config.Host, config.Port)
	if config.JWTSecret == "" {
		config.JWTSecret = randstr.String(32)
		logger.Warn("No jwt_secret configured, generated a random one, admin tokens will not survive a restart")
	}
	return ValidPass()
}
