// Package config
package config

import (
	"fmt"
	"time"

	"github.com/cedric1982/fsd/internal/interfaces/log"
)

type FSDServerConfig struct {
	FSDName              string        `json:"fsd_name"`
	Host                 string        `json:"host"`
	Port                 uint          `json:"port"`
	Address              string        `json:"-"`
	MaxWorkers           int           `json:"max_workers"`
	Motd                 []string      `json:"motd"`
	NotifyCheck          string        `json:"notify_check"`
	NotifyDuration       time.Duration `json:"-"`
	LagCheck             string        `json:"lag_check"`
	LagDuration          time.Duration `json:"-"`
	CertFileCheck        string        `json:"cert_file_check"`
	CertFileDuration     time.Duration `json:"-"`
	WhazzupCheck         string        `json:"whazzup_check"`
	WhazzupDuration      time.Duration `json:"-"`
	ServerTimeout        string        `json:"server_timeout"`
	ServerTimeoutTime    time.Duration `json:"-"`
	ClientTimeout        string        `json:"client_timeout"`
	ClientTimeoutTime    time.Duration `json:"-"`
	SilentClientTimeout  string        `json:"silent_client_timeout"`
	SilentClientTimeTime time.Duration `json:"-"`
}

func defaultFSDServerConfig() *FSDServerConfig {
	return &FSDServerConfig{
		FSDName:             "fsd",
		Host:                "0.0.0.0",
		Port:                6809,
		MaxWorkers:          128,
		Motd:                make([]string, 0),
		NotifyCheck:         "300s",
		LagCheck:            "60s",
		CertFileCheck:       "30s",
		WhazzupCheck:        "60s",
		ServerTimeout:       "600s",
		ClientTimeout:       "300s",
		SilentClientTimeout: "36000s",
	}
}

func (config *FSDServerConfig) checkValid(_ log.LoggerInterface) *ValidResult {
	if result := checkPort(config.Port); result.IsFail() {
		return result
	}
	config.Address = fmt.Sprintf("%s:%d", config.Host, config.Port)

	intervals := []struct {
		field string
		value string
		dest  *time.Duration
	}{
		{"notify_check", config.NotifyCheck, &config.NotifyDuration},
		{"lag_check", config.LagCheck, &config.LagDuration},
		{"cert_file_check", config.CertFileCheck, &config.CertFileDuration},
		{"whazzup_check", config.WhazzupCheck, &config.WhazzupDuration},
		{"server_timeout", config.ServerTimeout, &config.ServerTimeoutTime},
		{"client_timeout", config.ClientTimeout, &config.ClientTimeoutTime},
		{"silent_client_timeout", config.SilentClientTimeout, &config.SilentClientTimeTime},
	}
	for _, interval := range intervals {
		duration, err := time.ParseDuration(interval.value)
		if err != nil {
			return ValidFail(fmt.Errorf("invalid json field %s, duration parse error, %v", interval.field, err))
		}
		*interval.dest = duration
	}
	return ValidPass()
}
