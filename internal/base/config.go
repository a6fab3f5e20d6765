// Package base
package base

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	. "github.com/cedric1982/fsd/internal/interfaces/config"
	"github.com/cedric1982/fsd/internal/interfaces/global"
	"github.com/cedric1982/fsd/internal/interfaces/log"
)

func readConfig(logger log.LoggerInterface) (*Config, *ValidResult) {
	config := DefaultConfig()

	// 读取配置文件
	if bytes, err := os.ReadFile(*global.ConfigFilePath); err != nil {
		// 如果配置文件不存在，创建默认配置
		if err := saveConfig(config); err != nil {
			return nil, ValidFailWith(errors.New("fail to save configuration file while creating configuration file"), err)
		}
		return nil, ValidFail(errors.New("the configuration file does not exist and has been created. Please try again after editing the configuration file"))
	} else if err := json.Unmarshal(bytes, config); err != nil {
		// 解析JSON配置
		return nil, ValidFailWith(errors.New("the configuration file does not contain valid JSON"), err)
	} else if result := config.CheckValid(logger); result.IsFail() {
		return nil, result
	}
	return config, ValidPass()
}

func saveConfig(config *Config) error {
	if writer, err := os.OpenFile(*global.ConfigFilePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, global.DefaultFilePermissions); err != nil {
		return err
	} else if data, err := json.MarshalIndent(config, "", "\t"); err != nil {
		return err
	} else if _, err = writer.Write(data); err != nil {
		return err
	} else if err := writer.Close(); err != nil {
		return err
	}
	return nil
}

type Manager struct {
	logger log.LoggerInterface
	config *Config
	mtime  time.Time
}

func NewManager(logger log.LoggerInterface) *Manager {
	manager := &Manager{
		logger: logger,
	}
	config, result := readConfig(logger)
	if result.IsFail() {
		logger.Fatal(result.Error().Error())
		panic(result.OriginErr())
	}
	manager.config = config
	if info, err := os.Stat(*global.ConfigFilePath); err == nil {
		manager.mtime = info.ModTime()
	}
	return manager
}

func (manager *Manager) Config() *Config {
	return manager.config
}

func (manager *Manager) SaveConfig() error {
	return saveConfig(manager.config)
}

// Pump re-reads the configuration file when it was edited on disk. A bad
// edit keeps the previous configuration; the system group's Changed flag is
// raised when its identity fields differ so the controller reconfigures
// myserver and renotifies the federation.
func (manager *Manager) Pump() {
	info, err := os.Stat(*global.ConfigFilePath)
	if err != nil || !info.ModTime().After(manager.mtime) {
		return
	}
	manager.mtime = info.ModTime()

	config, result := readConfig(manager.logger)
	if result.IsFail() {
		manager.logger.WarnF("Configuration reload failed, keeping previous configuration: %v", result.Error())
		return
	}

	if *manager.config.System != *config.System {
		config.System.Changed = true
	}
	manager.config = config
	manager.logger.Info("Configuration reloaded")
}
