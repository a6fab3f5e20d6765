// Package config
package config

import (
	"fmt"
	"slices"

	"github.com/cedric1982/fsd/internal/interfaces/log"
)

type StoreType string

const (
	LocalStore StoreType = "local"
	OssStore   StoreType = "oss"
	CosStore   StoreType = "cos"
)

var allowedStoreType = []StoreType{LocalStore, OssStore, CosStore}

// StoreConfig selects where published snapshot files are mirrored after a
// successful rename. The local store leaves them where the publisher wrote
// them; oss/cos additionally upload to object storage.
type StoreConfig struct {
	Type            string    `json:"type"`
	SType           StoreType `json:"-"`
	AccessId        string    `json:"access_id"`
	AccessKey       string    `json:"access_key"`
	Region          string    `json:"region"`
	Bucket          string    `json:"bucket"`
	RemoteStorePath string    `json:"remote_store_path"`
	UseInternalUrl  bool      `json:"use_internal_url"`
	CdnDomain       string    `json:"cdn_domain"`
}

func defaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Type:            "local",
		RemoteStorePath: "whazzup",
	}
}

func (config *StoreConfig) checkValid(_ log.LoggerInterface) *ValidResult {
	config.SType = StoreType(config.Type)
	if !slices.Contains(allowedStoreType, config.SType) {
		return ValidFail(fmt.Errorf("store type %s is not allowed, support store is %v, please check the configuration file", config.SType, allowedStoreType))
	}
	if config.SType != LocalStore {
		if config.AccessId == "" || config.AccessKey == "" || config.Bucket == "" {
			return ValidFail(fmt.Errorf("store type %s requires access_id, access_key and bucket", config.SType))
		}
	}
	return ValidPass()
}
