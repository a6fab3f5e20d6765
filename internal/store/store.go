// Package store
package store

import (
	"github.com/cedric1982/fsd/internal/interfaces/config"
	"github.com/cedric1982/fsd/internal/interfaces/log"
)

// StoreServiceInterface mirrors a published snapshot file to its external
// home. MirrorSnapshot is called after the atomic rename, so the file at
// localPath is complete and immutable.
type StoreServiceInterface interface {
	MirrorSnapshot(localPath string, remoteName string) error
}

func NewStoreService(logger log.LoggerInterface, storeConfig *config.StoreConfig) StoreServiceInterface {
	switch storeConfig.SType {
	case config.OssStore:
		return NewALiYunOssStoreService(logger, storeConfig)
	case config.CosStore:
		return NewTencentCosStoreService(logger, storeConfig)
	default:
		return NewLocalStoreService(logger)
	}
}
