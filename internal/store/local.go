// Package store
package store

import (
	"github.com/cedric1982/fsd/internal/interfaces/log"
)

// LocalStoreService leaves snapshots where the publisher wrote them.
type LocalStoreService struct {
	logger log.LoggerInterface
}

func NewLocalStoreService(logger log.LoggerInterface) *LocalStoreService {
	return &LocalStoreService{logger: logger}
}

func (store *LocalStoreService) MirrorSnapshot(localPath string, remoteName string) error {
	store.logger.DebugF("Snapshot %s published locally as %s", localPath, remoteName)
	return nil
}
