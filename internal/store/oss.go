// Package store
package store

import (
	"context"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"github.com/cedric1982/fsd/internal/interfaces/config"
	"github.com/cedric1982/fsd/internal/interfaces/log"
)

type ALiYunOssStoreService struct {
	logger   log.LoggerInterface
	config   *config.StoreConfig
	endpoint *url.URL
	client   *oss.Client
}

func NewALiYunOssStoreService(logger log.LoggerInterface, storeConfig *config.StoreConfig) *ALiYunOssStoreService {
	service := &ALiYunOssStoreService{logger: logger, config: storeConfig}
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(storeConfig.AccessId, storeConfig.AccessKey)).
		WithRegion(storeConfig.Region).
		WithUseInternalEndpoint(storeConfig.UseInternalUrl)
	service.client = oss.NewClient(cfg)
	if storeConfig.CdnDomain != "" {
		service.endpoint, _ = url.Parse(storeConfig.CdnDomain)
	} else {
		service.endpoint, _ = url.Parse(strings.Replace(*cfg.Endpoint, "-internal", "", 1))
	}
	return service
}

func (store *ALiYunOssStoreService) MirrorSnapshot(localPath string, remoteName string) error {
	remotePath := path.Join(store.config.RemoteStorePath, remoteName)

	reader, err := os.Open(localPath)
	if err != nil {
		store.logger.ErrorF("ALiYunOssStoreService.MirrorSnapshot open file error: %v", err)
		return err
	}
	defer func(reader *os.File) {
		_ = reader.Close()
	}(reader)

	putRequest := &oss.PutObjectRequest{
		Bucket:       oss.Ptr(store.config.Bucket),
		Key:          oss.Ptr(remotePath),
		StorageClass: oss.StorageClassStandard,
		Body:         reader,
	}

	if _, err = store.client.PutObject(context.TODO(), putRequest); err != nil {
		store.logger.ErrorF("ALiYunOssStoreService.MirrorSnapshot upload to remote storage error: %v", err)
		return err
	}
	store.logger.DebugF("Snapshot mirrored to oss://%s/%s", store.config.Bucket, remotePath)
	return nil
}
