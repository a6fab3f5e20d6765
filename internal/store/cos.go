// Package store
package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/cedric1982/fsd/internal/interfaces/config"
	"github.com/cedric1982/fsd/internal/interfaces/log"
	"github.com/tencentyun/cos-go-sdk-v5"
)

type TencentCosStoreService struct {
	logger   log.LoggerInterface
	config   *config.StoreConfig
	endpoint *url.URL
	client   *cos.Client
}

func NewTencentCosStoreService(logger log.LoggerInterface, storeConfig *config.StoreConfig) *TencentCosStoreService {
	service := &TencentCosStoreService{logger: logger, config: storeConfig}
	bucketUrl, _ := url.Parse(fmt.Sprintf("https://%s.cos.%s.myqcloud.com", storeConfig.Bucket, strings.ToLower(storeConfig.Region)))
	serviceUrl, _ := url.Parse(fmt.Sprintf("https://cos.%s.myqcloud.com", strings.ToLower(storeConfig.Region)))
	baseUrl := &cos.BaseURL{BucketURL: bucketUrl, ServiceURL: serviceUrl}
	service.client = cos.NewClient(baseUrl, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  storeConfig.AccessId,
			SecretKey: storeConfig.AccessKey,
		},
	})
	if storeConfig.CdnDomain != "" {
		service.endpoint, _ = url.Parse(storeConfig.CdnDomain)
	} else {
		service.endpoint = service.client.BaseURL.BucketURL
	}
	return service
}

func (store *TencentCosStoreService) MirrorSnapshot(localPath string, remoteName string) error {
	remotePath := path.Join(store.config.RemoteStorePath, remoteName)

	reader, err := os.Open(localPath)
	if err != nil {
		store.logger.ErrorF("TencentCosStoreService.MirrorSnapshot open file error: %v", err)
		return err
	}
	defer func(reader *os.File) {
		_ = reader.Close()
	}(reader)

	if _, err = store.client.Object.Put(context.Background(), remotePath, reader, nil); err != nil {
		store.logger.ErrorF("TencentCosStoreService.MirrorSnapshot upload to remote storage error: %v", err)
		return err
	}
	store.logger.DebugF("Snapshot mirrored to cos://%s/%s", store.config.Bucket, remotePath)
	return nil
}
