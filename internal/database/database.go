// Package database
package database

import (
	"context"
	"fmt"

	"github.com/cedric1982/fsd/internal/interfaces/config"
	"github.com/cedric1982/fsd/internal/interfaces/global"
	"github.com/cedric1982/fsd/internal/interfaces/log"
	"github.com/cedric1982/fsd/internal/interfaces/operation"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type databaseShutdownCallback struct {
	db *gorm.DB
}

func (c *databaseShutdownCallback) Invoke(_ context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ConnectDatabase opens the certificate database and loads the credentials
// table into memory. The handle is process-lifetime; reloads replace the
// cached table, not the handle.
func ConnectDatabase(logger log.LoggerInterface, conf *config.Config, debug bool) (global.Callable, *CertOperation, error) {
	connectionConfig := &gorm.Config{}
	if !debug {
		connectionConfig.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	}

	dialector := conf.Database.GetConnection(logger, conf.System.Certificates)
	if dialector == nil {
		return nil, nil, fmt.Errorf("no usable database dialector for type %s", conf.Database.Type)
	}

	db, err := gorm.Open(dialector, connectionConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("error occured while connecting to database: %v", err)
	}

	if err := db.Migrator().AutoMigrate(&operation.Certificate{}); err != nil {
		return nil, nil, fmt.Errorf("error occured while migrating database: %v", err)
	}

	dbPool, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("error occured while creating database pool: %v", err)
	}

	maxOpenConnections := float32(conf.Database.ServerMaxConnections) * 0.8 // 不超过数据库最大连接的80%
	maxIdleConnections := maxOpenConnections / 5

	dbPool.SetMaxIdleConns(int(maxIdleConnections))
	dbPool.SetMaxOpenConns(int(maxOpenConnections))
	dbPool.SetConnMaxLifetime(conf.Database.ConnectIdleDuration)

	if err = dbPool.Ping(); err != nil {
		return nil, nil, fmt.Errorf("error occured while pinging database: %v", err)
	}

	certOperation := NewCertOperation(logger, db, conf)
	if count, err := certOperation.ReadCert(); err != nil {
		return nil, nil, fmt.Errorf("error occured while loading certificates: %v", err)
	} else {
		logger.InfoF("Certificate table loaded, %d entries", count)
	}

	return &databaseShutdownCallback{db: db}, certOperation, nil
}
