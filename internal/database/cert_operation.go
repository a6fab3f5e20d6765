// Package database
package database

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/cedric1982/fsd/internal/interfaces/config"
	"github.com/cedric1982/fsd/internal/interfaces/log"
	"github.com/cedric1982/fsd/internal/interfaces/operation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CertOperation caches the credentials table in memory so the hot auth path
// never queries the database; the periodic controller drives reloads.
type CertOperation struct {
	logger   log.LoggerInterface
	db       *gorm.DB
	dbType   config.DatabaseType
	certPath string
	timeout  time.Duration
	mu       sync.RWMutex
	certs    map[string]*operation.Certificate
}

func NewCertOperation(logger log.LoggerInterface, db *gorm.DB, conf *config.Config) *CertOperation {
	return &CertOperation{
		logger:   logger,
		db:       db,
		dbType:   conf.Database.DBType,
		certPath: conf.System.Certificates,
		timeout:  conf.Database.QueryDuration,
		certs:    make(map[string]*operation.Certificate),
	}
}

func (op *CertOperation) ReadCert() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), op.timeout)
	defer cancel()

	var certs []*operation.Certificate
	if err := op.db.WithContext(ctx).Find(&certs).Error; err != nil {
		return 0, err
	}

	table := make(map[string]*operation.Certificate, len(certs))
	for _, cert := range certs {
		table[cert.Cid] = cert
	}

	op.mu.Lock()
	op.certs = table
	op.mu.Unlock()
	return len(table), nil
}

func (op *CertOperation) GetCert(cid string) (*operation.Certificate, error) {
	op.mu.RLock()
	defer op.mu.RUnlock()
	cert, ok := op.certs[cid]
	if !ok {
		return nil, operation.ErrCertNotFound
	}
	return cert, nil
}

func (op *CertOperation) VerifyPassword(cert *operation.Certificate, password string) bool {
	return bcrypt.CompareHashAndPassword(cert.Password, []byte(password)) == nil
}

// StoreChanged gates the periodic reload. Only the sqlite3 backend has a
// file mtime to compare; server backends reload every check interval.
func (op *CertOperation) StoreChanged(lastCheck time.Time) bool {
	if op.dbType != config.SQLite {
		return true
	}
	info, err := os.Stat(op.certPath)
	if err != nil {
		return false
	}
	return info.ModTime().After(lastCheck)
}
