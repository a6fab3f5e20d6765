// Package operation
package operation

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrCertNotFound 证书不存在
	ErrCertNotFound = errors.New("certificate does not exist")
)

// Certificate is one row of the credentials table. Passwords are stored as
// bcrypt hashes.
type Certificate struct {
	gorm.Model
	Cid       string `gorm:"uniqueIndex;size:32"`
	Password  []byte `gorm:"size:64"`
	Rating    int
	Suspended bool
}

type CertOperationInterface interface {
	// ReadCert reloads the in-memory credentials table from the database,
	// returns the number of entries loaded.
	ReadCert() (count int, err error)
	// GetCert returns the cached certificate for a cid.
	GetCert(cid string) (cert *Certificate, err error)
	// VerifyPassword checks a plaintext password against the stored hash.
	VerifyPassword(cert *Certificate, password string) (pass bool)
	// StoreChanged reports whether the backing store changed since lastCheck;
	// for the sqlite3 backend this is an mtime comparison on the db file,
	// server backends always report true.
	StoreChanged(lastCheck time.Time) bool
}
