// Package interfaces
package interfaces

import (
	"github.com/cedric1982/fsd/internal/interfaces/global"
)

type CleanerInterface interface {
	Init()
	Add(callable global.Callable)
	Clean()
}
