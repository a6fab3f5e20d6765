// Package controller
package controller

import (
	"net/http"
	"os"
	"time"

	"github.com/cedric1982/fsd/internal/fsd_server"
	"github.com/cedric1982/fsd/internal/fsd_server/state"
	"github.com/cedric1982/fsd/internal/interfaces/config"
	"github.com/cedric1982/fsd/internal/interfaces/log"
	"github.com/cedric1982/fsd/internal/utils"
	"github.com/labstack/echo/v4"
)

// StatusController serves the diagnostic pilot status, the current roster
// and the operator registry dump. The status payload is cached for a second
// so dashboard polling cannot amplify into declination lookups.
type StatusController struct {
	logger   log.LoggerInterface
	config   *config.Config
	registry *state.Registry
	status   *utils.CachedValue[fsd_server.StatusSnapshot]
}

func NewStatusController(logger log.LoggerInterface, conf *config.Config, registry *state.Registry) *StatusController {
	controller := &StatusController{
		logger:   logger,
		config:   conf,
		registry: registry,
	}
	controller.status = utils.NewCachedValue(time.Second, controller.buildStatus)
	return controller
}

func (controller *StatusController) buildStatus() *fsd_server.StatusSnapshot {
	return fsd_server.BuildStatusSnapshot(time.Now(), controller.registry.SnapshotClients())
}

func (controller *StatusController) Status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, controller.status.GetValue())
}

// Whazzup serves the most recently published roster file verbatim.
func (controller *StatusController) Whazzup(ctx echo.Context) error {
	data, err := os.ReadFile(controller.config.System.Whazzup)
	if err != nil {
		controller.logger.WarnF("Roster file unreadable: %v", err)
		return ctx.NoContent(http.StatusServiceUnavailable)
	}
	return ctx.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, data)
}

type registryDump struct {
	Clients []state.Client `json:"clients"`
	Servers []state.Server `json:"servers"`
}

func (controller *StatusController) Clients(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &registryDump{
		Clients: controller.registry.SnapshotClients(),
		Servers: controller.registry.SnapshotServers(),
	})
}
