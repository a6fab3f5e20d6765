// Package fsd_server test doubles for the controller's collaborators.
package fsd_server

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cedric1982/fsd/internal/geomag"
	"github.com/cedric1982/fsd/internal/interfaces"
	"github.com/cedric1982/fsd/internal/interfaces/config"
	"github.com/cedric1982/fsd/internal/interfaces/fsd"
	"github.com/cedric1982/fsd/internal/interfaces/global"
	"github.com/cedric1982/fsd/internal/interfaces/operation"
)

type fakeLogger struct{}

func (l *fakeLogger) Init(bool)                         {}
func (l *fakeLogger) ShutdownCallback() global.Callable { return nil }
func (l *fakeLogger) Debug(string, ...interface{})      {}
func (l *fakeLogger) DebugF(string, ...interface{})     {}
func (l *fakeLogger) Info(string, ...interface{})       {}
func (l *fakeLogger) InfoF(string, ...interface{})      {}
func (l *fakeLogger) Warn(string, ...interface{})       {}
func (l *fakeLogger) WarnF(string, ...interface{})      {}
func (l *fakeLogger) Error(string, ...interface{})      {}
func (l *fakeLogger) ErrorF(string, ...interface{})     {}
func (l *fakeLogger) Fatal(string, ...interface{})      {}
func (l *fakeLogger) FatalF(string, ...interface{})     {}

type fakeConfigManager struct {
	config *config.Config
}

func (m *fakeConfigManager) Config() *config.Config { return m.config }
func (m *fakeConfigManager) SaveConfig() error      { return nil }
func (m *fakeConfigManager) Pump()                  {}

type fakeCerts struct {
	changed   bool
	readCalls int
}

func (c *fakeCerts) ReadCert() (int, error) {
	c.readCalls++
	return 0, nil
}
func (c *fakeCerts) GetCert(string) (*operation.Certificate, error) {
	return nil, operation.ErrCertNotFound
}
func (c *fakeCerts) VerifyPassword(*operation.Certificate, string) bool { return false }
func (c *fakeCerts) StoreChanged(time.Time) bool                        { return c.changed }

type peerCall struct {
	kind    string
	target  string
	payload string
}

type fakePeer struct {
	calls []peerCall
}

func (p *fakePeer) SendPing(target string, payload string) {
	p.calls = append(p.calls, peerCall{"ping", target, payload})
}

func (p *fakePeer) SendServerNotify(target string, info *fsd.ServerInfo, _ string) {
	p.calls = append(p.calls, peerCall{"notify", target, info.Ident})
}

func newTestConfig(t *testing.T, silent bool) *config.Config {
	t.Helper()
	conf := config.DefaultConfig()
	conf.System.Ident = "LOCAL"
	conf.System.Hostname = "localhost"
	conf.System.Location = "EU"
	conf.System.Name = "me"
	conf.System.Silent = silent
	conf.System.Whazzup = filepath.Join(t.TempDir(), "whazzup.txt")
	if result := conf.CheckValid(&fakeLogger{}); result.IsFail() {
		t.Fatalf("test config invalid: %v", result.Error())
	}
	return conf
}

func newTestNode(t *testing.T, silent bool) (*Node, *fakePeer, *fakeCerts) {
	t.Helper()
	conf := newTestConfig(t, silent)
	certs := &fakeCerts{}
	content := interfaces.NewApplicationContent(&fakeConfigManager{config: conf}, nil, &fakeLogger{}, certs)
	node := NewNode(content, nil)
	peer := &fakePeer{}
	node.SetPeer(peer)

	declination = func(lat, lon, altMeters float64) (float64, error) {
		return 2.5, nil
	}
	t.Cleanup(func() { declination = geomag.Declination })
	return node, peer, certs
}
