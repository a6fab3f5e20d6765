// Package config
package config

import (
	"errors"
	"strings"

	"github.com/cedric1982/fsd/internal/interfaces/global"
	"github.com/cedric1982/fsd/internal/utils"
)

type VersionType int

const (
	AllMatch VersionType = iota
	MajorUnmatch
	MinorUnmatch
	PatchUnmatch
)

type Version struct {
	major   int
	minor   int
	patch   int
	version string
}

var (
	AppVersion, _  = newVersion(global.AppVersion)
	ConfVersion, _ = newVersion(global.ConfigVersion)
)

func newVersion(version string) (*Version, error) {
	versions := strings.Split(version, ".")
	if len(versions) < 3 {
		return nil, errors.New("invalid version string")
	}
	return &Version{
		major:   utils.StrToInt(versions[0], 0),
		minor:   utils.StrToInt(versions[1], 0),
		patch:   utils.StrToInt(versions[2], 0),
		version: version,
	}, nil
}

func (v *Version) checkVersion(version *Version) VersionType {
	if v.major != version.major {
		return MajorUnmatch
	}
	if v.minor != version.minor {
		return MinorUnmatch
	}
	if v.patch != version.patch {
		return PatchUnmatch
	}
	return AllMatch
}

func (v *Version) String() string {
	return v.version
}
