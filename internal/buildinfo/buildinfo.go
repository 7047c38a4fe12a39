// Package buildinfo reports the version and build time of the running binary.
// Values come from the Go build metadata and can be pinned at link time:
//
//	go build -ldflags "-X alias-heaven-calculator/internal/buildinfo.Version=1.3.0 \
//	  -X alias-heaven-calculator/internal/buildinfo.BuildDate=2024-05-01T10:00:00Z"
package buildinfo

import (
	"encoding/json"
	"runtime/debug"
	"time"
)

// Link-time overrides
var (
	Version   = ""
	BuildDate = ""
)

const devVersion = "dev"

// Info describes the running build
type Info struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit,omitempty"`
	BuiltAt   time.Time `json:"built_at"`
	GoVersion string    `json:"go_version"`
}

// MarshalJSON leaves built_at out for builds without a timestamp instead of
// emitting the zero time.
func (i Info) MarshalJSON() ([]byte, error) {
	type plain Info
	out := struct {
		plain
		BuiltAt *time.Time `json:"built_at,omitempty"`
	}{plain: plain(i)}
	if !i.BuiltAt.IsZero() {
		t := i.BuiltAt
		out.BuiltAt = &t
	}
	return json.Marshal(out)
}

// Get merges link-time overrides with debug.ReadBuildInfo.
func Get() Info {
	info := Info{Version: devVersion}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fromBuildInfo(bi)
	}
	return applyOverrides(info, Version, BuildDate)
}

func fromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{Version: devVersion, GoVersion: bi.GoVersion}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				info.BuiltAt = t.UTC()
			}
		}
	}
	return info
}

func applyOverrides(info Info, version, buildDate string) Info {
	if version != "" {
		info.Version = version
	}
	if buildDate != "" {
		if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
			info.BuiltAt = t.UTC()
		}
	}
	return info
}

// BuiltOn renders the build time for the info page, e.g.
// "Built on 01/05/2024 at 10:00:00 UTC".
func (i Info) BuiltOn() string {
	if i.BuiltAt.IsZero() {
		return "Build time unknown"
	}
	return i.BuiltAt.Format("Built on 02/01/2006 at 15:04:05 UTC")
}
