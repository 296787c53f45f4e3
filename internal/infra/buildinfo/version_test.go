package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuild(t *testing.T, version, commit string, bi *debug.BuildInfo) {
	t.Helper()
	prevV, prevC, prevT, prevRead := Version, Commit, BuildTime, readInfo
	t.Cleanup(func() { Version, Commit, BuildTime, readInfo = prevV, prevC, prevT, prevRead })

	Version, Commit, BuildTime = version, commit, ""
	readInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestResolve(t *testing.T) {
	stamped := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2024-06-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name    string
		version string
		commit  string
		bi      *debug.BuildInfo
		want    Info
	}{
		{
			name: "no information",
			want: Info{Version: "dev", Commit: unknown, BuildTime: unknown},
		},
		{
			name: "vcs stamp",
			bi:   stamped,
			want: Info{Version: "v0.3.1", Commit: "0123456789ab", BuildTime: "2024-06-01T10:00:00Z", Modified: true},
		},
		{
			name:    "ldflags win",
			version: "v1.0.0",
			commit:  "abc",
			bi:      stamped,
			want:    Info{Version: "v1.0.0", Commit: "abc", BuildTime: "2024-06-01T10:00:00Z", Modified: true},
		},
		{
			name: "devel module",
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", Commit: unknown, BuildTime: unknown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubBuild(t, tt.version, tt.commit, tt.bi)
			got := resolve()
			tt.want.GoVersion = runtime.Version()
			tt.want.Platform = runtime.GOOS + "/" + runtime.GOARCH
			if got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	i := Info{Version: "v1", Commit: "abc", BuildTime: "t"}
	if got := i.String(); got != "v1 (abc) built at t" {
		t.Errorf("String() = %q", got)
	}
	i.Modified = true
	if got := i.String(); got != "v1 (abc, modified) built at t" {
		t.Errorf("String() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "ecoply-cli/"+Get().Version+" ") || !strings.Contains(ua, runtime.GOOS) {
		t.Errorf("UserAgent() = %q", ua)
	}
}
