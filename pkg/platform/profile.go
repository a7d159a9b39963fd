package platform

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Profile describes the host as seen by the doctor command.
type Profile struct {
	OS       string
	Arch     string
	Kernel   string
	Release  string
	APILevel APILevel
	Known    bool
	Source   string
}

// Detect builds a best-effort profile. Only src decides the API level; kernel
// and release strings are informational and may be empty.
func Detect(src Source) *Profile {
	profile := &Profile{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	profile.APILevel, profile.Source, profile.Known = Resolve(src)
	profile.Kernel, _ = uname("-r")

	if gp, ok := findGetprop(src); ok {
		profile.Release, _ = readProperty(gp.path, releaseProperty)
	}
	return profile
}

func findGetprop(src Source) (getpropSource, bool) {
	switch s := src.(type) {
	case getpropSource:
		return s, true
	case chainSource:
		for _, member := range s.sources {
			if gp, ok := findGetprop(member); ok {
				return gp, true
			}
		}
	}
	return getpropSource{}, false
}

func uname(arg string) (string, error) {
	out, err := exec.Command("uname", arg).Output()
	if err != nil {
		return "", fmt.Errorf("uname %s: %w", arg, err)
	}
	return strings.TrimSpace(string(out)), nil
}
