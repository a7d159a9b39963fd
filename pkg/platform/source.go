package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultEnvKey is the environment variable consulted by Host.
const DefaultEnvKey = "LOCGATE_API_LEVEL"

const (
	sdkProperty     = "ro.build.version.sdk"
	releaseProperty = "ro.build.version.release"
	propTimeout     = 2 * time.Second
)

// Source reports the running platform's API level. The boolean is false when the
// level is unavailable or malformed.
type Source interface {
	APILevel() (APILevel, bool)
	Name() string
}

type fixedSource struct {
	level APILevel
}

// Fixed returns a source that always reports level. Levels <= 0 are reported as
// unknown.
func Fixed(level APILevel) Source {
	return fixedSource{level: level}
}

func (s fixedSource) APILevel() (APILevel, bool) {
	if s.level <= Unknown {
		return Unknown, false
	}
	return s.level, true
}

func (s fixedSource) Name() string { return "fixed" }

type funcSource struct {
	name string
	fn   func() (APILevel, bool)
}

// Func adapts an accessor function into a Source.
func Func(name string, fn func() (APILevel, bool)) Source {
	return funcSource{name: name, fn: fn}
}

func (s funcSource) APILevel() (APILevel, bool) {
	if s.fn == nil {
		return Unknown, false
	}
	level, ok := s.fn()
	if !ok || level <= Unknown {
		return Unknown, false
	}
	return level, true
}

func (s funcSource) Name() string { return s.name }

type envSource struct {
	key string
}

// Env reads the level from an environment variable on every call.
func Env(key string) Source {
	if key == "" {
		key = DefaultEnvKey
	}
	return envSource{key: key}
}

func (s envSource) APILevel() (APILevel, bool) {
	return parseKnown(os.Getenv(s.key))
}

func (s envSource) Name() string { return "env:" + s.key }

type getpropSource struct {
	path string
}

// Getprop reads ro.build.version.sdk from the Android property service. An
// empty path resolves getprop from PATH.
func Getprop(path string) Source {
	if path == "" {
		path = "getprop"
	}
	return getpropSource{path: path}
}

func (s getpropSource) APILevel() (APILevel, bool) {
	out, err := readProperty(s.path, sdkProperty)
	if err != nil {
		return Unknown, false
	}
	return parseKnown(out)
}

func (s getpropSource) Name() string { return "getprop" }

type chainSource struct {
	sources []Source
}

// Chain returns the first level reported by sources, in order.
func Chain(sources ...Source) Source {
	return chainSource{sources: sources}
}

func (c chainSource) APILevel() (APILevel, bool) {
	level, _, ok := c.resolve()
	return level, ok
}

func (c chainSource) resolve() (APILevel, string, bool) {
	for _, src := range c.sources {
		if src == nil {
			continue
		}
		if level, ok := src.APILevel(); ok {
			return level, src.Name(), true
		}
	}
	return Unknown, "", false
}

func (c chainSource) Name() string {
	names := make([]string, 0, len(c.sources))
	for _, src := range c.sources {
		if src != nil {
			names = append(names, src.Name())
		}
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Host is the default source: LOCGATE_API_LEVEL, then getprop.
func Host() Source {
	return Chain(Env(DefaultEnvKey), Getprop(""))
}

// Resolve reads src and returns the level together with the name of the source
// that produced it. For chains the name is the winning member.
func Resolve(src Source) (APILevel, string, bool) {
	if src == nil {
		return Unknown, "", false
	}
	if c, ok := src.(chainSource); ok {
		return c.resolve()
	}
	level, ok := src.APILevel()
	if !ok {
		return Unknown, "", false
	}
	return level, src.Name(), true
}

func parseKnown(raw string) (APILevel, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown, false
	}
	level, err := ParseAPILevel(raw)
	if err != nil || level <= Unknown {
		return Unknown, false
	}
	return level, true
}

func readProperty(path, name string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), propTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, name).Output()
	if err != nil {
		return "", fmt.Errorf("getprop %s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}
