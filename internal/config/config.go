package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	AppName = "schnecke"
	DirName = "." + AppName // per-user directory under home
)

// CandidatePaths lists the config locations probed under home, highest priority first.
func CandidatePaths(home string) []string {
	return []string{
		filepath.Join(home, "."+AppName+".yml"),
		filepath.Join(home, "."+AppName+".yaml"),
		filepath.Join(home, DirName, AppName+".yml"),
		filepath.Join(home, DirName, AppName+".yaml"),
	}
}

// FindPath returns the first candidate that exists.
func FindPath(home string) (string, error) {
	paths := CandidatePaths(home)
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", &NotFoundError{Paths: paths}
}

// Load locates, reads and resolves the config document under home.
func Load(home string) (*Config, error) {
	path, err := FindPath(home)
	if err != nil {
		return nil, err
	}
	slog.Info("load config file", "path", path)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse resolves a config document. Only the first YAML document is read.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	var root *yaml.Node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = deref(doc.Content[0])
	}

	hosts := lookup(root, "hosts")
	if !present(hosts) {
		return nil, ErrMissingHosts
	}
	if hosts.Kind != yaml.MappingNode {
		return nil, ErrHostsNotMapping
	}
	def := lookup(hosts, DefaultEntry)
	switch {
	case def == nil:
		return nil, ErrMissingDefault
	case !present(def):
		def = nil
	case def.Kind != yaml.MappingNode:
		return nil, ErrDefaultNotMapping
	}

	out := make(HostMap, len(hosts.Content)/2)
	for i := 0; i+1 < len(hosts.Content); i += 2 {
		key := deref(hosts.Content[i])
		if key.Kind != yaml.ScalarNode || key.ShortTag() != "!!str" {
			return nil, &FieldError{Host: key.Value, Field: "host", Err: ErrWrongType}
		}
		if key.Value == DefaultEntry {
			continue
		}
		hp, err := resolveHost(key.Value, deref(hosts.Content[i+1]), def)
		if err != nil {
			return nil, err
		}
		out[hp.Host] = hp
	}

	return &Config{
		Listen: ListenProfile{},
		Hosts:  out,
	}, nil
}

func resolveHost(host string, entry, def *yaml.Node) (HostProfile, error) {
	hp := HostProfile{Host: host}

	origin := lookup(entry, "origin")
	if !present(origin) {
		return hp, &FieldError{Host: host, Field: "origin", Err: ErrMissingField}
	}
	var err error
	if hp.Origin, err = parseOrigin(origin); err != nil {
		return hp, &FieldError{Host: host, Field: "origin", Err: err}
	}

	if hp.Expire, err = resolve(lookup(entry, "expire"), lookup(def, "expire"),
		DefaultExpire, strict, parseUint32); err != nil {
		return hp, &FieldError{Host: host, Field: "expire", Err: err}
	}
	if hp.ErrExpire, err = resolve(lookup(entry, "err_expire"), lookup(def, "err_expire"),
		DefaultErrExpire, strict, parseUint32); err != nil {
		return hp, &FieldError{Host: host, Field: "err_expire", Err: err}
	}
	// never fails in lenient mode
	hp.KeepCacheAfterShutdown, _ = resolve(lookup(entry, "keep_cache_after_shutdown"),
		lookup(def, "keep_cache_after_shutdown"), DefaultKeepCacheAfterShutdown, lenient, parseBool)

	return hp, nil
}
