// Package workdir manages the scratch directory the gateway recreates at
// startup and the port file other processes read to find the listener.
package workdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fabian4/schnecke/internal/config"
)

// PortFile is the name of the port announcement file inside the scratch directory.
const PortFile = "port.tmp"

// Dir returns the scratch directory for home.
func Dir(home string) string {
	return filepath.Join(home, config.DirName, "tmp")
}

// Reset removes the scratch directory if present and creates it empty.
func Reset(home string) (string, error) {
	dir := Dir(home)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// WritePort writes port as decimal text to dir/PortFile. dir must exist.
func WritePort(dir string, port int) (string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("missing %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("missing %s: %w", dir, errors.New("not a directory"))
	}
	fp := filepath.Join(dir, PortFile)
	if err := os.WriteFile(fp, []byte(strconv.Itoa(port)), 0o644); err != nil {
		return "", fmt.Errorf("write port: %w", err)
	}
	return fp, nil
}

// ReadPort reads back a port written by WritePort.
func ReadPort(dir string) (int, error) {
	b, err := os.ReadFile(filepath.Join(dir, PortFile))
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("port file: %w", err)
	}
	return port, nil
}
