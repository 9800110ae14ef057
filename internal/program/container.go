package program

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the container format changes
const containerSchemaVersion uint16 = 1

// container is the msgpack envelope written to disk. The schema version
// guards against decoding a payload written by an incompatible build.
type container struct {
	Schema  uint16
	Program Program
}

// Store writes a program to path as a msgpack container. The write goes
// through a temp file and a rename so a crash never leaves a truncated
// container behind.
func Store(path string, p *Program) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&container{Schema: containerSchemaVersion, Program: *p}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a msgpack program container from path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c container
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if c.Schema != containerSchemaVersion {
		return nil, fmt.Errorf("%s: unsupported container schema %d (want %d)", path, c.Schema, containerSchemaVersion)
	}
	return &c.Program, nil
}
