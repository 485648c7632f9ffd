package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const maxNameAttempts = 1000

// DirSink saves artifacts into a directory. Payloads are written to a .part file and renamed
// into place; existing files are never overwritten.
type DirSink struct {
	Fs  afero.Fs
	Dir string
}

// NewDirSink saves into dir on the host filesystem.
func NewDirSink(dir string) DirSink {
	return DirSink{Fs: afero.NewOsFs(), Dir: dir}
}

// Deliver implements Sink.
func (d DirSink) Deliver(ctx context.Context, name string, data []byte) (Download, error) {
	if err := ctx.Err(); err != nil {
		return Download{}, err
	}
	fs := d.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir := d.Dir
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return Download{}, fmt.Errorf("create download dir: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+name+".*.part")
	if err != nil {
		return Download{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return Download{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return Download{}, fmt.Errorf("close %s: %w", name, err)
	}

	target, err := freePath(fs, dir, name)
	if err != nil {
		cleanup()
		return Download{}, err
	}
	if err := fs.Rename(tmpName, target); err != nil {
		cleanup()
		return Download{}, fmt.Errorf("save %s: %w", name, err)
	}
	return Download{Name: filepath.Base(target), Path: target, Size: int64(len(data))}, nil
}

// freePath returns dir/name, or dir/"name (n).ext" for the first n not already taken.
func freePath(fs afero.Fs, dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", path, err)
		}
		if !exists {
			return path, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
