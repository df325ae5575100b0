package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
)

// checkOutputPath rejects an existing output path unless force is set.
func checkOutputPath(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", rqerrors.ErrOutputExists, path)
	}
	return nil
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by a rename, so a crash mid-write never leaves a partial file at
// the final path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return rqerrors.NewFileError("create", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return rqerrors.NewFileError("write", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return rqerrors.NewFileError("sync", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return rqerrors.NewFileError("close", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return rqerrors.NewFileError("rename", path, err)
	}
	return nil
}
