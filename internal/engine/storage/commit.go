package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rendis/geofilter/internal/engine/geo"
	"github.com/rendis/geofilter/internal/model"
)

var (
	// ErrBackup is returned when the original could not be copied to the backup path.
	// The original file is untouched.
	ErrBackup = errors.New("backup failed")

	// ErrWrite is returned when the filtered collection could not replace the original.
	// The backup file is the recovery copy.
	ErrWrite = errors.New("write failed")
)

// Replace step hooks, swapped in tests.
var (
	renameFile = os.Rename
	openTarget = os.OpenFile
)

// BackupPath derives the sibling backup path by inserting ".backup" before the
// extension: data/buildings.geojson -> data/buildings.backup.geojson.
func BackupPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".backup" + ext
}

// Writer snapshots a feature file and replaces it with a filtered collection.
type Writer struct {
	// InPlace truncates and rewrites the original instead of writing a temp
	// file and renaming it over the original.
	InPlace bool
}

// Commit backs up originalPath to backupPath and then replaces originalPath
// with the filtered collection, using the default atomic writer.
func Commit(originalPath, backupPath string, c model.Collection) error {
	return Writer{}.Commit(originalPath, backupPath, c)
}

// Commit performs exactly one backup and one replace. The replace step only
// runs after the backup has been fully written and synced.
func (w Writer) Commit(originalPath, backupPath string, c model.Collection) error {
	data, err := geo.Encode(c)
	if err != nil {
		return &geo.Error{Kind: ErrWrite, Path: originalPath, Err: err}
	}

	if err := backup(originalPath, backupPath); err != nil {
		return &geo.Error{Kind: ErrBackup, Path: backupPath, Err: err}
	}

	if w.InPlace {
		err = replaceInPlace(originalPath, data)
	} else {
		err = replaceAtomic(originalPath, data)
	}
	if err != nil {
		return &geo.Error{Kind: ErrWrite, Path: originalPath, Err: err}
	}
	return nil
}

func backup(src, dst string) error {
	if samePath(src, dst) {
		return fmt.Errorf("backup path is the original file")
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening original: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat original: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to backup: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("syncing backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing backup: %w", err)
	}
	return nil
}

func replaceAtomic(path string, data []byte) (err error) {
	mode := fileMode(path)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = renameFile(tmpName, path); err != nil {
		return fmt.Errorf("renaming over original: %w", err)
	}
	return nil
}

func replaceInPlace(path string, data []byte) error {
	f, err := openTarget(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode(path))
	if err != nil {
		return fmt.Errorf("opening original: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing original: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing original: %w", err)
	}
	return f.Close()
}

func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
