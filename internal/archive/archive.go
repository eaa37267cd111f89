package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zip"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
)

// BundleName is the file name of project's bundle for the day of now.
func BundleName(project string, now time.Time) string {
	return fmt.Sprintf("%s_%s.zip", project, now.Format("20060102"))
}

// Archiver writes bundles into Dir.
type Archiver struct {
	Dir string
	// Now defaults to time.Now.
	Now func() time.Time
}

// New returns an Archiver writing into dir.
func New(dir string) *Archiver {
	return &Archiver{Dir: dir, Now: time.Now}
}

// Create writes a zip of every regular file below outputDir, hidden files
// included, to Dir/{project}_{YYYYMMDD}.zip and returns its path. An
// existing bundle with the same name is removed first. Entries keep their
// permission bits. The bundle is written to a temporary file and renamed on
// success, so a failed run leaves no bundle behind.
func (a *Archiver) Create(ctx context.Context, outputDir, project string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory %s: %w", a.Dir, err)
	}
	bundle := filepath.Join(a.Dir, BundleName(project, now()))
	if err := os.Remove(bundle); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to remove previous bundle %s: %w", bundle, err)
	}

	files, err := fsutil.ListFiles(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to list output directory %s: %w", outputDir, err)
	}

	tmp, err := os.CreateTemp(a.Dir, ".bundle-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary bundle: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := writeZip(tmp, outputDir, files); err != nil {
		return "", fmt.Errorf("failed to write bundle %s: %w", bundle, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close bundle %s: %w", bundle, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("failed to set bundle permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), bundle); err != nil {
		return "", fmt.Errorf("failed to finalize bundle %s: %w", bundle, err)
	}
	committed = true

	var size uint64
	if info, err := os.Stat(bundle); err == nil {
		size = uint64(info.Size())
	}
	logger.Info("📦 Archive created.", "bundle", bundle, "files", len(files), "size", humanize.Bytes(size))
	return bundle, nil
}

func writeZip(w io.Writer, root string, files []string) error {
	zw := zip.NewWriter(w)
	for _, rel := range files {
		if err := addFile(zw, root, rel); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, root, rel string) error {
	path := filepath.Join(root, filepath.FromSlash(rel))
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = rel
	header.Method = zip.Deflate

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("add %s: %w", rel, err)
	}
	return nil
}
