// Package hub caches model files downloaded from Hugging Face
// repositories on local disk.
package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const resolveURLFormat = "https://huggingface.co/%s/resolve/main/%s"

// Cache stores one file per repository/filename pair under a base
// directory.
type Cache struct {
	dir string
}

// NewCache creates the base directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Path returns where the file for a repository lives, whether or not it
// has been downloaded.
func (c *Cache) Path(repository, file string) string {
	repo := strings.ReplaceAll(repository, "/", "--")
	return filepath.Join(c.dir, repo, file)
}

// Downloaded reports whether the file is present in the cache.
func (c *Cache) Downloaded(repository, file string) bool {
	info, err := os.Stat(c.Path(repository, file))
	return err == nil && info.Size() > 0
}

// Delete removes the cached file. Missing files are not an error.
func (c *Cache) Delete(repository, file string) error {
	err := os.Remove(c.Path(repository, file))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete cached model: %w", err)
	}
	return nil
}

// Download fetches the file from the repository's main branch, reporting
// progress in [0, 1]. A failed or cancelled download leaves no file.
func (c *Cache) Download(ctx context.Context, repository, file string, progress func(float64)) error {
	url := fmt.Sprintf(resolveURLFormat, repository, file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}

	target := c.Path(repository, file)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create repository dir: %w", err)
	}
	tmpPath := target + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	var downloaded int64
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write model file: %w", werr)
			}
			downloaded += int64(n)
			if resp.ContentLength > 0 && progress != nil {
				progress(float64(downloaded) / float64(resp.ContentLength))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read model download: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}
	return nil
}
