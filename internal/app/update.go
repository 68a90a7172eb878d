package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.qspeak.app/qspeak/api"
)

// releaseUpdater checks the published releases against the running build
// and stages platform artifacts for the next restart.
type releaseUpdater struct {
	releases *api.Releases
	http     *http.Client
	version  string
	stageDir string
}

func newReleaseUpdater(version, stageDir string) *releaseUpdater {
	return &releaseUpdater{
		releases: api.NewReleases(),
		http:     &http.Client{Timeout: 10 * time.Minute},
		version:  version,
		stageDir: stageDir,
	}
}

// Check reports whether the newest published release is ahead of the
// running version. Dev builds never see updates.
func (u *releaseUpdater) Check(ctx context.Context) (bool, error) {
	if u.version == "" || u.version == "dev" {
		return false, nil
	}
	releases, err := u.releases.GetReleases(ctx)
	if err != nil {
		return false, err
	}
	if len(releases) == 0 {
		return false, nil
	}
	return versionLess(u.version, releases[0].Version), nil
}

// DownloadAndInstall fetches the platform artifact for the newest release
// into the staging directory, reporting byte progress.
func (u *releaseUpdater) DownloadAndInstall(ctx context.Context, progress func(downloaded, total uint64)) error {
	releases, err := u.releases.GetReleases(ctx)
	if err != nil {
		return err
	}
	if len(releases) == 0 {
		return fmt.Errorf("no releases published")
	}
	version := releases[0].Version

	url := fmt.Sprintf("%s/releases/%s/download/%s-%s", api.BaseURL, version, runtime.GOOS, runtime.GOARCH)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := u.http.Do(req)
	if err != nil {
		return fmt.Errorf("download update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download update: unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(u.stageDir, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	path := filepath.Join(u.stageDir, "qspeak-"+version)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return fmt.Errorf("stage update: %w", err)
	}
	defer f.Close()

	total := uint64(0)
	if resp.ContentLength > 0 {
		total = uint64(resp.ContentLength)
	}
	var downloaded uint64
	buf := make([]byte, 256*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				return fmt.Errorf("stage update: %w", err)
			}
			downloaded += uint64(n)
			if progress != nil {
				progress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("download update: %w", readErr)
		}
	}
	return nil
}

// Restart relaunches the current executable and exits. The staged update
// is picked up by the platform installer on next launch.
func (u *releaseUpdater) Restart() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return
	}
	os.Exit(0)
}

// versionLess compares dotted numeric versions, ignoring a leading "v".
func versionLess(a, b string) bool {
	pa := versionParts(a)
	pb := versionParts(b)
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var na, nb int
		if i < len(pa) {
			na = pa[i]
		}
		if i < len(pb) {
			nb = pb[i]
		}
		if na != nb {
			return na < nb
		}
	}
	return false
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	fields := strings.Split(v, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}
