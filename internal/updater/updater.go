// Package updater replaces the running binary with the latest GitHub
// release. Releases ship timetag-<os>-<arch>.tar.xz on Linux and
// timetag-<os>-<arch>.zip on Windows, with the executable at the archive
// root.
package updater

import (
	"archive/tar"
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/EchoSun2025/TimeTag/internal/version"
)

const releaseURL = "https://api.github.com/repos/%s/%s/releases/latest"

type release struct {
	TagName string  `json:"tag_name"`
	Assets  []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// SelfUpdate checks the latest GitHub release and, if newer than the
// running build, swaps the executable in place. Dev builds never update.
// Returns the new version tag, or "" when already current.
func SelfUpdate(owner, repo string) (string, error) {
	if version.Version == "dev" {
		return "", nil
	}

	tag, downloadURL, err := latestAsset(owner, repo)
	if err != nil {
		return "", fmt.Errorf("check for updates: %w", err)
	}
	if compareVersions(version.Version, tag) >= 0 {
		return "", nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if err := downloadAndSwap(downloadURL, exe); err != nil {
		return "", fmt.Errorf("update to %s: %w", tag, err)
	}
	return tag, nil
}

// latestAsset returns the latest release tag and the download URL of the
// archive matching the current OS and architecture.
func latestAsset(owner, repo string) (string, string, error) {
	resp, err := http.Get(fmt.Sprintf(releaseURL, owner, repo))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("GitHub API status %s", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", "", fmt.Errorf("decode release: %w", err)
	}

	platform := fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)
	var suffix string
	switch runtime.GOOS {
	case "windows":
		suffix = platform + ".zip"
	case "linux":
		suffix = platform + ".tar.xz"
	default:
		return "", "", fmt.Errorf("self-update not supported on %s", runtime.GOOS)
	}

	for _, a := range rel.Assets {
		if strings.Contains(a.Name, "timetag") && strings.HasSuffix(a.Name, suffix) {
			return rel.TagName, a.BrowserDownloadURL, nil
		}
	}
	return "", "", fmt.Errorf("no release asset for %s", platform)
}

func downloadAndSwap(downloadURL, exePath string) error {
	tmpDir, err := os.MkdirTemp("", "timetag-update-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, filepath.Base(downloadURL))
	if err := download(downloadURL, archivePath); err != nil {
		return err
	}

	var extracted string
	switch {
	case strings.HasSuffix(archivePath, ".tar.xz"):
		extracted, err = extractTarXz(archivePath, tmpDir, exePath)
	case strings.HasSuffix(archivePath, ".zip"):
		extracted, err = extractZip(archivePath, tmpDir, exePath)
	default:
		return fmt.Errorf("unsupported archive %s", filepath.Base(archivePath))
	}
	if err != nil {
		return err
	}

	return swapExecutable(exePath, extracted)
}

func download(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, resp.Body)
	return err
}

func extractTarXz(archivePath, destDir, exePath string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return "", err
	}

	want := filepath.Base(exePath)
	tr := tar.NewReader(xzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if header.Typeflag != tar.TypeReg || filepath.Base(header.Name) != want {
			continue
		}
		dest := filepath.Join(destDir, want)
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, header.FileInfo().Mode())
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return "", err
		}
		out.Close()
		return dest, nil
	}
	return "", fmt.Errorf("%s not found in archive", want)
}

func extractZip(archivePath, destDir, exePath string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	want := filepath.Base(exePath)
	if runtime.GOOS == "windows" && !strings.HasSuffix(want, ".exe") {
		want += ".exe"
	}

	for _, f := range r.File {
		if filepath.Base(f.Name) != want {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		dest := filepath.Join(destDir, want)
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, f.Mode())
		if err != nil {
			rc.Close()
			return "", err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return "", err
		}
		return dest, nil
	}
	return "", fmt.Errorf("%s not found in archive", want)
}

// swapExecutable renames the running binary aside and moves the new one
// into place. On Windows the rename fails if the file is locked; the caller
// surfaces that to the user.
func swapExecutable(exePath, newPath string) error {
	backup := exePath + ".old"
	if err := os.Rename(exePath, backup); err != nil {
		return fmt.Errorf("back up current executable: %w", err)
	}
	if err := os.Rename(newPath, exePath); err != nil {
		_ = os.Rename(backup, exePath)
		return fmt.Errorf("install new executable: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(exePath, 0755); err != nil {
			return fmt.Errorf("set executable permissions: %w", err)
		}
		_ = os.Remove(backup)
	}
	// On Windows the .old file stays locked until the process exits and is
	// removed on the next run.
	return nil
}

// compareVersions orders two dotted version strings numerically, ignoring a
// leading "v". Returns -1, 0 or 1.
func compareVersions(a, b string) int {
	aParts := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bParts := strings.Split(strings.TrimPrefix(b, "v"), ".")

	n := len(aParts)
	if len(bParts) > n {
		n = len(bParts)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(aParts) {
			av, _ = strconv.Atoi(aParts[i])
		}
		if i < len(bParts) {
			bv, _ = strconv.Atoi(bParts[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
