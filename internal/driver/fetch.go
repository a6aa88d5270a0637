package driver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// Download fetches url into destPath, drawing a progress bar on the
// interactive channel. The bar deliberately bypasses the log: ANSI redraws
// would make the log unreadable, and the log already records the URL.
func (r *Runner) Download(url, destPath string) error {
	fmt.Fprintf(r.Log, "downloading %s -> %s\n", url, destPath)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Fprintf(r.Log, "failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed: HTTP status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			fmt.Fprintf(r.Log, "failed to close %s: %v\n", destPath, cerr)
		}
	}()

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetDescription(filepath.Base(destPath)),
		progressbar.OptionSetWriter(r.screen()),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	fmt.Fprintln(r.screen())
	return nil
}

// SvnCheckout checks out url into destDir.
func (r *Runner) SvnCheckout(url, destDir string) error {
	return r.Run("", "svn", "checkout", url, destDir)
}

// GitClone clones url into destDir and, when revision is non-empty, checks
// out that revision inside the clone.
func (r *Runner) GitClone(url, revision, destDir string) error {
	if err := r.Run("", "git", "clone", url, destDir); err != nil {
		return err
	}
	if revision != "" {
		return r.Run(destDir, "git", "checkout", revision)
	}
	return nil
}
