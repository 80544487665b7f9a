// Package filex stages uploaded files on local disk before they are pushed
// to object storage.
package filex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
)

// ErrUnsupportedType is returned by Stage for content that is not an
// accepted image.
var ErrUnsupportedType = errors.New("unsupported file type")

// imageExts maps the accepted sniffed content types to the extension the
// staged file gets.
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// EnsureDir creates dir (relative paths resolve against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Stage copies src into dir under a random name. The content type is
// sniffed from the first bytes; anything but a JPEG, PNG, GIF or WebP image
// fails with ErrUnsupportedType, and the extension follows the sniffed type.
// Client-supplied names and content types are never used.
func Stage(dir string, src io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	ext, ok := imageExts[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	name, err := common.MakeRandHexString(16)
	if err != nil {
		return "", fmt.Errorf("staged name: %w", err)
	}
	path := filepath.Join(dir, name+ext)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o660)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), src)); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	return path, nil
}

// Remove deletes staged files, ignoring empty paths and files that are
// already gone.
func Remove(paths ...string) error {
	var firstErr error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
