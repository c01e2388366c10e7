//go:build unix

package fsstore

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

// authorization maps the caller's access to the library root onto a
// media.AuthorizationState.
func authorization(root string) media.AuthorizationState {
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return media.NotDetermined
	case errors.Is(err, fs.ErrPermission):
		return media.Denied
	case err != nil:
		return media.Restricted
	case !info.IsDir():
		return media.Restricted
	}

	if unix.Access(root, unix.R_OK|unix.X_OK) != nil {
		return media.Denied
	}
	if unix.Access(root, unix.W_OK) != nil {
		return media.Limited
	}
	return media.Authorized
}
