//go:build !unix

package fsstore

import (
	"errors"
	"io/fs"
	"os"

	"github.com/jamesainslie/photosweep/pkg/photosweep/media"
)

func authorization(root string) media.AuthorizationState {
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return media.NotDetermined
	case errors.Is(err, fs.ErrPermission):
		return media.Denied
	case err != nil, !info.IsDir():
		return media.Restricted
	}

	f, err := os.Open(root)
	if err != nil {
		return media.Denied
	}
	_ = f.Close()

	if info.Mode().Perm()&0o200 == 0 {
		return media.Limited
	}
	return media.Authorized
}
