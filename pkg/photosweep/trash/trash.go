// Package trash moves deleted media to the system trash where available,
// falling back to permanent deletion when no trash support is detected.
package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// commandTimeout is the maximum time to wait for one trash command.
const commandTimeout = 30 * time.Second

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// MoveToTrash moves a file to the system trash.
// On macOS: uses AppleScript to move to Trash.
// On Linux: uses gio trash or trash-cli.
// Falls back to permanent delete if no trash is available.
func MoveToTrash(ctx context.Context, path string) error {
	absPath, err := resolve(path)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case "darwin":
		if err := moveToTrashMacOS(ctx, absPath); err == nil {
			return nil
		}
	case "linux":
		if err := moveToTrashLinux(ctx, absPath); err == nil {
			return nil
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return fallbackDelete(absPath)
}

// Remove permanently deletes a file.
func Remove(_ context.Context, path string) error {
	absPath, err := resolve(path)
	if err != nil {
		return err
	}
	return fallbackDelete(absPath)
}

// Available reports whether a system trash command was found.
func Available() bool {
	switch runtime.GOOS {
	case "darwin":
		_, err := lookPath("osascript")
		return err == nil
	case "linux":
		if _, err := lookPath("gio"); err == nil {
			return true
		}
		_, err := lookPath("trash-put")
		return err == nil
	default:
		return false
	}
}

func resolve(path string) (string, error) {
	if _, err := os.Lstat(path); err != nil {
		return "", fmt.Errorf("cannot trash %q: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}
	return absPath, nil
}

// moveToTrashMacOS uses Finder so "Put Back" works.
func moveToTrashMacOS(ctx context.Context, path string) error {
	osascript, err := lookPath("osascript")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
	return exec.CommandContext(ctx, osascript, "-e", script).Run()
}

func moveToTrashLinux(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	// GNOME/GTK desktops
	if gioPath, err := lookPath("gio"); err == nil {
		if err := exec.CommandContext(ctx, gioPath, "trash", path).Run(); err == nil {
			return nil
		}
	}

	// trash-cli, XDG compliant
	if trashPath, err := lookPath("trash-put"); err == nil {
		if err := exec.CommandContext(ctx, trashPath, path).Run(); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no trash command succeeded for %q", path)
}

func fallbackDelete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return nil
}
