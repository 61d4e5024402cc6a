package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openCommand is swapped in tests to avoid launching processes.
var openCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenURL opens a result URL (master mix, video, MIDI) with the platform's default handler.
//
// Only http(s) and file URLs are accepted.
func OpenURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return fmt.Errorf("%w: bad URL %q", ErrInvalidArgument, raw)
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return fmt.Errorf("%w: unsupported URL scheme %q", ErrInvalidArgument, u.Scheme)
	}

	var name string
	var args []string
	switch rt := getRuntime(); rt {
	case "darwin":
		name, args = "open", []string{raw}
	case "linux":
		name, args = "xdg-open", []string{raw}
	case "windows":
		name, args = "cmd", []string{"/c", "start", raw}
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := openCommand(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", raw, err)
	}
	return nil
}
