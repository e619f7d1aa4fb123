package tone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Player plays the audio resource named by tone and blocks until it ends.
type Player interface {
	Play(ctx context.Context, tone string) error
}

// CommandPlayer plays tones from a directory with an external command.
type CommandPlayer struct {
	// dir is the directory tone names are resolved against.
	dir string
	// command is the player argv; the tone path is appended as the last argument.
	command []string
}

var (
	// ErrUnsupportedOS indicates there is no known player for the current OS.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// errToneOutsideDir is returned for tone names escaping the tone directory.
	errToneOutsideDir = errors.New("tone must be a file inside the tone directory")
)

// NewCommandPlayer creates a player for tones under dir. An empty command
// selects the default player of the current OS.
func NewCommandPlayer(dir string, command []string) (*CommandPlayer, error) {
	if len(command) == 0 {
		var err error

		command, err = DefaultCommand()
		if err != nil {
			return nil, err
		}
	}

	return &CommandPlayer{
		dir:     filepath.Clean(dir),
		command: append([]string(nil), command...),
	}, nil
}

// DefaultCommand picks a player available on the current OS:
// - Linux:   `paplay`, falling back to `aplay`
// - macOS:   `afplay`
// - Windows: PowerShell with System.Media.SoundPlayer
func DefaultCommand() ([]string, error) {
	osName := strings.ToLower(runtime.GOOS)

	switch {
	case strings.Contains(osName, "linux"):
		if _, err := exec.LookPath("paplay"); err == nil {
			return []string{"paplay"}, nil
		}

		return []string{"aplay", "-q"}, nil
	case strings.Contains(osName, "darwin"):
		return []string{"afplay"}, nil
	case strings.Contains(osName, "windows"):
		return []string{
			"powershell.exe", "-NoProfile", "-NonInteractive", "-Command",
			"& { param($p) (New-Object Media.SoundPlayer $p).PlaySync() }",
		}, nil
	default:
		return nil, fmt.Errorf("%s: %w", runtime.GOOS, ErrUnsupportedOS)
	}
}

// Play runs the player for the tone and waits for it to finish.
// Cancelling ctx kills the player process.
func (p *CommandPlayer) Play(ctx context.Context, tone string) error {
	path, err := p.Resolve(tone)
	if err != nil {
		return err
	}

	args := append(append([]string(nil), p.command[1:]...), path)

	//nolint:gosec // The command comes from local settings, the argument is a checked path.
	cmd := exec.CommandContext(ctx, p.command[0], args...)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s: %w: %s", domain.ErrPlayback, tone, err, strings.TrimSpace(string(output)))
	}

	return nil
}

// Resolve maps a tone name to a regular file inside the tone directory.
func (p *CommandPlayer) Resolve(tone string) (string, error) {
	if tone == "" || filepath.IsAbs(tone) || !filepath.IsLocal(tone) {
		return "", fmt.Errorf("%w: %q: %w", domain.ErrPlayback, tone, errToneOutsideDir)
	}

	path := filepath.Join(p.dir, tone)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", domain.ErrPlayback, tone, err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q is not a regular file", domain.ErrPlayback, tone)
	}

	return path, nil
}
