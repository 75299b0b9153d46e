package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

var commandContext = exec.CommandContext

var (
	ErrAudioMissing  = errors.New("audio: file not found")
	ErrPlayerMissing = errors.New("audio: player binary not found")
)

// Player launches an external command-line audio player. The audio path is
// appended as the final argument.
type Player struct {
	Binary string
	Args   []string
	// Output receives the player's stdout and stderr. Nil discards it so the
	// player cannot scribble over the frames.
	Output io.Writer
}

// Process is a running player.
type Process struct {
	cmd  *exec.Cmd
	once sync.Once
	err  error
}

// Start checks the audio file and player binary, then spawns the player.
func (p Player) Start(ctx context.Context, path string) (*Process, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrAudioMissing)
		}
		return nil, fmt.Errorf("stat audio: %w", err)
	}

	bin, err := exec.LookPath(p.Binary)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Binary, ErrPlayerMissing)
	}

	args := append(append([]string(nil), p.Args...), path)
	cmd := commandContext(ctx, bin, args...)
	if p.Output != nil {
		cmd.Stdout = p.Output
		cmd.Stderr = p.Output
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", p.Binary, err)
	}
	return &Process{cmd: cmd}, nil
}

// Wait blocks until the player exits. Repeated calls return the first result.
func (pr *Process) Wait() error {
	pr.once.Do(func() {
		if err := pr.cmd.Wait(); err != nil {
			pr.err = fmt.Errorf("wait for audio player: %w", err)
		}
	})
	return pr.err
}

// Kill terminates the player and reaps it. Used when playback aborts.
func (pr *Process) Kill() error {
	if pr.cmd.Process == nil {
		return nil
	}
	if err := pr.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	_ = pr.Wait()
	return nil
}

func (pr *Process) Pid() int {
	if pr.cmd.Process == nil {
		return 0
	}
	return pr.cmd.Process.Pid
}

// Silent stands in for a player when audio is disabled.
type Silent struct{}

func (Silent) Wait() error { return nil }
func (Silent) Kill() error { return nil }
