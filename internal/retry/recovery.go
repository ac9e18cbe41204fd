package retry

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
)

// OllamaRelauncher returns a RecoveryHook that tries to start the local
// Ollama server when the gateway cannot connect to it.  The attempt is
// best effort: the spawned process is detached and never waited on, and a
// failure to spawn is logged and swallowed.
func OllamaRelauncher(log zerolog.Logger) RecoveryHook {
	return func(ctx context.Context) error {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "windows":
			cmd = exec.Command("cmd", "/C", "start", "", `C:\Program Files\Ollama\ollama.exe`)
		default:
			cmd = exec.Command("ollama", "serve")
		}
		if err := cmd.Start(); err != nil {
			log.Error().Err(err).Msg("could not relaunch ollama")
			return err
		}
		log.Info().Int("pid", cmd.Process.Pid).Msg("relaunched ollama")
		// Detach: reap the child in the background so it does not zombie.
		go func() { _ = cmd.Wait() }()
		return nil
	}
}

// NoRecovery is a hook that does nothing, for tests and environments where
// the backend lifecycle is managed externally.
func NoRecovery(context.Context) error { return nil }
