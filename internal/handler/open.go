package handler

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openWithDefaultApp hands path to the platform's default opener.
func openWithDefaultApp(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("handler: open %s: %w", path, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
