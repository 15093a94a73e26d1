package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sara-labs/sara/internal/automation"
	"github.com/sara-labs/sara/internal/classify"
)

// RegisterAutomation binds all desktop automation verbs to handlers wrapping
// desk.
func RegisterAutomation(reg *Registry, desk *automation.Desktop) {
	reg.Register(classify.VerbOpen, Func(func(ctx context.Context, arg string) Result {
		if err := desk.OpenApp(ctx, arg); err != nil {
			return automationFailure("open", arg, err)
		}
		return Result{OK: true, Response: fmt.Sprintf("Opening %s.", arg)}
	}))

	reg.Register(classify.VerbClose, Func(func(ctx context.Context, arg string) Result {
		if err := desk.CloseApp(ctx, arg); err != nil {
			if errors.Is(err, automation.ErrProtectedProcess) {
				return Result{OK: false, Response: "I can't close the browser while I'm using it."}
			}
			if errors.Is(err, automation.ErrNoMatch) {
				return Result{OK: false, Response: fmt.Sprintf("I couldn't find %s running.", arg)}
			}
			return automationFailure("close", arg, err)
		}
		return Result{OK: true, Response: fmt.Sprintf("Closing %s.", arg)}
	}))

	reg.Register(classify.VerbPlay, Func(func(ctx context.Context, arg string) Result {
		if err := desk.Play(ctx, arg); err != nil {
			return automationFailure("play", arg, err)
		}
		return Result{OK: true, Response: fmt.Sprintf("Playing %s on YouTube.", arg)}
	}))

	reg.Register(classify.VerbGoogleSearch, Func(func(ctx context.Context, arg string) Result {
		if err := desk.GoogleSearch(ctx, arg); err != nil {
			return automationFailure("google search", arg, err)
		}
		return Result{OK: true, Response: fmt.Sprintf("Here's what Google has on %s.", arg)}
	}))

	reg.Register(classify.VerbYouTubeSearch, Func(func(ctx context.Context, arg string) Result {
		if err := desk.YouTubeSearch(ctx, arg); err != nil {
			return automationFailure("youtube search", arg, err)
		}
		return Result{OK: true, Response: fmt.Sprintf("Here's what YouTube has on %s.", arg)}
	}))

	reg.Register(classify.VerbSystem, Func(func(ctx context.Context, arg string) Result {
		if err := desk.SystemAction(ctx, arg); err != nil {
			if errors.Is(err, automation.ErrUnknownAction) {
				return Result{OK: false, Response: fmt.Sprintf("I don't know the system action %q.", arg)}
			}
			return automationFailure("system", arg, err)
		}
		return Result{OK: true, Response: "Done."}
	}))
}

// automationFailure logs err and returns a generic failure result.
func automationFailure(action, arg string, err error) Result {
	slog.Error("desktop automation failed", "action", action, "arg", arg, "error", err)
	return Result{OK: false, Response: fmt.Sprintf("Sorry, I couldn't %s %s.", action, arg)}
}
