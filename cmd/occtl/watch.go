package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"occtl/internal/bus"
	"occtl/internal/logging"
	"occtl/internal/permission"
	"occtl/internal/stream"
	"occtl/internal/types"
)

var (
	eventColor  = color.New(color.FgCyan)
	permColor   = color.New(color.FgYellow, color.Bold)
	errorColor  = color.New(color.FgRed)
	okColor     = color.New(color.FgGreen)
	promptColor = color.New(color.Bold)
)

func watchCmd() *cobra.Command {
	var autoRespond string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the live event stream and handle permission requests",
		Long: `Follow the server event stream. Incoming permission requests are checked
against the persisted decision history first: a remembered "always" grant
for the same session and request type is approved without prompting.
Everything else prompts on stdin, or is answered by --auto-respond.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if autoRespond != "" && !types.PermissionResponse(autoRespond).Valid() {
				return fmt.Errorf("invalid --auto-respond value %q (want once, always or reject)", autoRespond)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			b := bus.New(a.log)
			engine := permission.NewEngine(a.client, a.store, a.log)
			if err := engine.LoadHistory(ctx); err != nil {
				a.log.Warn("starting with empty permission history", logging.F("err", err))
			}
			detach := engine.Bind(ctx, b)
			defer detach()

			// The engine's subscription runs first, so by the time this
			// fires the request is already queued (or auto-approved).
			pendingSignal := make(chan struct{}, 1)
			b.Subscribe(types.EventPermissionRequest, func(types.StreamEvent) {
				select {
				case pendingSignal <- struct{}{}:
				default:
				}
			})
			b.Subscribe(types.EventWildcard, printEvent)

			manager := stream.NewManager(a.client, b, a.log, stream.Options{
				BaseDelay:   a.cfg.ReconnectBase(),
				MaxAttempts: a.cfg.MaxReconnectAttempts(),
			})
			// A failed first attempt is not fatal: the manager has a
			// retry scheduled, so stay up and let the backoff run.
			if err := manager.Connect(ctx); err != nil {
				errorColor.Fprintf(os.Stderr, "connect failed: %v (retrying)\n", err)
			}
			defer manager.Disconnect()

			okColor.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", a.client.BaseURL())

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if manager.State() == stream.StateIdle {
						return errors.New("event stream gave up after exhausting reconnect attempts")
					}
				case <-pendingSignal:
					resolvePending(ctx, engine, types.PermissionResponse(autoRespond))
				}
			}
		},
	}
	cmd.Flags().StringVar(&autoRespond, "auto-respond", "", "Answer every prompt with this response (once, always, reject)")
	return cmd
}

func printEvent(event types.StreamEvent) {
	switch event.Type {
	case types.EventPermissionRequest:
		// Rendered by the prompt flow.
	case types.EventSessionError:
		errorColor.Printf("event %s %s\n", event.Type, compactJSON(event))
	default:
		eventColor.Printf("event %s %s\n", event.Type, compactJSON(event))
	}
}

func compactJSON(event types.StreamEvent) string {
	raw := strings.TrimSpace(string(event.Properties))
	if raw == "" || raw == "{}" {
		return ""
	}
	return truncate(raw, 120)
}

func resolvePending(ctx context.Context, engine *permission.Engine, auto types.PermissionResponse) {
	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return
		}
		req, ok := engine.Pending()
		if !ok {
			return
		}

		permColor.Printf("permission request: %s\n", permission.FormatMessage(req))
		fmt.Printf("  session=%s type=%s id=%s\n", req.SessionID, req.Type, req.ID)

		response := auto
		if response == "" {
			promptColor.Print("  [o]nce / [a]lways / [r]eject / [d]ismiss > ")
			line, err := reader.ReadString('\n')
			if err != nil {
				engine.Dismiss()
				continue
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "o", "once":
				response = types.ResponseOnce
			case "a", "always":
				response = types.ResponseAlways
			case "r", "reject":
				response = types.ResponseReject
			case "d", "dismiss":
				engine.Dismiss()
				continue
			default:
				errorColor.Println("  unrecognized answer")
				continue
			}
		}

		if err := engine.Respond(ctx, response); err != nil {
			if head, ok := engine.Pending(); ok && head.ID == req.ID {
				errorColor.Printf("  respond failed: %v (request kept pending)\n", err)
				return
			}
			errorColor.Printf("  responded %s, but recording it failed: %v\n", response, err)
			continue
		}
		okColor.Printf("  responded %s\n", response)
	}
}
