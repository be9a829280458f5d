package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"ai-permit-planner-be/internal/config"
	"ai-permit-planner-be/pkg/events"
	pktNats "ai-permit-planner-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print run events published by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			color.NoColor = color.NoColor || noColor
			cfg := config.Load()

			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s on %s (Ctrl+C to stop)\n", subject, cfg.App.NatsURL)
			return sub.Watch(ctx, subject, func(_ context.Context, ev events.Event) error {
				return printEvent(cmd.OutOrStdout(), ev)
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", pktNats.SubjectAll, "Subject filter")
	return cmd
}

var eventColors = map[string]*color.Color{
	events.RunCompleted:  color.New(color.FgGreen),
	events.RunFallback:   color.New(color.FgYellow),
	events.RunIncomplete: color.New(color.FgRed),
}

func printEvent(w io.Writer, ev events.Event) error {
	c, ok := eventColors[ev.EventType()]
	if !ok {
		c = color.New(color.FgWhite)
	}
	if _, err := c.Fprintf(w, "%s %-15s", ev.Timestamp().Format("15:04:05"), ev.EventType()); err != nil {
		return err
	}

	payload := ev.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, " %s=%v", k, payload[k]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
