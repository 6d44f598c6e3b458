// Command events tails the study events published on NATS JetStream.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"haskify-be/internal/config"
	"haskify-be/pkg/events"
	pktNats "haskify-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	filter := flag.String("type", "", "only show one event type, e.g. QUIZ_GENERATED")
	durable := flag.String("durable", "", "durable consumer name; empty replays nothing and shows new events only")
	flag.Parse()

	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		color.Red("Failed to connect to NATS at %s: %v", cfg.App.NatsURL, err)
		os.Exit(1)
	}
	defer sub.Close()

	subject := pktNats.SubjectPrefix + ".>"
	if *filter != "" {
		subject = pktNats.Subject(*filter)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, subject, *durable, func(_ context.Context, event events.Event) error {
		printEvent(event)
		return nil
	})
	if err != nil {
		color.Red("Failed to subscribe to %s: %v", subject, err)
		os.Exit(1)
	}

	color.Cyan("Tailing %s (Ctrl+C to stop)", subject)
	<-ctx.Done()
}

func printEvent(event events.Event) {
	payload := event.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, color.New(color.Faint).Sprint(k+"=")+formatValue(payload[k]))
	}

	typeColor := color.New(color.FgGreen, color.Bold)
	switch event.EventType() {
	case events.TypeSessionClosed:
		typeColor = color.New(color.FgYellow, color.Bold)
	case events.TypeMaterialIngested:
		typeColor = color.New(color.FgBlue, color.Bold)
	}

	color.White("%s %s %s",
		event.Timestamp().Format("15:04:05"),
		typeColor.Sprintf("%-18s", event.EventType()),
		strings.Join(parts, " "),
	)
}

func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return color.New(color.FgMagenta).Sprint(v)
}
