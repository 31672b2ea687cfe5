package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/analytics"
	"wedding-invitations/internal/api"
	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/config"
	"wedding-invitations/internal/replay"
	"wedding-invitations/internal/storage"
	"wedding-invitations/internal/texts"
	"wedding-invitations/internal/wizard"
)

func main() {
	code := flag.String("code", "", "invitation code from the link")
	token := flag.String("token", "", "invitation token from the link")
	replayFile := flag.String("replay", "", "replay a recorded session (JSON lines) instead of answering")
	flag.Parse()

	if *code == "" || *token == "" {
		fmt.Println("Usage: wedding-rsvp -code <code> -token <token> [-replay session.jsonl]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *code, *token, *replayFile); err != nil {
		fmt.Printf("❌ %s\n", apperr.UserMessage(err))
		log.Debug().Err(err).Msg("RSVP client stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, code, token, replayFile string) error {
	store, err := storage.OpenSQLite(ctx, cfg.CacheDBPath)
	if err != nil {
		return fmt.Errorf("failed to open local cache: %w", err)
	}
	defer store.Close()

	client := api.NewClient(cfg.APIBaseURL, api.WithTimeout(cfg.HTTPTimeout), api.WithLogger(log))

	sid, err := analytics.SessionID(ctx, store)
	if err != nil {
		log.Warn().Err(err).Msg("Using a throwaway analytics session")
		sid, _ = analytics.SessionID(ctx, storage.NewMemoryStore())
	}

	inv, err := client.Authenticate(ctx, code, token)
	if err != nil {
		return err
	}

	tracker := analytics.NewTracker(client, sid, cfg.HeatmapBatchSize, cfg.HeatmapFlushInterval, log)
	tracker.Start(ctx)
	defer tracker.Stop()

	session := wizard.NewSession(*inv, client, analytics.NewInteractionLogger(client, sid, log), sid, log)
	defer session.Close()

	if replayFile != "" {
		f, err := os.Open(replayFile)
		if err != nil {
			return fmt.Errorf("failed to open replay file: %w", err)
		}
		defer f.Close()

		bridge := replay.NewBridge(session, *inv, tracker, log)
		if err := bridge.Run(ctx, f); err != nil {
			return fmt.Errorf("replay failed: %w", err)
		}
		printReplayResult(session.State())
		return nil
	}

	t := &terminal{
		cfg:     cfg,
		in:      bufio.NewScanner(os.Stdin),
		session: session,
		tracker: tracker,
		texts:   texts.NewCache(client, store, cfg.TextsCacheTTL, log),
	}
	return t.run(ctx)
}

func printReplayResult(s wizard.State) {
	fmt.Println("\n🔁 Replay finished")
	fmt.Printf("Step: %s\n", s.Step)
	fmt.Printf("Attending: %d of %d\n", s.AttendingCount(), len(s.Invitation.Guests))
	fmt.Printf("Phone: %s\n", s.PhoneNumber)
	fmt.Printf("Travel: %s %q car=%s carpool=%v\n", s.Travel.TransportType, s.Travel.Schedule, s.Travel.CarOption, s.Travel.CarpoolInterest)
	fmt.Printf("Accommodation: %v  Transfer: %v\n", s.AccommodationRequested, s.TransferRequested)
	if s.Err != nil {
		fmt.Printf("Last error: %s\n", apperr.UserMessage(s.Err))
	}
}
