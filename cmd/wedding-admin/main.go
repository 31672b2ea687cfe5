package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"wedding-invitations/internal/api"
	"wedding-invitations/internal/apperr"
	"wedding-invitations/internal/config"
	"wedding-invitations/internal/crud"
	"wedding-invitations/internal/messaging"
	"wedding-invitations/internal/models"
	"wedding-invitations/internal/toast"
	"wedding-invitations/internal/whatsapp"
)

type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *api.Client
	toasts  *toast.Store
	in      *bufio.Scanner
	wa      *whatsapp.Service
	sender  *messaging.InvitationSender
	replies *messaging.ReplyHandler

	accommodations *crud.Page[models.Accommodation, crud.AccommodationForm]
	suppliers      *crud.Page[models.Supplier, crud.SupplierForm]
	supplierTypes  *crud.Page[models.SupplierType, crud.SupplierTypeForm]
}

func main() {
	useWhatsApp := flag.Bool("whatsapp", true, "connect to WhatsApp to send invitations and receive replies")
	flag.Parse()

	fmt.Println("💍 Wedding Admin Console")
	fmt.Println("========================")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	toasts := toast.New(cfg.ToastTTL)
	defer toasts.Close()
	unsubscribe := toasts.Subscribe(toastPrinter())
	defer unsubscribe()

	client := api.NewClient(cfg.APIBaseURL,
		api.WithAdminToken(cfg.AdminToken),
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(log),
		api.WithErrorHook(func(e *apperr.Error) {
			log.Debug().Str("kind", string(e.Kind)).Int("status", e.Status).Str("detail", e.TechnicalDetail).Msg(e.UserMessage)
		}),
	)

	a := &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		toasts:  toasts,
		in:      bufio.NewScanner(os.Stdin),
		replies: messaging.NewReplyHandler(toasts, log),
	}
	confirmer := terminalConfirmer{in: a.in}
	a.accommodations = crud.NewAccommodationPage(client, toasts, confirmer, log)
	a.suppliers = crud.NewSupplierPage(client, toasts, confirmer, log)
	a.supplierTypes = crud.NewSupplierTypePage(client, toasts, confirmer, log)

	if *useWhatsApp {
		wa, err := whatsapp.NewService(ctx, whatsapp.Config{DataDir: cfg.WhatsAppDataDir, QROut: os.Stdout}, log)
		if err != nil {
			fmt.Printf("Error initializing WhatsApp service: %v\n", err)
			os.Exit(1)
		}
		wa.SetMessageHandler(a.replies.HandleMessage)

		fmt.Println("Connecting to WhatsApp...")
		if err := wa.Connect(ctx); err != nil {
			fmt.Printf("Error connecting to WhatsApp: %v\n", err)
			os.Exit(1)
		}
		defer wa.Disconnect()
		fmt.Println("✅ Connected to WhatsApp!")

		a.wa = wa
		a.sender = messaging.NewInvitationSender(wa, client, messaging.Config{
			PublicSiteURL:   cfg.PublicSiteURL,
			WeddingDate:     cfg.WeddingDate,
			WeddingLocation: cfg.WeddingLocation,
			BrideName:       cfg.BrideName,
			GroomName:       cfg.GroomName,
		}, log)
	}

	a.refreshReplies(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.run(ctx)
	}()

	select {
	case <-ctx.Done():
		fmt.Println("\n\nShutting down...")
	case <-done:
	}
	fmt.Println("Goodbye! 👋")
}

func (a *app) run(ctx context.Context) {
	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. List invitations")
		fmt.Println("  2. Invitations by status")
		fmt.Println("  3. Create invitation")
		fmt.Println("  4. Send invitations via WhatsApp")
		fmt.Println("  5. Accommodations")
		fmt.Println("  6. Auto-assign rooms")
		fmt.Println("  7. Suppliers")
		fmt.Println("  8. Supplier types")
		fmt.Println("  9. Run RSVP smoke scenario")
		fmt.Println("  10. Exit")
		fmt.Print("\nEnter command (1-10): ")

		if !a.in.Scan() {
			return
		}

		switch strings.TrimSpace(a.in.Text()) {
		case "1":
			a.listInvitations(ctx, "")
		case "2":
			a.invitationsByStatus(ctx)
		case "3":
			a.createInvitation(ctx)
		case "4":
			a.sendInvitations(ctx)
		case "5":
			a.accommodationsMenu(ctx)
		case "6":
			a.autoAssign(ctx)
		case "7":
			a.suppliersMenu(ctx)
		case "8":
			a.supplierTypesMenu(ctx)
		case "9":
			a.runScenario(ctx)
		case "10":
			fmt.Println("Exiting...")
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// toastPrinter prints each toast once, when it first shows up
func toastPrinter() func([]toast.Toast) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	icons := map[toast.Kind]string{
		toast.KindSuccess: "✅",
		toast.KindError:   "❌",
		toast.KindInfo:    "ℹ️ ",
		toast.KindWarning: "⚠️ ",
	}
	return func(list []toast.Toast) {
		mu.Lock()
		defer mu.Unlock()
		visible := make(map[string]bool, len(list))
		for _, t := range list {
			visible[t.ID] = true
			if seen[t.ID] {
				continue
			}
			fmt.Printf("\n%s %s\n", icons[t.Kind], t.Message)
		}
		seen = visible
	}
}

type terminalConfirmer struct {
	in *bufio.Scanner
}

func (c terminalConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)
	if !c.in.Scan() {
		return false, c.in.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(c.in.Text()))
	return answer == "y" || answer == "yes" || answer == "s" || answer == "si", nil
}
