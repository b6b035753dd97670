package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "gymdesk/internal/adapters/email"
	web "gymdesk/internal/adapters/http"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/adapters/storage"
	accountStore "gymdesk/internal/adapters/storage/account"
	classStore "gymdesk/internal/adapters/storage/class"
	classTypeStore "gymdesk/internal/adapters/storage/classtype"
	enrollmentStore "gymdesk/internal/adapters/storage/enrollment"
	memberStore "gymdesk/internal/adapters/storage/member"
	outboxStore "gymdesk/internal/adapters/storage/outbox"
	scheduleStore "gymdesk/internal/adapters/storage/schedule"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/domain/outbox"

	"github.com/google/uuid"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// WAL mode, foreign keys, and a busy timeout keep concurrent
	// front-desk and kiosk writes from tripping over each other.
	dbPath := envOrDefault("GYMDESK_DB", "gymdesk.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	ctStore := classTypeStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:    acctStore,
		MemberStore:     memberStore.NewSQLiteStore(timedDB),
		ClassTypeStore:  ctStore,
		ClassStore:      classStore.NewSQLiteStore(timedDB),
		ScheduleStore:   scheduleStore.NewSQLiteStore(timedDB),
		EnrollmentStore: enrollmentStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStore.NewSQLiteStore(timedDB),
	}

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("GYMDESK_ADMIN_EMAIL", "admin@gymdesk.local")
	adminPassword := envOrDefault("GYMDESK_ADMIN_PASSWORD", "change-me-before-launch")
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore, GenerateID: generateID}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed the starter class type catalog
	if err := orchestrators.ExecuteSeedCatalog(context.Background(), ctStore, generateID); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	// Configure email sender for invoice notifications
	emailFrom := envOrDefault("GYMDESK_EMAIL_FROM", "GymDesk <noreply@gymdesk.example>")
	var sender emailPkg.Sender
	if resendKey := os.Getenv("GYMDESK_RESEND_KEY"); resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("GYMDESK_ENV") == "production" {
			log.Println("WARNING: GYMDESK_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set GYMDESK_RESEND_KEY for real delivery)")
		}
	}

	// Billing pipeline: the outbox worker turns enrollment events into
	// invoices and notification emails.
	invoiceExecutor := &orchestrators.InvoiceExecutor{
		Calculator:      orchestrators.FlatPriceCalculator{},
		Generator:       &orchestrators.SequentialInvoiceGenerator{GenerateID: generateID},
		ClassStore:      stores.ClassStore,
		MemberStore:     stores.MemberStore,
		EnrollmentStore: stores.EnrollmentStore,
		EmailSender:     sender,
		FromAddress:     emailFrom,
	}
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeInvoice: invoiceExecutor,
	})
	web.SetOutboxProcessor(processor)

	outboxStopCh := make(chan struct{})
	orchestrators.StartBackgroundWorker(processor, 1*time.Minute, outboxStopCh)
	defer close(outboxStopCh)

	mux := web.NewMux(stores, collector)

	addr := envOrDefault("GYMDESK_ADDR", ":8080")
	log.Printf("GymDesk %s starting on %s (env=%s)", version, addr, envOrDefault("GYMDESK_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func generateID() string {
	return uuid.New().String()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
