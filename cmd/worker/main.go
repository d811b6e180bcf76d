// cmd/worker/main.go
//
// Workers-only process: runs the four pollers against the shared store
// without the approval API. Safe to run alongside cmd/server; row claims
// keep every instance from double-processing.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/draftloop/outreach-backend/internal/config"
	"github.com/draftloop/outreach-backend/internal/db"
	"github.com/draftloop/outreach-backend/internal/drafting"
	"github.com/draftloop/outreach-backend/internal/events"
	"github.com/draftloop/outreach-backend/internal/mailbox"
	"github.com/draftloop/outreach-backend/internal/outbound"
	"github.com/draftloop/outreach-backend/internal/repository"
	"github.com/draftloop/outreach-backend/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	database, err := db.Connect(cfg.DB.DSN())
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}
	defer database.Close()

	leadRepo := &repository.LeadRepository{DB: database}
	messageRepo := &repository.MessageRepository{DB: database}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			log.Println("⚠️ AMQP unavailable, pipeline events disabled:", err)
		} else {
			defer amqpPub.Close()
			publisher = amqpPub
		}
	}

	producer := drafting.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	email := outbound.NewSMTPTransmitter(cfg.SMTP)
	bridge := outbound.NewLinkedInBridge(cfg.Bridge.BaseURL)
	inbox := mailbox.NewIMAPMailbox(cfg.IMAP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	draftingWorker := &worker.DraftingWorker{
		Store:    worker.LeadClaimStore{Repo: leadRepo},
		Producer: producer,
		Events:   publisher,
		Interval: cfg.Workers.DraftingInterval,
		Timeout:  cfg.Workers.CollaboratorTimeout,
	}
	followUpWorker := &worker.FollowUpWorker{
		Store:    worker.MessageClaimStore{Repo: messageRepo},
		Producer: producer,
		Events:   publisher,
		Interval: cfg.Workers.FollowUpInterval,
		Timeout:  cfg.Workers.CollaboratorTimeout,
	}
	sendingWorker := &worker.SendingWorker{
		Store:         worker.MessageClaimStore{Repo: messageRepo},
		Email:         email,
		LinkedIn:      bridge,
		Events:        publisher,
		Interval:      cfg.Workers.SendingInterval,
		Timeout:       cfg.Workers.CollaboratorTimeout,
		MaxFollowUps:  cfg.FollowUp.MaxFollowUps,
		FollowUpDelay: cfg.FollowUp.Delay,
	}
	inboundWorker := &worker.InboundWorker{
		Leads:        leadRepo,
		Messages:     messageRepo,
		Mailbox:      inbox,
		Producer:     producer,
		Events:       publisher,
		Interval:     cfg.Workers.InboundInterval,
		Timeout:      cfg.Workers.CollaboratorTimeout,
		FetchRetries: cfg.FollowUp.FetchRetries,
		FetchBackoff: cfg.FollowUp.FetchRetryDelay,
	}

	go draftingWorker.Run(ctx)
	go followUpWorker.Run(ctx)
	go sendingWorker.Run(ctx)
	go inboundWorker.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("🛑 Shutting down workers")
	cancel()
}
