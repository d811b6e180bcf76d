// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/draftloop/outreach-backend/internal/config"
	"github.com/draftloop/outreach-backend/internal/controller"
	"github.com/draftloop/outreach-backend/internal/db"
	"github.com/draftloop/outreach-backend/internal/drafting"
	"github.com/draftloop/outreach-backend/internal/events"
	"github.com/draftloop/outreach-backend/internal/mailbox"
	"github.com/draftloop/outreach-backend/internal/outbound"
	"github.com/draftloop/outreach-backend/internal/repository"
	"github.com/draftloop/outreach-backend/internal/service"
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
	if !producer.IsConfigured() {
		log.Println("⚠️ GEMINI_API_KEY not set, drafting will fail until configured")
	}
	email := outbound.NewSMTPTransmitter(cfg.SMTP)
	bridge := outbound.NewLinkedInBridge(cfg.Bridge.BaseURL)
	inbox := mailbox.NewIMAPMailbox(cfg.IMAP)

	leadService := &service.LeadService{LeadRepo: leadRepo, Events: publisher}
	reviewService := &service.ReviewService{MessageRepo: messageRepo, LeadRepo: leadRepo, Events: publisher}

	prospecting := &worker.ProspectingWorker{
		Source:   bridge,
		Producer: producer,
		Leads:    leadRepo,
		Events:   publisher,
		Timeout:  cfg.Workers.CollaboratorTimeout,
	}

	leadController := &controller.LeadController{LeadService: leadService, Prospecting: prospecting}
	messageController := &controller.MessageController{ReviewService: reviewService}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startWorkers(ctx, cfg, leadRepo, messageRepo, producer, email, bridge, inbox, publisher)

	addr := ":" + cfg.Server.Port
	log.Println("🚀 Server running on", addr)
	log.Fatal(http.ListenAndServe(addr, controller.NewRouter(leadController, messageController)))
}

func startWorkers(
	ctx context.Context,
	cfg config.Config,
	leadRepo *repository.LeadRepository,
	messageRepo *repository.MessageRepository,
	producer drafting.Producer,
	email outbound.EmailTransmitter,
	bridge outbound.ConnectionRequester,
	inbox mailbox.Mailbox,
	publisher events.Publisher,
) {
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
}
