package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"crystalenergy-backend/internal/client"
	"crystalenergy-backend/internal/config"
	"crystalenergy-backend/internal/reconcile"
	"crystalenergy-backend/internal/repository"
	"crystalenergy-backend/internal/server"
	"crystalenergy-backend/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitSqliteClient(cfg.DatabasePath)
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	paypalClient := client.NewPaypalClient(&cfg.Paypal, cfg.FrontendURL)
	openaiClient := client.NewOpenAIClient(&cfg.OpenAI)

	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	paymentLogRepo := repository.NewPaymentLogRepository(db)
	emailLogRepo := repository.NewEmailLogRepository(db)

	consultationService := service.NewConsultationService(consultationRepo, orderRepo, openaiClient)
	notifier := service.NewEmailNotifier(cfg.Email, cfg.FrontendURL, customerRepo, consultationRepo, emailLogRepo)

	// webhook acks must stay fast, generation and email run detached
	engine := reconcile.NewEngine(orderRepo, paymentLogRepo, consultationService, notifier,
		reconcile.WithAsyncFanOut(2*time.Minute))

	paymentService := service.NewPaymentService(
		stripeClient, paypalClient, engine,
		customerRepo, orderRepo, paymentLogRepo,
		cfg.Stripe.SecretKey != "",
		cfg.Paypal.ClientID != "" && cfg.Paypal.ClientSecret != "",
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(paymentService, consultationService)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
