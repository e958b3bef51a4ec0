package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"subscription-tracker/internal/config"
	"subscription-tracker/internal/domain/model"
	pg "subscription-tracker/internal/infra/db/postgres"
	"subscription-tracker/internal/infra/logging"
	"subscription-tracker/internal/infra/security"
	"subscription-tracker/internal/infra/web"
	"subscription-tracker/internal/usecase"
)

// Seeds a demo account with a handful of subscriptions for local development.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewUserRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	txManager := pg.NewTxManager(pool)

	hasher := security.NewBcryptHasher()
	tokens := web.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authUC := usecase.NewAuthUseCase(userRepo, txManager, tokens, hasher, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, userRepo, nil, logger)

	const demoEmail = "demo@example.com"
	user, _, err := authUC.SignUp(ctx, "Demo", "User", demoEmail, "demo-password")
	if err != nil {
		existing, lookupErr := userRepo.FindByEmail(ctx, nil, demoEmail)
		if lookupErr != nil {
			log.Fatalf("sign up: %v", err)
		}
		user = existing
		fmt.Printf("demo user already present: %s\n", user.ID)
	} else {
		fmt.Printf("created demo user: %s\n", user.ID)
	}

	seeds := []usecase.CreateSubscriptionInput{
		{
			Name:      "Netflix",
			Price:     44.90,
			Category:  model.CategoryStreaming,
			Frequency: model.FrequencyMonthly,
			StartDate: time.Now().AddDate(0, 0, -10),
		},
		{
			Name:          "Spotify Premium",
			Price:         22.90,
			Category:      model.CategoryStreaming,
			Frequency:     model.FrequencyMonthly,
			PaymentMethod: model.PaymentMethodPayPal,
			StartDate:     time.Now().AddDate(0, 0, -3),
		},
		{
			Name:      "JetBrains All Products",
			Price:     649.00,
			Currency:  model.CurrencyUSD,
			Category:  model.CategorySoftware,
			Frequency: model.FrequencyAnnual,
			StartDate: time.Now().AddDate(0, -1, 0),
		},
	}

	created := 0
	for _, in := range seeds {
		if _, err := subUC.Create(ctx, user.ID, in); err != nil {
			log.Printf("seed %q: %v", in.Name, err)
			continue
		}
		created++
	}
	fmt.Printf("seeded %d subscriptions for %s\n", created, demoEmail)
}
