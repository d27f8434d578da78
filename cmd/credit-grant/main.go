package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bosfinder_backend/internal/bootstrap"
	"bosfinder_backend/internal/events"
	"bosfinder_backend/internal/leads"
	"bosfinder_backend/internal/notification"
	"bosfinder_backend/platform/config"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/validator"
)

func main() {
	bosID := flag.String("bos", "", "id of the professional to credit")
	amount := flag.Int("amount", 0, "number of lead credits to add (1-1000)")
	note := flag.String("note", "", "reason recorded in the credit history")
	flag.Parse()

	if *bosID == "" || *amount <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Error("credit-grant needs a persistent store; set STORE_DRIVER to postgres or redis")
		os.Exit(1)
	}

	balance, err := grant(context.Background(), cfg, log, *bosID, *amount, *note)
	if err != nil {
		log.Error("failed to grant credits", "bosId", *bosID, "amount", *amount, "error", err)
		os.Exit(1)
	}

	log.Info("credits granted", "bosId", *bosID, "amount", *amount, "balance", balance)
	fmt.Printf("%s: +%d credits, balance %d\n", *bosID, *amount, balance)
}

func grant(ctx context.Context, cfg *config.Config, log *logger.Logger, bosID string, amount int, note string) (int, error) {
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return 0, fmt.Errorf("open document store: %w", err)
	}
	defer closeStore()

	eventBus := events.NewInMemoryBus(log)
	notification.New(store, nil, log).RegisterHandlers(eventBus)
	ledger := leads.NewModule(store, eventBus, validator.New(), log).Service()

	balance, err := ledger.GrantCredits(ctx, bosID, amount, note)
	eventBus.Wait()
	return balance, err
}
