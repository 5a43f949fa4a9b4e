package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/divebase/divebase/config"
	"github.com/divebase/divebase/subscriptions"
	"github.com/divebase/divebase/webhook"
	"github.com/divebase/divebase/webhook/postgres"
	redisrepo "github.com/divebase/divebase/webhook/redis"
)

const usage = `Usage: cli <command> [args]

Commands:
  stats <webhook_id>         delivery counts by status for a webhook
  deliver <delivery_id>      attempt one delivery now
  retry <delivery_id>        force a delivery back to pending
  process [limit]            process due deliveries (default limit 100)
  cleanup [days]             delete deliveries older than N days (default 30)
  seed [file]                load webhook definitions from a YAML seed file
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, err := newRepository(ctx, cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer repo.Close(ctx)

	service := webhook.NewService(repo)
	service.Timeout = cfg.DeliveryTimeout()
	service.Client.Timeout = cfg.DeliveryTimeout()

	if err := run(ctx, cfg, service, repo, os.Args[1], os.Args[2:]); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, service *webhook.Service, repo webhook.Repository, command string, args []string) error {
	switch command {
	case "stats":
		if len(args) < 1 {
			return fmt.Errorf("stats requires a webhook id")
		}
		stats, err := service.Stats(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(stats)

	case "deliver":
		if len(args) < 1 {
			return fmt.Errorf("deliver requires a delivery id")
		}
		ok, err := service.Deliver(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("delivered: %t\n", ok)
		return nil

	case "retry":
		if len(args) < 1 {
			return fmt.Errorf("retry requires a delivery id")
		}
		if err := service.Retry(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("delivery queued for immediate retry")
		return nil

	case "process":
		limit := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parsing limit: %w", err)
			}
			limit = n
		}
		result, err := service.ProcessPending(ctx, limit)
		if err != nil {
			return err
		}
		return printJSON(result)

	case "cleanup":
		days := cfg.RetentionDays
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parsing days: %w", err)
			}
			days = n
		}
		removed, err := service.Cleanup(ctx, days)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d deliveries\n", removed)
		return nil

	case "seed":
		file := cfg.WebhooksFile
		if len(args) > 0 {
			file = args[0]
		}
		return seed(ctx, repo, file)

	default:
		return fmt.Errorf("unknown command: %s\n\n%s", command, usage)
	}
}

// seed loads webhook definitions from a YAML file into the store
func seed(ctx context.Context, repo webhook.Repository, file string) error {
	loader := subscriptions.NewLoader()
	if err := loader.Load(file); err != nil {
		return err
	}

	for _, sub := range loader.List() {
		id, err := repo.CreateWebhook(ctx, sub.ToWebhook())
		if err != nil {
			return fmt.Errorf("seeding webhook %s: %w", sub.ID, err)
		}
		fmt.Printf("seeded webhook %s -> %s\n", id, sub.URL)
	}

	return nil
}

func newRepository(ctx context.Context, cfg *config.Config) (webhook.Repository, error) {
	switch cfg.StorageBackend {
	case "redis":
		return redisrepo.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		repo, err := postgres.NewRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
