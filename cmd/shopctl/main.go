package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"gorm.io/gorm"

	"github.com/Brisinger/Sqlalchemy/internal/config"
	"github.com/Brisinger/Sqlalchemy/internal/logging"
	"github.com/Brisinger/Sqlalchemy/internal/migrate"
	"github.com/Brisinger/Sqlalchemy/internal/repository"
	"github.com/Brisinger/Sqlalchemy/pkg/db"
)

const usage = `usage: shopctl [-env FILE] <command>

commands:
  migrate up        apply all pending schema revisions
  migrate down [n]  roll back the last n revisions (default 1)
  seed              populate demo data
  report            print the demo reports
`

func main() {
	envFile := flag.String("env", "", "path to env file (default .env)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load(*envFile)
	logger := logging.New(cfg.LogLevel)

	ctx := logging.IntoContext(context.Background(), logger)

	gdb, err := db.Open(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	code := 0
	if err := run(ctx, gdb, flag.Args()); err != nil {
		logger.Error("command failed", "err", err)
		code = 1
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close", "err", err)
		}
	}
	os.Exit(code)
}

func run(ctx context.Context, gdb *gorm.DB, args []string) error {
	logger := logging.FromContext(ctx)
	repo := repository.New(gdb)

	switch args[0] {
	case "migrate":
		m, err := migrate.New(gdb, logger)
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return fmt.Errorf("migrate needs a direction: up or down")
		}
		switch args[1] {
		case "up":
			return m.Up(ctx)
		case "down":
			n := 1
			if len(args) > 2 {
				v, err := strconv.Atoi(args[2])
				if err != nil || v < 1 {
					return fmt.Errorf("migrate down: bad step count %q", args[2])
				}
				n = v
			}
			return m.Down(ctx, n)
		default:
			return fmt.Errorf("unknown migrate direction %q", args[1])
		}

	case "seed":
		return repo.SeedFakeData(ctx)

	case "report":
		return report(ctx, repo)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func report(ctx context.Context, repo *repository.Repo) error {
	invited, err := repo.SelectAllInvitedUsers(ctx)
	if err != nil {
		return err
	}
	for _, row := range invited {
		fmt.Printf("Parent: %s, Referral: %s\n", row.ParentName, row.ReferralName)
	}

	users, err := repo.GetAllUsers(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		fmt.Printf("User: %s (%d)\n", user.FullName, user.TelegramID)
		lines, err := repo.GetAllUserOrdersRelationships(ctx, user.TelegramID)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Printf("    Order: %d  Product: %s  Quantity: %d  Price: %s\n",
				line.OrderID, line.Title, line.Quantity, line.Price)
		}
	}

	counts, err := repo.GetTotalNumberOfOrdersByUserWithLabels(ctx)
	if err != nil {
		return err
	}
	for _, row := range counts {
		fmt.Printf("Orders: %d  Name: %s\n", row.Quantity, row.Name)
	}

	totals, err := repo.GetCountOfProductsByUser(ctx)
	if err != nil {
		return err
	}
	for _, row := range totals {
		fmt.Printf("Products: %d  Name: %s\n", row.Quantity, row.Name)
	}

	return nil
}
