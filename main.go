package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-telegram/bot"
	"meal-telegram/config"
	"meal-telegram/db"
	"meal-telegram/dialog"
	"meal-telegram/httpapi"
	"meal-telegram/services"
	"meal-telegram/session"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

// store is everything the engine needs from a persistence backend.
type store interface {
	services.Catalog
	services.SelectionStore
	services.Ledger
	services.CatalogImporter
	CatalogEmpty(ctx context.Context) (bool, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrate(cfg, os.Args[2:])
			return
		case "import":
			runImport(cfg, os.Args[2:])
			return
		}
	}

	if cfg.Telegram.Token == "" {
		fmt.Fprintln(os.Stderr, "TOKEN not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "store:", err)
		os.Exit(1)
	}
	defer db.Close()

	sessions, err := openSessions(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sessions:", err)
		os.Exit(1)
	}

	vocab, err := services.LoadVocabulary(cfg.Ordering.VocabFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vocab:", err)
		os.Exit(1)
	}

	window := services.MealWindow{
		LunchCutoff:  cfg.Ordering.LunchCutoff,
		DinnerCutoff: cfg.Ordering.DinnerCutoff,
		Location:     cfg.Ordering.Location,
	}
	clock := services.SystemClock{}
	registry := services.NewRegistry(st, st)
	reporter := services.NewReporter(st, registry, st)
	engine := dialog.New(dialog.Deps{
		Catalog:     st,
		Registry:    registry,
		Ledger:      st,
		Reporter:    reporter,
		Sessions:    sessions,
		Vocabulary:  vocab,
		Window:      window,
		Clock:       clock,
		MaxQuantity: cfg.Ordering.MaxQuantity,
		PageSize:    cfg.Ordering.PageSize,
		IsAdmin:     cfg.Ordering.IsAdmin,
	})

	if cfg.HTTP.Addr != "" {
		server := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: httpapi.NewRouter(httpapi.NewHandler(reporter, registry, window, clock)),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		fmt.Println("Report API listening on", cfg.HTTP.Addr)
	}

	b, err := bot.New(cfg, engine)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bot:", err)
		os.Exit(1)
	}
	fmt.Println("Bot started.")
	b.Start(ctx)
}

// openStore connects the configured backend. Postgres optionally migrates
// and imports the menus into an empty catalog; memory always loads them.
func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	if cfg.Storage.Store == config.BackendMemory {
		st := services.NewMemStore()
		if err := importMenus(ctx, st, cfg.Storage.MenuFile, cfg.Storage.DrinkFile, false); err != nil {
			return nil, err
		}
		return st, nil
	}

	if err := db.Init(cfg.DB); err != nil {
		return nil, err
	}
	if cfg.Storage.AutoMigrate {
		if err := applyMigrations(cfg.DB.DSN(), false); err != nil {
			return nil, err
		}
	}
	st := services.NewPGStore(db.Pool)
	if cfg.Storage.AutoImport {
		empty, err := st.CatalogEmpty(ctx)
		if err != nil {
			return nil, err
		}
		if empty {
			if err := importMenus(ctx, st, cfg.Storage.MenuFile, cfg.Storage.DrinkFile, false); err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}

func openSessions(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Storage.Session != config.BackendRedis {
		return session.NewMemoryStore(), nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
	}
	return session.NewRedisStore(rdb, session.DefaultTTL), nil
}

func importMenus(ctx context.Context, st services.CatalogImporter, menuFile, drinkFile string, reset bool) error {
	vendors, skipped, err := services.LoadMenuFiles(menuFile, drinkFile)
	if err != nil {
		return err
	}
	for _, line := range skipped {
		log.Printf("import: skipped %q", line)
	}
	if err := st.ImportCatalog(ctx, vendors, reset); err != nil {
		return err
	}
	items := 0
	for _, v := range vendors {
		for _, c := range v.Categories {
			items += len(c.Items)
		}
	}
	fmt.Printf("Imported %d vendors, %d items.\n", len(vendors), items)
	return nil
}

func runMigrate(cfg *config.Config, args []string) {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}
	var err error
	switch direction {
	case "up":
		err = applyMigrations(cfg.DB.DSN(), true)
	case "down":
		err = rollbackMigrations(cfg.DB.DSN())
	default:
		err = fmt.Errorf("unknown direction %q, want up or down", direction)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func runImport(cfg *config.Config, args []string) {
	var menuFile, drinkFile string
	var reset bool
	flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
	flagSet.StringVar(&menuFile, "menu", cfg.Storage.MenuFile, "food menu markdown file")
	flagSet.StringVar(&drinkFile, "drinks", cfg.Storage.DrinkFile, "drink menu markdown file")
	flagSet.BoolVar(&reset, "reset", false, "replace the existing catalog (also clears selections and orders)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, "import:", err)
		os.Exit(1)
	}

	if err := db.Init(cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := importMenus(ctx, services.NewPGStore(db.Pool), menuFile, drinkFile, reset); err != nil {
		fmt.Fprintln(os.Stderr, "import:", err)
		if errors.Is(err, services.ErrCatalogNotEmpty) {
			fmt.Fprintln(os.Stderr, "hint: rerun with --reset")
		}
		db.Close()
		os.Exit(1)
	}
}
