package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasmoran/accord/internal/permissions"
	"github.com/lukasmoran/accord/internal/snowflake"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: accord-cli migrate")
			fmt.Println()
			fmt.Println("Run database migrations from the migrations/ directory.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runMigrate())
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: accord-cli seed")
			fmt.Println()
			fmt.Println("Seed the database with demo data: 2 users, a server, channels and roles.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runSeed())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: accord-cli health")
			fmt.Println()
			fmt.Println("Check if the Accord server is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:8080)")
			return
		}
		os.Exit(runHealth())
	case "version":
		fmt.Printf("accord-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: accord-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed demo data (users, server, channels, roles)")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'accord-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- migrate ---

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("connecting to database...")
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	fmt.Println("running migrations...")
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", err)
		return 1
	}

	v, dirty, _ := m.Version()
	if err == migrate.ErrNoChange {
		fmt.Printf("no new migrations (current version: %d)\n", v)
	} else {
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", v, dirty)
	}
	return 0
}

// --- seed ---

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	fmt.Println("connecting to database...")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: database ping failed: %v\n", err)
		return 1
	}

	sf, err := snowflake.NewGenerator(0, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	aliceID := sf.Generate()
	bobID := sf.Generate()
	serverID := sf.Generate()
	generalChanID := sf.Generate()
	randomChanID := sf.Generate()
	modRoleID := sf.Generate()

	tx, err := pool.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: starting transaction: %v\n", err)
		return 1
	}
	defer tx.Rollback(ctx)

	fmt.Println("creating users...")
	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, display_name) VALUES ($1,$2,$3), ($4,$5,$6)
		 ON CONFLICT (id) DO NOTHING`,
		aliceID.Int64(), "alice", "Alice",
		bobID.Int64(), "bob", "Bob",
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating users: %v\n", err)
		return 1
	}

	fmt.Println("creating server...")
	defaultPerms := permissions.DefaultView | permissions.SendMessage |
		permissions.SendEmbeds | permissions.UploadFiles | permissions.React | permissions.InviteOthers
	_, err = tx.Exec(ctx,
		`INSERT INTO servers (id, owner_id, name, channel_ids, default_permissions) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO NOTHING`,
		serverID.Int64(), aliceID.Int64(), "Demo Server",
		[]int64{generalChanID.Int64(), randomChanID.Int64()}, int64(defaultPerms),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating server: %v\n", err)
		return 1
	}

	fmt.Println("creating channels...")
	_, err = tx.Exec(ctx,
		`INSERT INTO channels (id, type, name, server_id) VALUES ($1,0,$2,$3), ($4,0,$5,$6)
		 ON CONFLICT (id) DO NOTHING`,
		generalChanID.Int64(), "general", serverID.Int64(),
		randomChanID.Int64(), "random", serverID.Int64(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating channels: %v\n", err)
		return 1
	}

	fmt.Println("creating roles...")
	modPerms := permissions.ManageMessages | permissions.ManagePermissions | permissions.KickMembers
	_, err = tx.Exec(ctx,
		`INSERT INTO roles (id, server_id, name, allow_perms, rank) VALUES ($1,$2,$3,$4,5)
		 ON CONFLICT (id) DO NOTHING`,
		modRoleID.Int64(), serverID.Int64(), "mod", int64(modPerms),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating roles: %v\n", err)
		return 1
	}

	fmt.Println("creating members...")
	_, err = tx.Exec(ctx,
		`INSERT INTO members (server_id, user_id, roles) VALUES ($1,$2,$3), ($4,$5,$6)
		 ON CONFLICT (server_id, user_id) DO NOTHING`,
		serverID.Int64(), aliceID.Int64(), []int64{},
		serverID.Int64(), bobID.Int64(), []int64{modRoleID.Int64()},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating members: %v\n", err)
		return 1
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: committing: %v\n", err)
		return 1
	}

	fmt.Println("seed complete:")
	fmt.Printf("  users:   alice (%d, owner), bob (%d, mod)\n", aliceID.Int64(), bobID.Int64())
	fmt.Printf("  server:  %d\n", serverID.Int64())
	fmt.Printf("  channels: general (%d), random (%d)\n", generalChanID.Int64(), randomChanID.Int64())
	return 0
}

// --- health ---

func runHealth() int {
	base := envOr("SERVER_URL", "http://localhost:8080")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(base + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: server unreachable: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "error: health check returned %d: %s\n", resp.StatusCode, body)
		return 1
	}
	fmt.Printf("server healthy: %s\n", body)
	return 0
}
