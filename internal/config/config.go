package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken  string
	SheetID   string
	SheetCred string // service-account credentials JSON blob
	// AdminIDs may self-register as admins on first contact; the first
	// one to do so bootstraps the system.
	AdminIDs []string
	CacheTTL time.Duration
}

func MustLoad() Config {
	_ = godotenv.Load()

	bt := os.Getenv("BOT_TOKEN")
	if bt == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	sheetID := os.Getenv("SHEET_ID")
	if sheetID == "" {
		log.Fatal("SHEET_ID is required")
	}
	cred := os.Getenv("SHEET_CRED")
	if cred == "" {
		log.Fatal("SHEET_CRED is required")
	}

	var admins []string
	for _, key := range []string{"ADMIN_ID_1", "ADMIN_ID_2"} {
		if v := os.Getenv(key); v != "" {
			admins = append(admins, v)
		}
	}

	ttl := 10 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("CACHE_TTL: %v", err)
		}
		ttl = d
	}

	return Config{
		BotToken:  bt,
		SheetID:   sheetID,
		SheetCred: cred,
		AdminIDs:  admins,
		CacheTTL:  ttl,
	}
}

func (c Config) IsBootstrapAdmin(id string) bool {
	for _, a := range c.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}
