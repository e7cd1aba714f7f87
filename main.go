package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()

	args := os.Args[1:]
	cmd := "build"
	if len(args) > 0 {
		switch args[0] {
		case "build", "serve", "watch", "migrate":
			cmd = args[0]
			args = args[1:]
		}
	}

	switch cmd {
	case "migrate":
		initDB()
		fmt.Println("migration and seeding completed")
	case "serve":
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "dev-insecure-secret-change" // development fallback
		}
		jwtSecret = []byte(secret)
		initDB()
		ensureDeckBase()
		r := gin.Default()
		setupRoutes(r)
		addr := os.Getenv("LISTEN_ADDR")
		if addr == "" {
			addr = ":8081"
		}
		r.Run(addr)
	case "watch":
		os.Exit(runWatch(args))
	default:
		os.Exit(runBuild(args))
	}
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
