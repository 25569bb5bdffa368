package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/AlexandreFrancony/Bartending-Back/internal/config"
	"github.com/AlexandreFrancony/Bartending-Back/internal/logging"
	"github.com/AlexandreFrancony/Bartending-Back/internal/repository/postgres"
	"github.com/AlexandreFrancony/Bartending-Back/internal/service"
)

func main() {
	username := flag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username")
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, closeLogs, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: "text"}, "seedadmin")
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLogs()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password, err = promptPassword(os.Stdin, os.Stderr)
		if err != nil {
			log.Fatalf("read password: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.New(cfg.DatabaseURL, postgres.Options{Driver: cfg.DBDriver})
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	admin := service.NewUserAdminService(postgres.NewUserRepo(db, cfg.DBQueryTimeout), logger)
	user, created, err := admin.EnsureAdmin(ctx, service.RegisterInput{
		Username: *username,
		Email:    *email,
		Password: password,
	})
	if err != nil {
		log.Fatalf("ensure admin: %v", err)
	}
	if created {
		logger.Info("admin account created", "user_id", user.ID.String(), "username", user.Username)
	} else {
		logger.Info("existing account is admin", "user_id", user.ID.String(), "username", user.Username)
	}
}

// promptPassword asks twice on a terminal and once when stdin is piped.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Admin password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
