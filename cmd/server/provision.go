package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"poker-tracker/internal/config"
	"poker-tracker/internal/pkg/db"
	"poker-tracker/internal/repository"
	"poker-tracker/internal/service"
)

func runProvisionHost(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("provision-host", flag.ContinueOnError)
	username := fs.StringP("username", "u", "", "host username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return fmt.Errorf("--username is required")
	}

	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	if err := db.MigrateUp(cfg.Database.DSN()); err != nil {
		return err
	}

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	auth := service.NewAuthService(repository.NewUserRepository(dbPool.Pool), nil, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err := auth.Provision(ctx, *username, password); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Host %q provisioned\n", strings.TrimSpace(*username))
	return nil
}

// readPassword prompts twice on a terminal, or reads the first line of piped input.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(prompt, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
