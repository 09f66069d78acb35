package main

import (
	"fmt"
	"strconv"

	"poker-tracker/internal/config"
	"poker-tracker/internal/pkg/db"
)

func runMigrate(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: poker-tracker migrate [up|down N|status]")
	}

	dsn := cfg.Database.DSN()

	switch args[0] {
	case "up":
		return db.MigrateUp(dsn)
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[1])
			}
			steps = n
		}
		return db.MigrateDown(dsn, steps)
	case "status":
		status, err := db.Status(dsn)
		if err != nil {
			return err
		}
		if !status.Applied {
			fmt.Println("No migrations applied")
			return nil
		}
		fmt.Printf("Version: %d\nDirty: %t\n", status.Version, status.Dirty)
		return nil
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
