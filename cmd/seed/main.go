package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"todosync/config"
	"todosync/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@example.com"
	password := "password123"
	username := "demoUser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id
	`, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	if _, err := db.Exec(`
		INSERT INTO profiles (user_id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
	`, id, email, username); err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Printf("seeded profile: username=%s\n", username)

	samples := []struct {
		text      string
		completed bool
	}{
		{"Buy groceries", false},
		{"Read the onboarding doc", true},
		{"Plan the weekend trip", false},
	}
	for _, s := range samples {
		if _, err := db.Exec(`
			INSERT INTO tasks (user_id, text, completed)
			VALUES ($1, $2, $3)
		`, id, s.text, s.completed); err != nil {
			log.Fatalf("failed to seed task %q: %v", s.text, err)
		}
	}
	fmt.Printf("seeded %d sample tasks\n", len(samples))
}
