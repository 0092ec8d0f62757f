// Command seed creates the schema and loads a small fixture data set for
// local development: two users, a handful of habits, a couple of checks
// and a friendship.  Re-running reuses existing users and skips checks
// that are already recorded; habits are created fresh each run, so reset
// the database if you want a clean slate.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/habitverse/habitverse-backend/internal/config"
	"github.com/habitverse/habitverse-backend/internal/database"
	"github.com/habitverse/habitverse-backend/internal/progression"
	"github.com/habitverse/habitverse-backend/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName,
		cfg.DBMaxConns, time.Duration(cfg.DBConnTTLMin)*time.Minute)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	users := repository.NewUserRepo(db)
	habits := repository.NewHabitRepo(db)
	checks := repository.NewCheckRepo(db)
	friends := repository.NewFriendRepo(db)

	johnID := mustUser(ctx, users, "John Doe", "john@example.com", "password", cfg.BcryptCost)
	janeID := mustUser(ctx, users, "Jane Roe", "jane@example.com", "password", cfg.BcryptCost)

	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }
	yes := true

	seedHabits := []struct {
		owner string
		in    repository.HabitInput
	}{
		{johnID, repository.HabitInput{
			Title:       str("Morning Exercise"),
			Description: str("Do 30 minutes of exercise every morning"),
			Category:    str("Fitness"),
			Icon:        str("💪"),
			Color:       num(16744448), // orange
			IsPublic:    &yes,
		}},
		{johnID, repository.HabitInput{
			Title:       str("Read Books"),
			Description: str("Read at least 20 pages of a book daily"),
			Category:    str("Learning"),
			Icon:        str("📚"),
			Color:       num(2196243), // blue
		}},
		{janeID, repository.HabitInput{
			Title:       str("Drink Water"),
			Description: str("Drink 8 glasses of water daily"),
			Category:    str("Health"),
			Icon:        str("💧"),
			Color:       num(4285238), // light blue
			IsPublic:    &yes,
		}},
	}

	now := time.Now()
	today := progression.Day(now)
	yesterday := progression.Day(now.AddDate(0, 0, -1))

	for i, sh := range seedHabits {
		habit, err := habits.Create(ctx, sh.owner, sh.in)
		if err != nil {
			log.Fatalf("seed habit %d: %v", i, err)
		}
		// Give every habit a little history.
		for _, day := range []string{yesterday, today} {
			if _, err := checks.RecordCompletion(ctx, habit.ID, sh.owner, day); err != nil {
				if errors.Is(err, repository.ErrCheckExists) {
					continue
				}
				log.Fatalf("seed check for %s: %v", *sh.in.Title, err)
			}
		}
	}

	if err := friends.Add(ctx, johnID, janeID); err != nil && !errors.Is(err, repository.ErrFriendshipExists) {
		log.Fatalf("seed friendship: %v", err)
	}

	log.Printf("seed complete: john@example.com / jane@example.com (password: \"password\")")
}

func mustUser(ctx context.Context, users *repository.UserRepo, name, email, password string, cost int) string {
	id, err := users.Create(ctx, name, email, password, cost)
	if err == nil {
		return id
	}
	if errors.Is(err, repository.ErrEmailExists) {
		u, gerr := users.GetByEmail(ctx, email)
		if gerr != nil {
			log.Fatalf("seed user %s: %v", email, gerr)
		}
		log.Printf("user %s already present", email)
		return u.ID
	}
	log.Fatalf("seed user %s: %v", email, err)
	return ""
}
