package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"ihale.org/internal/auction"
	"ihale.org/internal/auth"
	"ihale.org/internal/ids"
	"ihale.org/internal/obs"
	"ihale.org/internal/store/pg"
	"ihale.org/internal/user"
)

// seed provisions the initial admin account and a couple of sample listings.
// It is safe to run repeatedly: an existing admin email short-circuits.
func main() {
	log.SetFlags(0)
	obs.Init()
	var (
		dsn           = flag.String("dsn", os.Getenv("IHALE_PG_DSN"), "PostgreSQL DSN")
		adminEmail    = flag.String("admin-email", "admin@ihale.com", "Admin account email")
		adminPassword = flag.String("admin-password", os.Getenv("IHALE_ADMIN_PASSWORD"), "Admin account password")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or IHALE_PG_DSN")
	}
	if *adminPassword == "" {
		log.Fatal("missing admin password: provide via -admin-password or IHALE_ADMIN_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	users := store.Users()
	if _, err := users.FindByEmail(ctx, *adminEmail); err == nil {
		log.Println("admin account already present, nothing to do")
		return
	} else if !errors.Is(err, user.ErrNotFound) {
		log.Fatalf("lookup admin: %v", err)
	}

	hash, err := auth.HashPassword(*adminPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	adminUser := &user.User{
		ID:           ids.New(),
		Name:         "Admin",
		Email:        *adminEmail,
		PasswordHash: hash,
		UserType:     user.TypeAdmin,
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := users.Create(ctx, adminUser); err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("created admin account %s", adminUser.Email)

	auctions := store.Auctions(users)
	now := time.Now().UTC()
	samples := []auction.Vehicle{
		{
			Brand:         "BMW",
			Model:         "320i",
			Year:          2020,
			Mileage:       50000,
			FuelType:      "Benzin",
			Transmission:  "Otomatik",
			StartingPrice: 800000,
			EndDate:       now.Add(7 * 24 * time.Hour),
			Image:         "https://example.com/bmw.jpg",
		},
		{
			Brand:         "Mercedes",
			Model:         "C200",
			Year:          2021,
			Mileage:       30000,
			FuelType:      "Dizel",
			Transmission:  "Otomatik",
			StartingPrice: 1000000,
			EndDate:       now.Add(5 * 24 * time.Hour),
			Image:         "https://example.com/mercedes.jpg",
		},
	}
	for _, v := range samples {
		created, err := auctions.Create(ctx, v)
		if err != nil {
			log.Fatalf("create sample listing %s %s: %v", v.Brand, v.Model, err)
		}
		log.Printf("created sample listing %s %s (%s)", created.Brand, created.Model, created.ID)
	}
}
