package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/careops/hospital-admission/internal/db"
	"github.com/careops/hospital-admission/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	repo := store.NewPgRepository(pool)

	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	log.Println("schema ready")

	if err := repo.EnsureHospitalCatalog(context.Background()); err != nil {
		log.Fatalf("seed hospital catalog: %v", err)
	}
	log.Println("hospital catalog seeded")

	ambID, err := repo.EnsureDefaultAmbulance(context.Background())
	if err != nil {
		log.Fatalf("seed default ambulance: %v", err)
	}
	log.Printf("ambulance pool ready, unit id=%d", ambID)

	gofakeit.Seed(time.Now().UnixNano())

	if n := envCount("SEED_FAKE_USERS"); n > 0 {
		if err := seedUsers(context.Background(), repo, n); err != nil {
			log.Fatalf("seed users: %v", err)
		}
	}

	if n := envCount("SEED_FAKE_PATIENTS"); n > 0 {
		if err := seedPatients(context.Background(), pool, n); err != nil {
			log.Fatalf("seed patients: %v", err)
		}
	}

	log.Println("seed complete")
}

func envCount(key string) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func seedUsers(ctx context.Context, repo *store.PgRepository, count int) error {
	log.Printf("seeding %d operator accounts", count)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return err
	}

	created := 0
	for i := 0; i < count; i++ {
		username := gofakeit.Username()
		email := gofakeit.Email()

		ok, err := repo.CreateUser(ctx, username, email, string(hash))
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}

	log.Printf("operator accounts seeded: %d/%d (duplicates skipped)", created, count)
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	diseases := []string{
		"Fever", "Fracture", "Cardiac arrhythmia", "Appendicitis",
		"Pneumonia", "Migraine", "Diabetes follow-up", "Hypertension",
	}

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (name, age, address, mobile, guardian_name, guardian_relation,
					guardian_mobile, disease, emergency, ambulance_required)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`,
				gofakeit.Name(),
				gofakeit.Number(1, 90),
				gofakeit.Street(),
				gofakeit.Phone(),
				gofakeit.Name(),
				"Relative",
				gofakeit.Phone(),
				diseases[gofakeit.Number(0, len(diseases)-1)],
				gofakeit.Bool(),
				false,
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}
