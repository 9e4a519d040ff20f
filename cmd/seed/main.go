package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/montonitech/client-scheduling/internal/analytics"
	"github.com/montonitech/client-scheduling/internal/lock"
	"github.com/montonitech/client-scheduling/internal/scheduling"
	"github.com/montonitech/client-scheduling/internal/store"
)

// Seeds the Redis store with fake clients and appointments for local
// development. Bookings go through the real service so the conflict
// guard shapes the data exactly like production traffic would.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	addr := getEnv("REDIS_ADDR", "127.0.0.1:6379")
	rdb, err := store.NewRedisClient(addr, os.Getenv("REDIS_USERNAME"), os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer rdb.Close()

	tree := store.NewRedisTree(rdb)
	svc := scheduling.NewService(tree, lock.NewRedisLocker(rdb, 5*time.Second), analytics.NopSink{}, scheduling.Config{
		InPersonCity:   getEnv("IN_PERSON_CITY", "rio das ostras"),
		RegisterPolicy: "upsert",
	})

	gofakeit.Seed(time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seedClients(ctx, svc, 50); err != nil {
		log.Fatalf("seed clients: %v", err)
	}

	log.Println("seed complete")
}

func seedClients(ctx context.Context, svc *scheduling.Service, count int) error {
	log.Printf("seeding %d clients", count)

	neighborhoods := []string{"Centro", "Jardim Mariléa", "Costazul", "Extensão do Bosque", "Recreio"}
	cities := []string{"Rio das Ostras", "Rio De Janeiro", "Macaé", "Cabo Frio"}

	booked := 0
	for i := 0; i < count; i++ {
		phone := gofakeit.Numerify("229########")
		client, err := svc.Register(ctx, scheduling.Client{
			Name:     gofakeit.Name(),
			Email:    gofakeit.Email(),
			Whatsapp: phone,
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", phone, err)
		}

		for n := gofakeit.Number(0, 3); n > 0; n-- {
			date := time.Now().AddDate(0, 0, gofakeit.Number(1, 30)).Format("2006-01-02")
			slot := scheduling.Catalog[gofakeit.Number(0, len(scheduling.Catalog)-1)]
			city := cities[gofakeit.Number(0, len(cities)-1)]

			_, err := svc.Schedule(ctx, client.Whatsapp, scheduling.ScheduleRequest{
				Date:        date,
				Time:        slot,
				Observation: gofakeit.Sentence(6),
				Address: scheduling.Address{
					CEP:          gofakeit.Numerify("########"),
					Street:       gofakeit.Street(),
					Number:       fmt.Sprintf("%d", gofakeit.Number(1, 2000)),
					Neighborhood: neighborhoods[gofakeit.Number(0, len(neighborhoods)-1)],
					City:         city,
				},
			})
			if err != nil {
				if errors.Is(err, scheduling.ErrSlotTaken) {
					continue
				}
				return fmt.Errorf("schedule for %s: %w", client.Whatsapp, err)
			}
			booked++
		}
	}

	log.Printf("clients seeded, %d appointments booked", booked)
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
