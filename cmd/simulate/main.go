package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/montonitech/client-scheduling/internal/scheduling"
)

// Fires concurrent booking requests at a running api-server and
// reports how the conflict guard held up: every request targets one of
// a small set of (client, date, time) keys, so most attempts after the
// first must come back 409.

type simConfig struct {
	BaseURL  string
	Workers  int
	Duration time.Duration
	Clients  int
	Days     int
}

type metrics struct {
	total    int64
	success  int64
	conflict int64
	failed   int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (m *metrics) record(latency time.Duration, status int) {
	atomic.AddInt64(&m.total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&m.success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&m.conflict, 1)
	default:
		atomic.AddInt64(&m.failed, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *metrics) percentile(p int) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := simConfig{
		BaseURL:  getEnv("API_BASE_URL", "http://127.0.0.1:8080"),
		Workers:  getEnvInt("SIM_WORKERS", 8),
		Duration: time.Duration(getEnvInt("SIM_DURATION_SECONDS", 15)) * time.Second,
		Clients:  getEnvInt("SIM_CLIENTS", 5),
		Days:     getEnvInt("SIM_DAYS", 3),
	}

	log.Printf("simulate: base_url=%s workers=%d duration=%s", cfg.BaseURL, cfg.Workers, cfg.Duration)

	gofakeit.Seed(time.Now().UnixNano())
	httpc := &http.Client{Timeout: 10 * time.Second}

	phones, err := registerClients(httpc, cfg)
	if err != nil {
		log.Fatalf("register clients: %v", err)
	}
	log.Printf("registered %d clients", len(phones))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var m metrics
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, httpc, cfg, phones, &m)
		}()
	}
	wg.Wait()

	log.Printf("done: total=%d success=%d conflict=%d failed=%d",
		atomic.LoadInt64(&m.total),
		atomic.LoadInt64(&m.success),
		atomic.LoadInt64(&m.conflict),
		atomic.LoadInt64(&m.failed),
	)
	log.Printf("latency: p50=%s p95=%s", m.percentile(50), m.percentile(95))
}

func registerClients(httpc *http.Client, cfg simConfig) ([]string, error) {
	phones := make([]string, 0, cfg.Clients)
	for i := 0; i < cfg.Clients; i++ {
		phone := gofakeit.Numerify("229########")
		body, _ := json.Marshal(map[string]string{
			"name":     gofakeit.Name(),
			"email":    gofakeit.Email(),
			"whatsapp": phone,
		})

		resp, err := httpc.Post(cfg.BaseURL+"/clients", "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("register returned %d", resp.StatusCode)
		}
		phones = append(phones, phone)
	}
	return phones, nil
}

func worker(ctx context.Context, httpc *http.Client, cfg simConfig, phones []string, m *metrics) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		phone := phones[rand.Intn(len(phones))]
		date := time.Now().AddDate(0, 0, 1+rand.Intn(cfg.Days)).Format("2006-01-02")
		slot := scheduling.Catalog[rand.Intn(len(scheduling.Catalog))]

		body, _ := json.Marshal(map[string]any{
			"date":        date,
			"time":        slot,
			"observation": "simulated booking",
			"address": map[string]string{
				"cep":          "28890000",
				"street":       "Rua das Flores",
				"number":       "100",
				"neighborhood": "Centro",
				"city":         "Rio das Ostras",
			},
		})

		url := fmt.Sprintf("%s/clients/%s/appointments", cfg.BaseURL, phone)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")

		start := time.Now()
		resp, err := httpc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.record(time.Since(start), 0)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		m.record(time.Since(start), resp.StatusCode)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
