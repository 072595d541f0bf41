package main

import (
	"bytes"
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
)

// simulate drives full admission runs against a live api-server: signup,
// login, intake through billing and review, then reset. Emergencies are mixed
// in to exercise dispatch contention on the single ambulance unit.
type SimConfig struct {
	APIBaseURL     string
	Runs           int
	Workers        int
	EmergencyRatio float64
}

type RunMetrics struct {
	Total        int64
	Completed    int64
	Dispatched   int64
	Unavailable  int64
	Failed       int64
	mu           sync.Mutex
	RunLatencies []time.Duration
}

func (m *RunMetrics) Record(latency time.Duration, completed, dispatched, unavailable bool) {
	atomic.AddInt64(&m.Total, 1)
	if completed {
		atomic.AddInt64(&m.Completed, 1)
	} else {
		atomic.AddInt64(&m.Failed, 1)
	}
	if dispatched {
		atomic.AddInt64(&m.Dispatched, 1)
	}
	if unavailable {
		atomic.AddInt64(&m.Unavailable, 1)
	}

	m.mu.Lock()
	m.RunLatencies = append(m.RunLatencies, latency)
	m.mu.Unlock()
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	log.Printf("config: base_url=%s runs=%d workers=%d emergency=%.2f",
		cfg.APIBaseURL, cfg.Runs, cfg.Workers, cfg.EmergencyRatio)

	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}
	metrics := &RunMetrics{}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for run := range jobs {
				runAdmission(client, cfg, metrics, worker, run)
			}
		}(w)
	}

	start := time.Now()
	for i := 0; i < cfg.Runs; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	printReport(metrics, time.Since(start))
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL:     getEnv("SIM_API_URL", "http://127.0.0.1:8080"),
		Runs:           getEnvInt("SIM_RUNS", 50),
		Workers:        getEnvInt("SIM_WORKERS", 5),
		EmergencyRatio: getEnvFloat("SIM_EMERGENCY_RATIO", 0.3),
	}
}

func runAdmission(client *http.Client, cfg SimConfig, metrics *RunMetrics, worker, run int) {
	start := time.Now()
	var dispatched, unavailable bool

	fail := func(step string, err error) {
		log.Printf("worker=%d run=%d step=%s error=%v", worker, run, step, err)
		metrics.Record(time.Since(start), false, dispatched, unavailable)
	}

	username := fmt.Sprintf("sim_%d_%d_%s", worker, run, gofakeit.LetterN(6))
	password := gofakeit.Password(true, true, true, false, false, 12)

	if _, err := post(client, cfg.APIBaseURL+"/auth/signup", "", map[string]any{
		"username": username,
		"email":    fmt.Sprintf("%s@example.test", username),
		"password": password,
	}); err != nil {
		fail("signup", err)
		return
	}

	loginBody, err := post(client, cfg.APIBaseURL+"/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		fail("login", err)
		return
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(loginBody, &login); err != nil {
		fail("login decode", err)
		return
	}

	emergency := rand.Float64() < cfg.EmergencyRatio

	intakeBody, err := post(client, cfg.APIBaseURL+"/admission/intake", login.Token, map[string]any{
		"name":               gofakeit.Name(),
		"age":                strconv.Itoa(gofakeit.Number(1, 90)),
		"address":            gofakeit.Street(),
		"mobile":             gofakeit.Phone(),
		"guardian_name":      gofakeit.Name(),
		"guardian_relation":  "Relative",
		"guardian_mobile":    gofakeit.Phone(),
		"disease":            gofakeit.LoremIpsumSentence(3),
		"emergency":          emergency,
		"ambulance_required": emergency,
	})
	if err != nil {
		fail("intake", err)
		return
	}
	var intake struct {
		DecisionRequired bool `json:"decision_required"`
	}
	if err := json.Unmarshal(intakeBody, &intake); err != nil {
		fail("intake decode", err)
		return
	}

	if intake.DecisionRequired {
		emBody, err := post(client, cfg.APIBaseURL+"/admission/emergency", login.Token, map[string]any{
			"wants_dispatch": true,
		})
		if err != nil {
			fail("emergency", err)
			return
		}
		var outcome struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(emBody, &outcome); err != nil {
			fail("emergency decode", err)
			return
		}
		dispatched = outcome.Status == "dispatched"
		unavailable = outcome.Status == "unavailable"
	}

	if _, err := post(client, cfg.APIBaseURL+"/admission/hospital", login.Token, map[string]any{}); err != nil {
		fail("hospital", err)
		return
	}
	if _, err := post(client, cfg.APIBaseURL+"/admission/doctor/confirm", login.Token, nil); err != nil {
		fail("doctor", err)
		return
	}

	rooms := []string{"ac_single", "non_ac_single", "2_sharing", "4_sharing"}
	foods := []string{"standard", "protein", "vegetarian", "special"}
	if _, err := post(client, cfg.APIBaseURL+"/admission/ward-food", login.Token, map[string]any{
		"room": rooms[rand.Intn(len(rooms))],
		"food": foods[rand.Intn(len(foods))],
	}); err != nil {
		fail("ward-food", err)
		return
	}

	if _, err := post(client, cfg.APIBaseURL+"/admission/billing", login.Token, map[string]any{
		"doctor_fee":     "1500",
		"ambulance_used": dispatched,
		"misc":           "0",
	}); err != nil {
		fail("billing", err)
		return
	}
	if _, err := post(client, cfg.APIBaseURL+"/admission/billing/confirm", login.Token, nil); err != nil {
		fail("billing confirm", err)
		return
	}

	if _, err := post(client, cfg.APIBaseURL+"/admission/review", login.Token, map[string]any{
		"rating": gofakeit.Number(1, 5),
		"text":   gofakeit.LoremIpsumSentence(6),
	}); err != nil {
		fail("review", err)
		return
	}

	if _, err := post(client, cfg.APIBaseURL+"/admission/reset", login.Token, nil); err != nil {
		fail("reset", err)
		return
	}

	metrics.Record(time.Since(start), true, dispatched, unavailable)
}

func post(client *http.Client, url, token string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body == nil {
		body = map[string]any{}
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, data)
	}

	return data, nil
}

func printReport(m *RunMetrics, elapsed time.Duration) {
	m.mu.Lock()
	latencies := make([]time.Duration, len(m.RunLatencies))
	copy(latencies, m.RunLatencies)
	m.mu.Unlock()

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var p50, p95 time.Duration
	if len(latencies) > 0 {
		p50 = latencies[len(latencies)*50/100]
		idx95 := len(latencies) * 95 / 100
		if idx95 >= len(latencies) {
			idx95 = len(latencies) - 1
		}
		p95 = latencies[idx95]
	}

	log.Printf("simulation done in %s", elapsed)
	log.Printf("runs total=%d completed=%d failed=%d", m.Total, m.Completed, m.Failed)
	log.Printf("dispatch dispatched=%d unavailable=%d", m.Dispatched, m.Unavailable)
	log.Printf("run latency p50=%s p95=%s", p50, p95)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
