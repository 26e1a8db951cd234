// Package testdata provides utilities for generating sample metrics data
// to test Grafana dashboards without using real production data.
//
// Unlike a plain metric faker, this program drives the real library: it
// creates and closes contexts, resolves loggers, registers levels, pins
// nodes, and publishes through a flaky handler, so every logctx_* series
// moves the way it would under production traffic.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/logctx"
)

var loggerNames = []string{
	"svc", "svc.api", "svc.api.http", "svc.db", "svc.db.pool",
	"worker", "worker.queue", "cache", "cache.redis",
}

var sampleLevels = []*logctx.Level{
	logctx.FineLevel, logctx.DebugLevel, logctx.InfoLevel,
	logctx.WarningLevel, logctx.ErrorLevel,
}

// longLived contexts stay open so gauges have standing values.
var longLived []*logctx.Context

// levelSeq keeps generated level names unique within a process.
var levelSeq atomic.Int64

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}

	// Generate initial sample data
	generateSampleData()

	// Start background goroutine to continuously generate data
	ctx, cancel := context.WithCancel(context.Background())
	go generateContinuousData(ctx)

	// Serve metrics
	http.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
		server.Shutdown(context.Background())
	}()

	fmt.Printf("Sample metrics server running on http://localhost:%s/metrics\n", port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println("\nTo use with Prometheus, add this to prometheus.yml:")
	fmt.Printf("  - job_name: 'logctx-test'\n    static_configs:\n      - targets: ['localhost:%s']\n", port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func generateSampleData() {
	// Standing contexts with pinned loggers
	for i := 0; i < 3; i++ {
		c := newPopulatedContext()
		pinSome(c)
		longLived = append(longLived, c)
	}

	// Churn: short-lived contexts created, exercised, closed
	for i := 0; i < 20; i++ {
		c := newPopulatedContext()
		driveTraffic(c, 50)
		c.Close()
	}

	// Contention so the snapshot retry counter is nonzero from the start
	contentionBurst(longLived[0])
}

func generateContinuousData(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Context churn
			if rand.Float64() > 0.3 {
				c := newPopulatedContext()
				driveTraffic(c, rand.Intn(40)+10)
				c.Close()
			}
			// Traffic on a standing context
			if rand.Float64() > 0.4 {
				driveTraffic(longLived[rand.Intn(len(longLived))], 20)
			}
			// Pin churn moves the gauge both ways
			if rand.Float64() > 0.6 {
				lg := longLived[rand.Intn(len(longLived))].GetLogger(randomChoice(loggerNames))
				if rand.Float64() > 0.5 {
					lg.Pin()
				} else {
					lg.Unpin()
				}
			}
			// Occasional registration activity
			if rand.Float64() > 0.7 {
				registerSampleLevel(longLived[rand.Intn(len(longLived))])
			}
			if rand.Float64() > 0.8 {
				contentionBurst(longLived[rand.Intn(len(longLived))])
			}
		}
	}
}

// newPopulatedContext builds a context with a permissive root, a flaky
// output handler, and a couple of generated levels.
func newPopulatedContext() *logctx.Context {
	c, err := logctx.Create(rand.Float64() > 0.5)
	if err != nil {
		log.Fatal(err)
	}
	root := c.GetLogger("")
	root.SetLevel(logctx.FineLevel)
	root.AddHandler(flakyHandler{})
	registerSampleLevel(c)
	registerSampleLevel(c)
	return c
}

func registerSampleLevel(c *logctx.Context) {
	name := fmt.Sprintf("SAMPLE_%d", levelSeq.Add(1))
	c.RegisterLevel(logctx.NewLevel(name, 300+rand.Intn(800)), rand.Float64() > 0.5)
}

func driveTraffic(c *logctx.Context, events int) {
	for i := 0; i < events; i++ {
		lg := c.GetLogger(randomChoice(loggerNames))
		lg.Log(sampleLevels[rand.Intn(len(sampleLevels))], "sample event",
			zap.Int("seq", i), zap.String("source", "testdata"))
	}
}

func pinSome(c *logctx.Context) {
	for i := 0; i < rand.Intn(3)+1; i++ {
		c.GetLogger(randomChoice(loggerNames)).Pin()
	}
}

// contentionBurst hammers one context's attachment store and logger tree
// from several goroutines so snapshot swaps actually collide.
func contentionBurst(c *logctx.Context) {
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := logctx.NewAttachmentKey(fmt.Sprintf("burst-%d-%d", g, i))
				c.Attach(key, i)
				c.GetLogger(fmt.Sprintf("burst.g%d.n%d", g, i%10))
			}
		}(g)
	}
	wg.Wait()
}

// flakyHandler fails a fraction of publishes so the failure counter moves.
type flakyHandler struct{}

func (flakyHandler) Publish(*logctx.Record) error {
	if rand.Float64() < 0.1 {
		return errors.New("simulated sink failure")
	}
	return nil
}

func (flakyHandler) Close() error { return nil }
