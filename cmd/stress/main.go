package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/pactffi"
)

const (
	totalBursts     = 100
	opsPerBurst     = 500
	maxMetadataKeys = 16
	maxValueSize    = 512
	numWorkers      = 64
)

const configFile = "stress_config.toml"

// Example TOML content for stress test
var tomlContent = `
# Example stress_config.toml
[pactffi]
  format = "txt"
  show_timestamp = true
  show_level = true
  max_size_mb = 1 # Force frequent rotation (1MB)
  max_backups = 4
  buffer_capacity = 65536
  error_max_length = 1024
`

var specs = []pactffi.Specification{
	pactffi.SpecV1,
	pactffi.SpecV2,
	pactffi.SpecV3,
	pactffi.SpecV4,
}

var (
	ctx      *pactffi.Context
	failures atomic.Int64
)

func generateRandomValue(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}

func check(err error) {
	if err != nil {
		failures.Add(1)
	}
}

// messageCycle builds a message, walks it through every accessor and releases it
func messageCycle(burstID, seq int) {
	doc := fmt.Sprintf(`{"description":"burst %d op %d","providerStates":[{"name":"state %d","params":{"seq":%d}}],"contents":{"n":%d}}`,
		burstID, seq, burstID, seq, rand.Int63())
	msg, err := ctx.MessageNewFromJSON(uint32(seq), []byte(doc), specs[rand.Intn(len(specs))])
	if err != nil {
		failures.Add(1)
		return
	}

	for k := rand.Intn(maxMetadataKeys); k >= 0; k-- {
		key := fmt.Sprintf("key-%d", rand.Intn(maxMetadataKeys))
		if err := ctx.MessageInsertMetadata(msg, key, generateRandomValue(rand.Intn(maxValueSize)+1)); err != nil &&
			pactffi.InsertStatusOf(err) != pactffi.InsertKeyExists {
			failures.Add(1)
		}
	}

	it, err := ctx.MessageMetadataIter(msg)
	check(err)
	for err == nil {
		var ph pactffi.Handle
		var ok bool
		ph, ok, err = ctx.MetadataIterNext(it)
		if err != nil || !ok {
			check(err)
			break
		}
		check(ctx.MetadataPairDelete(ph))
	}
	check(ctx.MetadataIterDelete(it))

	if _, _, err := ctx.MessageProviderState(msg, 0); err != nil {
		failures.Add(1)
	}
	check(ctx.MessageDelete(msg))

	ctx.LogMessage("stress", "debug", fmt.Sprintf("burst %d op %d done", burstID, seq))
}

// worker goroutine function
func worker(burstChan chan int, wg *sync.WaitGroup, completedBursts *atomic.Int64) {
	defer wg.Done()
	for burstID := range burstChan {
		for i := 0; i < opsPerBurst; i++ {
			messageCycle(burstID, i)
		}
		completed := completedBursts.Add(1)
		if completed%10 == 0 || completed == totalBursts {
			fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
		}
	}
}

func main() {
	fmt.Println("--- pactffi Stress Test ---")

	// --- Setup Config ---
	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created config file: %s\n", configFile)
	logsDir := "./logs"
	_ = os.RemoveAll(logsDir)
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		os.Exit(1)
	}

	var err error
	ctx, err = pactffi.NewBuilder().ConfigFile(configFile).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create context: %v\n", err)
		os.Exit(1)
	}

	// --- Configure sinks once ---
	ctx.LoggerInit()
	if err := ctx.LoggerAttachSink("file "+filepath.Join(logsDir, "stress.log"), pactffi.FilterDebug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to attach file sink (status %d): %v\n", pactffi.LoggerStatusOf(err), err)
		os.Exit(1)
	}
	_ = ctx.LoggerAttachSink("stderr", pactffi.FilterError)
	if err := ctx.LoggerApply(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply logger: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Logger applied. Logs will be written to: %s\n", logsDir)

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d message cycles/burst.\n",
		numWorkers, totalBursts, opsPerBurst)
	fmt.Println("Press Ctrl+C to stop early.")

	// --- Setup Workers and Signal Handling ---
	burstChan := make(chan int, numWorkers)
	var wg sync.WaitGroup
	completedBursts := atomic.Int64{}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})

	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping burst generation...")
		close(stopChan)
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(burstChan, &wg, &completedBursts)
	}

	// --- Run Test ---
	startTime := time.Now()
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-stopChan:
			fmt.Println("[Signal Received] Halting burst submission.")
			goto endLoop
		}
	}
endLoop:
	close(burstChan)

	fmt.Println("\nWaiting for workers to finish...")
	wg.Wait()
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		opsPerSec := float64(finalCompleted*opsPerBurst) / duration.Seconds()
		fmt.Printf("Approximate message cycles/sec: %.2f\n", opsPerSec)
	}
	fmt.Printf("Unexpected failures: %d\n", failures.Load())
	if n := ctx.Stats().Total(); n != 0 {
		fmt.Printf("Leaked handles: %d\n", n)
	}
	stats := ctx.Logger().Stats()
	fmt.Printf("Records processed: %d, dropped: %d across %d sinks\n",
		stats.TotalLogsProcessed, stats.TotalDropped, stats.Sinks)

	if err := ctx.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Context close error: %v\n", err)
	}
	fmt.Printf("Check log files in '%s'.\n", logsDir)
}
