package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"caseflow-hq/polaris/pkg/cli"
)

var benchmarkFlags struct {
	target      string
	duration    time.Duration
	rate        int
	concurrency int
	transcript  string
	enableRAG   bool
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Load test a running server",
	Long: `Perform load testing against a running Polaris server.

The benchmark command sends suggestion requests to the target server at a
configurable rate and measures performance characteristics.

Metrics Collected:
  - Request throughput (requests/sec)
  - Latency percentiles (p50, p95, p99, max)
  - Success/error rates and status code distribution

Each request carries a unique conversation ID, so audit records and metrics
on the target reflect distinct conversations.

Examples:
  # Basic benchmark
  polaris benchmark --target http://localhost:8080

  # High load test
  polaris benchmark --duration 60s --rate 100 --concurrency 10

  # Exercise the RAG path
  polaris benchmark --enable-rag --duration 30s`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().StringVar(&benchmarkFlags.target, "target", "http://localhost:8080", "server URL")
	benchmarkCmd.Flags().DurationVar(&benchmarkFlags.duration, "duration", 30*time.Second, "test duration")
	benchmarkCmd.Flags().IntVar(&benchmarkFlags.rate, "rate", 10, "requests per second")
	benchmarkCmd.Flags().IntVar(&benchmarkFlags.concurrency, "concurrency", 4, "concurrent clients")
	benchmarkCmd.Flags().StringVar(&benchmarkFlags.transcript, "transcript", "", "transcript to send (uses a built-in sample if empty)")
	benchmarkCmd.Flags().BoolVar(&benchmarkFlags.enableRAG, "enable-rag", false, "request RAG enhancement")
}

const sampleTranscript = `Customer: Hi, I still haven't received my order from last week.
Agent: I'm sorry to hear that. Could you share the order number?
Customer: Sure, it's #48213.`

func runBenchmark(cmd *cobra.Command, args []string) error {
	if benchmarkFlags.rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", benchmarkFlags.rate)
	}
	if benchmarkFlags.concurrency <= 0 {
		benchmarkFlags.concurrency = 1
	}

	fmt.Println("Polaris Benchmark")
	fmt.Println("=================")
	fmt.Printf("Target: %s\n", benchmarkFlags.target)
	fmt.Printf("Duration: %s\n", benchmarkFlags.duration)
	fmt.Printf("Rate: %d req/s\n", benchmarkFlags.rate)
	fmt.Printf("Concurrency: %d\n", benchmarkFlags.concurrency)
	fmt.Printf("RAG: %v\n", benchmarkFlags.enableRAG)
	fmt.Println()

	totalRequests := int(benchmarkFlags.duration.Seconds()) * benchmarkFlags.rate

	fmt.Println("Running...")
	fmt.Println()

	results := runLoadTest(totalRequests)

	displayResults(results)

	return nil
}

type benchmarkResults struct {
	totalRequests  int
	successfulReqs int
	failedReqs     int
	transportErrs  int
	duration       time.Duration
	latencies      []time.Duration
	statusCodes    map[int]int
}

func runLoadTest(totalRequests int) *benchmarkResults {
	results := &benchmarkResults{
		latencies:   make([]time.Duration, 0, totalRequests),
		statusCodes: make(map[int]int),
	}

	var (
		successful int64
		failed     int64
		mu         sync.Mutex
		wg         sync.WaitGroup
	)

	transcript := benchmarkFlags.transcript
	if transcript == "" {
		transcript = sampleTranscript
	}
	runID := uuid.NewString()[:8]

	client := &http.Client{Timeout: 60 * time.Second}

	start := time.Now()
	// Ctrl+C ends the run early; whatever was collected still gets reported.
	ctx, cancel := context.WithTimeout(cli.SetupSignalHandler(), benchmarkFlags.duration)
	defer cancel()

	progress := cli.NewProgressReporter(nil)
	progress.Start(int64(totalRequests))

	jobs := make(chan int)
	for w := 0; w < benchmarkFlags.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seq := range jobs {
				reqStart := time.Now()
				status, err := sendSuggestionRequest(ctx, client, runID, seq, transcript)
				latency := time.Since(reqStart)

				if err == nil && status == http.StatusOK {
					atomic.AddInt64(&successful, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}

				mu.Lock()
				results.latencies = append(results.latencies, latency)
				if err != nil {
					results.transportErrs++
				} else {
					results.statusCodes[status]++
				}
				mu.Unlock()

				progress.Update(atomic.LoadInt64(&successful) + atomic.LoadInt64(&failed))
			}
		}()
	}

	// Pace submissions at the requested rate; workers apply backpressure
	// through the unbuffered jobs channel.
	requestInterval := time.Second / time.Duration(benchmarkFlags.rate)
	ticker := time.NewTicker(requestInterval)
	defer ticker.Stop()

	requestsSent := 0
pacing:
	for requestsSent < totalRequests {
		select {
		case <-ctx.Done():
			break pacing
		case <-ticker.C:
			select {
			case jobs <- requestsSent:
				requestsSent++
			case <-ctx.Done():
				break pacing
			}
		}
	}

	close(jobs)
	wg.Wait()
	progress.Finish()

	results.duration = time.Since(start)
	results.totalRequests = requestsSent
	results.successfulReqs = int(atomic.LoadInt64(&successful))
	results.failedReqs = int(atomic.LoadInt64(&failed))

	return results
}

func sendSuggestionRequest(ctx context.Context, client *http.Client, runID string, seq int, transcript string) (int, error) {
	payload := map[string]interface{}{
		"conversation_id": fmt.Sprintf("bench-%s-%d", runID, seq),
		"transcript":      transcript,
		"enable_rag":      benchmarkFlags.enableRAG,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, benchmarkFlags.target+"/v1/suggestions", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func displayResults(results *benchmarkResults) {
	fmt.Println()
	fmt.Println("Results:")
	fmt.Println("--------")
	fmt.Printf("Requests:        %d total, %d successful, %d failed\n",
		results.totalRequests, results.successfulReqs, results.failedReqs)
	fmt.Printf("Duration:        %.1fs\n", results.duration.Seconds())

	if results.successfulReqs > 0 {
		throughput := float64(results.successfulReqs) / results.duration.Seconds()
		fmt.Printf("Throughput:      %.2f req/s\n", throughput)
	}

	if len(results.latencies) > 0 {
		min, mean, median, p95, p99, max := calculatePercentiles(results.latencies)

		fmt.Println()
		fmt.Println("Latency:")
		fmt.Printf("  Min:     %.1fms\n", float64(min.Microseconds())/1000)
		fmt.Printf("  Mean:    %.1fms\n", float64(mean.Microseconds())/1000)
		fmt.Printf("  Median:  %.1fms\n", float64(median.Microseconds())/1000)
		fmt.Printf("  p95:     %.1fms\n", float64(p95.Microseconds())/1000)
		fmt.Printf("  p99:     %.1fms\n", float64(p99.Microseconds())/1000)
		fmt.Printf("  Max:     %.1fms\n", float64(max.Microseconds())/1000)
	}

	if results.totalRequests > 0 && len(results.statusCodes) > 0 {
		fmt.Println()
		fmt.Println("Status Codes:")

		codes := make([]int, 0, len(results.statusCodes))
		for code := range results.statusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)

		for _, code := range codes {
			count := results.statusCodes[code]
			share := float64(count) / float64(results.totalRequests) * 100
			fmt.Printf("  %d:     %d (%.0f%%)\n", code, count, share)
		}
		if results.transportErrs > 0 {
			share := float64(results.transportErrs) / float64(results.totalRequests) * 100
			fmt.Printf("  Errors:  %d (%.0f%%)\n", results.transportErrs, share)
		}
	}
}

func calculatePercentiles(latencies []time.Duration) (min, mean, median, p95, p99, max time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var sum time.Duration
	for _, lat := range sorted {
		sum += lat
	}
	mean = sum / time.Duration(len(sorted))

	median = sorted[len(sorted)/2]
	p95 = sorted[int(float64(len(sorted))*0.95)]
	p99 = sorted[int(float64(len(sorted))*0.99)]

	return
}
