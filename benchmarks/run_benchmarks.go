// Package main runs the captain benchmarks and outputs results to JSON/Markdown.
// Run with: go run benchmarks/run_benchmarks.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BenchmarkResults holds all benchmark data
type BenchmarkResults struct {
	Timestamp   string           `json:"timestamp"`
	Environment Environment      `json:"environment"`
	Groups      map[string]Group `json:"groups"`
}

type Environment struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPU       string `json:"cpu"`
	NumCPU    int    `json:"num_cpu"`
	GoVersion string `json:"go_version"`
}

type Group struct {
	Package    string      `json:"package"`
	Benchmarks []Benchmark `json:"benchmarks"`
	Passed     bool        `json:"passed"`
}

type Benchmark struct {
	Name        string  `json:"name"`
	NsPerOp     float64 `json:"ns_per_op"`
	OpsPerSec   float64 `json:"ops_per_sec"`
	BytesPerOp  int64   `json:"bytes_per_op"`
	AllocsPerOp int64   `json:"allocs_per_op"`
}

// groups maps a report section to the package whose benchmarks it runs.
var groups = []struct {
	name string
	pkg  string
}{
	{"mapping builder", "./pkg/stub/"},
	{"stub files", "./pkg/stubfile/"},
	{"journal filters", "./pkg/requestlog/"},
	{"admin client", "./pkg/admin/wiremockclient/"},
}

const resultsDir = "benchmarks/results"

func main() {
	fmt.Println("==========================================")
	fmt.Println("   CAPTAIN BENCHMARK SUITE")
	fmt.Println("==========================================")
	fmt.Println()

	results := BenchmarkResults{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Environment: Environment{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPU:       getCPUInfo(),
			NumCPU:    runtime.NumCPU(),
			GoVersion: runtime.Version(),
		},
		Groups: make(map[string]Group),
	}

	for _, g := range groups {
		fmt.Printf("Running %s benchmarks...\n", g.name)
		benches, err := runBenchmarks(g.pkg)
		if err != nil {
			fmt.Printf("  %s: %v\n", g.pkg, err)
		}
		results.Groups[g.name] = Group{Package: g.pkg, Benchmarks: benches, Passed: err == nil}
	}

	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		fmt.Printf("Error creating %s: %v\n", resultsDir, err)
		os.Exit(1)
	}

	jsonPath := filepath.Join(resultsDir, "latest.json")
	if err := writeJSON(results, jsonPath); err != nil {
		fmt.Printf("Error writing JSON: %v\n", err)
	} else {
		fmt.Printf("\nJSON results: %s\n", jsonPath)
	}

	mdPath := filepath.Join(resultsDir, "LATEST.md")
	if err := os.WriteFile(mdPath, []byte(markdown(results)), 0o644); err != nil {
		fmt.Printf("Error writing Markdown: %v\n", err)
	} else {
		fmt.Printf("Markdown results: %s\n", mdPath)
	}

	printSummary(results)
}

func getCPUInfo() string {
	if runtime.GOOS == "linux" {
		data, err := os.ReadFile("/proc/cpuinfo")
		if err == nil {
			for _, line := range strings.Split(string(data), "\n") {
				if strings.HasPrefix(line, "model name") {
					if _, v, ok := strings.Cut(line, ":"); ok {
						return strings.TrimSpace(v)
					}
				}
			}
		}
	}
	return "unknown"
}

func runBenchmarks(pkg string) ([]Benchmark, error) {
	cmd := exec.Command("go", "test", "-run=^$", "-bench=.", "-benchtime=1s", "-benchmem", pkg)
	output, err := cmd.CombinedOutput()
	return parseBenchmarkOutput(string(output)), err
}

// Pattern: BenchmarkName-N    iterations    ns/op    bytes/op    allocs/op
var benchLine = regexp.MustCompile(`(Benchmark[\w/]+)-\d+\s+(\d+)\s+([\d.]+)\s+ns/op\s+(\d+)\s+B/op\s+(\d+)\s+allocs/op`)

func parseBenchmarkOutput(output string) []Benchmark {
	var benchmarks []Benchmark
	for _, match := range benchLine.FindAllStringSubmatch(output, -1) {
		nsPerOp, _ := strconv.ParseFloat(match[3], 64)
		bytesPerOp, _ := strconv.ParseInt(match[4], 10, 64)
		allocsPerOp, _ := strconv.ParseInt(match[5], 10, 64)

		opsPerSec := 0.0
		if nsPerOp > 0 {
			opsPerSec = 1e9 / nsPerOp
		}
		benchmarks = append(benchmarks, Benchmark{
			Name:        match[1],
			NsPerOp:     nsPerOp,
			OpsPerSec:   opsPerSec,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}
	return benchmarks
}

func writeJSON(results BenchmarkResults, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func markdown(results BenchmarkResults) string {
	var sb strings.Builder
	title := cases.Title(language.English)

	sb.WriteString("# Captain Benchmark Results\n\n")
	fmt.Fprintf(&sb, "**Generated**: %s\n\n", results.Timestamp)
	sb.WriteString("## Environment\n\n")
	fmt.Fprintf(&sb, "- **OS**: %s/%s\n", results.Environment.OS, results.Environment.Arch)
	fmt.Fprintf(&sb, "- **CPU**: %s (%d cores)\n", results.Environment.CPU, results.Environment.NumCPU)
	fmt.Fprintf(&sb, "- **Go**: %s\n\n", results.Environment.GoVersion)

	for _, name := range sortedGroups(results) {
		g := results.Groups[name]
		fmt.Fprintf(&sb, "## %s (`%s`)\n\n", title.String(name), g.Package)
		sb.WriteString("| Benchmark | ops/sec | ns/op | B/op | allocs/op |\n")
		sb.WriteString("|-----------|---------|-------|------|----------|\n")
		for _, b := range g.Benchmarks {
			fmt.Fprintf(&sb, "| %s | %.0f | %.0f | %d | %d |\n",
				b.Name, b.OpsPerSec, b.NsPerOp, b.BytesPerOp, b.AllocsPerOp)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Reproducing\n\n")
	sb.WriteString("```bash\n")
	sb.WriteString("go run benchmarks/run_benchmarks.go\n")
	sb.WriteString("# Or one package:\n")
	for _, g := range groups {
		fmt.Fprintf(&sb, "go test -run='^$' -bench=. -benchmem %s\n", g.pkg)
	}
	sb.WriteString("```\n")
	return sb.String()
}

func sortedGroups(results BenchmarkResults) []string {
	names := make([]string, 0, len(results.Groups))
	for name := range results.Groups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func printSummary(results BenchmarkResults) {
	fmt.Println()
	fmt.Println("==========================================")
	fmt.Println("              SUMMARY")
	fmt.Println("==========================================")
	for _, name := range sortedGroups(results) {
		g := results.Groups[name]
		status := "ok"
		if !g.Passed {
			status = "FAILED"
		}
		fmt.Printf("%-16s %s\n", name+":", status)
		for _, b := range g.Benchmarks {
			fmt.Printf("  %-40s %12.0f ns/op %8d allocs/op\n", b.Name, b.NsPerOp, b.AllocsPerOp)
		}
	}
	fmt.Println("==========================================")
}
