// Command dashgen generates the Grafana dashboard and Prometheus rule files
// for pickup-monitor.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/pickup-monitor/tools/dashgen/dashboards"
	"github.com/donaldgifford/pickup-monitor/tools/dashgen/rules"
)

const generatedHeader = "# Code generated by dashgen. DO NOT EDIT.\n"

// metricRef matches metric and recording-rule names in this project's
// namespace.
var metricRef = regexp.MustCompile(`pickup_monitor[a-z0-9_:]*`)

type artifact struct {
	path string
	data []byte
}

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	files, err := generate(cfg)
	if err != nil {
		return err
	}

	for _, f := range files {
		if unknown := unknownMetrics(f.data); len(unknown) > 0 {
			return fmt.Errorf("%s references unknown metrics: %v", f.path, unknown)
		}
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	for _, f := range files {
		path := filepath.Join(cfg.OutputDir, f.path)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("dashgen: wrote %s\n", path)
	}
	return nil
}

// generate renders every enabled artifact with its path relative to the
// output directory.
func generate(cfg Config) ([]artifact, error) {
	var files []artifact

	if cfg.DashboardEnabled {
		dash, err := dashboards.BuildOverview().Build()
		if err != nil {
			return nil, fmt.Errorf("building dashboard: %w", err)
		}
		data, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding dashboard: %w", err)
		}
		files = append(files, artifact{
			path: filepath.Join("grafana", "pickup-monitor-overview.json"),
			data: append(data, '\n'),
		})
	}

	if cfg.RulesEnabled {
		for _, cr := range []rules.PrometheusRule{rules.RecordingRules(), rules.AlertRules()} {
			data, err := yaml.Marshal(cr)
			if err != nil {
				return nil, fmt.Errorf("encoding %s: %w", cr.Metadata.Name, err)
			}
			files = append(files, artifact{
				path: filepath.Join("prometheus", cr.Metadata.Name+".yaml"),
				data: append([]byte(generatedHeader), data...),
			})
		}
	}

	return files, nil
}

// unknownMetrics returns the sorted project metric names in data that are
// not in KnownMetrics. Histogram series suffixes are accepted.
func unknownMetrics(data []byte) []string {
	seen := map[string]bool{}
	for _, m := range metricRef.FindAll(data, -1) {
		name := string(m)
		if KnownMetrics[name] || seen[name] {
			continue
		}
		if base, ok := histogramBase(name); ok && KnownMetrics[base] {
			continue
		}
		seen[name] = true
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func histogramBase(name string) (string, bool) {
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok {
			return base, true
		}
	}
	return "", false
}
