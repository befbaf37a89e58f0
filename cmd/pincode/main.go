// Command pincode looks a pincode up on the postal API and prints the first
// post office, or validates the address in a photo with -scan.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"pincode-backend/config"
	"pincode-backend/internal/address"
	"pincode-backend/internal/ocr"
	"pincode-backend/internal/pipeline"
	"pincode-backend/internal/postal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("pincode", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", "./config/config.yaml", "path to the configuration file")
	scanPath := fs.String("scan", "", "validate the address in this JPEG or PNG instead of a typed pincode")
	annotatePath := fs.String("annotate", "", "with -scan, write the frame with detection boxes to this PNG")
	fs.Usage = func() {
		fmt.Fprintln(stdout, "usage: pincode [-config path] [pincode]")
		fmt.Fprintln(stdout, "       pincode [-config path] -scan image [-annotate out.png]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	config.LoadEnv()
	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Printf("failed to load configuration from %s: %v", *configPath, err)
		return 1
	}

	client := postal.NewClient(cfg.Postal)
	if *scanPath != "" {
		return scan(ctx, cfg, client, *scanPath, *annotatePath, stdout)
	}

	pincode := fs.Arg(0)
	if pincode == "" {
		fmt.Fprint(stdout, "Enter the pincode: ")
		sc := bufio.NewScanner(stdin)
		if sc.Scan() {
			pincode = sc.Text()
		}
	}
	return lookup(ctx, client, address.NormalizePincode(pincode), stdout)
}

func lookup(ctx context.Context, client *postal.Client, pincode string, stdout io.Writer) int {
	result, err := client.Lookup(ctx, pincode)
	if err != nil {
		var se *postal.StatusError
		if errors.As(err, &se) {
			fmt.Fprintf(stdout, "Error: Unable to fetch data. HTTP Status Code: %d\n", se.StatusCode)
		} else {
			fmt.Fprintln(stdout, postal.Describe(err))
		}
		return 1
	}

	if !result.Outcome.OK() {
		fmt.Fprintln(stdout, result.Message)
		return 1
	}

	fmt.Fprintln(stdout, "\nAPI Output:")
	for _, f := range result.Fields() {
		fmt.Fprintf(stdout, "%s: %s\n", f.Key, f.Value)
	}
	return 0
}

func scan(ctx context.Context, cfg *config.Config, client *postal.Client, path, annotatePath string, stdout io.Writer) int {
	frame, err := os.ReadFile(path)
	if err != nil {
		log.Printf("failed to read %s: %v", path, err)
		return 1
	}

	p, err := pipeline.FromConfig(ctx, cfg, client)
	if err != nil {
		log.Printf("failed to initialize scan pipeline: %v", err)
		return 1
	}
	defer p.Close()

	report, err := p.Run(ctx, frame)
	if err != nil {
		log.Printf("scan failed: %v", err)
		return 1
	}

	if report.RecognizedText != "" {
		fmt.Fprintf(stdout, "Recognized Text: %s\n", report.RecognizedText)
		fmt.Fprintf(stdout, "Recognized Text (Translated to English): %s\n", report.TranslatedText)
		fmt.Fprintf(stdout, "Parsed Address Components: %s\n", formatComponents(report.Entities))
	}
	fmt.Fprintln(stdout, "\nValidation Result:")
	fmt.Fprintln(stdout, report.Message)

	if annotatePath != "" && len(report.Detections) > 0 {
		annotated, err := ocr.Annotate(frame, report.Detections)
		if err != nil {
			log.Printf("failed to annotate frame: %v", err)
			return 1
		}
		if err := os.WriteFile(annotatePath, annotated, 0o644); err != nil {
			log.Printf("failed to write %s: %v", annotatePath, err)
			return 1
		}
	}

	if report.Match == nil || !report.Match.Matched {
		return 1
	}
	return 0
}

func formatComponents(components map[string][]string) string {
	if len(components) == 0 {
		return "{}"
	}
	types := make([]string, 0, len(components))
	for t := range components {
		types = append(types, t)
	}
	sort.Strings(types)

	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s: [%s]", t, strings.Join(components[t], ", ")))
	}
	return "{" + strings.Join(parts, "; ") + "}"
}
