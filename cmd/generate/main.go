// Command generate runs the content pipeline once and prints the resulting
// listing as JSON on stdout. Logs go to stderr so the output can be piped:
//
//	go run ./cmd/generate -image chair.jpg -text "деревянный стул" | jq .
//
// Without OPENAI_API_KEY the tool still works and prints the fallback record.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cardgen_backend/internal/generation/domain"
	"cardgen_backend/internal/generation/normalize"
	"cardgen_backend/internal/generation/service"
	"cardgen_backend/internal/generation/transport"
	"cardgen_backend/internal/imagery"
	"cardgen_backend/platform/ai/openai"
	"cardgen_backend/platform/config"
	"cardgen_backend/platform/logger"
)

func main() {
	var (
		imagePath = flag.String("image", "", "Path to a product photo (jpg, png or webp)")
		text      = flag.String("text", "", "Product description text")
		strict    = flag.Bool("strict", false, "Use the strict normalization profile")
		compact   = flag.Bool("compact", false, "Print the record on one line instead of indented")
	)
	flag.Parse()

	if *imagePath == "" && *text == "" {
		fmt.Fprintln(os.Stderr, "error: at least one of -image or -text is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.NewWriter(cfg.Env, os.Stderr)

	var upstream service.Upstream
	if cfg.IsOpenAIEnabled() {
		client, err := openai.NewClient(openai.Config{
			APIKey:      cfg.GetOpenAIAPIKey(),
			BaseURL:     cfg.GetOpenAIBaseURL(),
			Model:       cfg.GetOpenAIModel(),
			MaxTokens:   cfg.GetOpenAIMaxTokens(),
			Temperature: cfg.GetOpenAITemperature(),
			Timeout:     cfg.GetOpenAITimeout(),
			ProxyURL:    cfg.GetOpenAIProxyURL(),
		})
		if err != nil {
			log.Error("failed to initialize completion client", "error", err)
			panic("failed to initialize completion client: " + err.Error())
		}
		upstream = service.NewCaller(client, cfg, log)
	} else {
		log.Warn("OPENAI_API_KEY not configured; serving fallback content only")
	}

	profile := normalize.FromConfig(cfg)
	if *strict {
		markers := profile.Markers
		profile = normalize.StrictProfile()
		profile.Markers = markers
	}
	svc := service.New(upstream, normalize.New(profile), cfg, log)

	var img *domain.Image
	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: read image: %v\n", err)
			os.Exit(1)
		}
		format, err := imagery.NewValidator(cfg).Validate(filepath.Base(*imagePath), data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		img = &domain.Image{Data: data, MIMEType: format.MIME}
	}

	ctx := context.Background()
	var (
		rec domain.ContentRecord
		out service.Outcome
	)
	switch {
	case img != nil && *text != "":
		rec, out = svc.FromBoth(ctx, *img, *text)
	case img != nil:
		rec, out = svc.FromImage(ctx, *img)
	default:
		rec, out = svc.FromText(ctx, *text)
	}

	log.Info("generation finished",
		"source", out.Source.String(),
		"attempts", out.Attempts,
		"fallback", out.UsedFallback,
		"durationMs", out.Duration.Milliseconds(),
	)
	if out.UsedFallback {
		log.Warn("served fallback record", "reason", out.FallbackReason)
	}

	// Same wire shape the HTTP endpoint returns.
	resp := transport.GenerateResponse{
		Title:               rec.Title,
		ShortDescription:    rec.ShortDescription,
		DetailedDescription: rec.FullDescription,
		Features:            rec.Features,
		SEOKeywords:         rec.SEOKeywords,
		TargetAudience:      rec.TargetAudience,
	}

	var payload []byte
	if *compact {
		payload, err = json.Marshal(resp)
	} else {
		payload, err = json.MarshalIndent(resp, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: encode record: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(payload))
}
