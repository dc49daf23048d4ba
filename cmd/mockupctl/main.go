// Command mockupctl runs the mockup pipeline once on local files, using the
// same environment configuration as the API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"mockup/internal/domain"
	"mockup/internal/imageproc"
	"mockup/internal/infra"
	"mockup/internal/mockup"
)

func main() {
	var (
		productFlag string
		logoFlag    string
		nameFlag    string
		variantFlag string
	)
	flag.StringVar(&productFlag, "product", "", "Path to the product photo")
	flag.StringVar(&logoFlag, "logo", "", "Path to the logo image")
	flag.StringVar(&nameFlag, "name", "", "Product name used in the prompt")
	flag.StringVar(&variantFlag, "variant", "", "Variant label (defaults to \"default\")")
	flag.Parse()

	_ = godotenv.Load()
	os.Exit(run(productFlag, logoFlag, nameFlag, variantFlag))
}

func run(productFlag, logoFlag, nameFlag, variantFlag string) int {

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	req := domain.MockupRequest{ProductName: nameFlag, Variant: variantFlag}
	var closers []func() error
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()
	for _, in := range []struct {
		path string
		dst  **domain.Upload
	}{
		{path: productFlag, dst: &req.Product},
		{path: logoFlag, dst: &req.Logo},
	} {
		path := strings.TrimSpace(in.path)
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
			return 1
		}
		closers = append(closers, f.Close)
		*in.dst = &domain.Upload{
			Reader:      f,
			Filename:    filepath.Base(path),
			ContentType: imageproc.ResolveContentType(path, ""),
		}
	}

	ctx := context.Background()
	rt, err := mockup.NewFromConfig(ctx, cfg, &logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	result, err := rt.Service.Generate(logger.WithContext(ctx), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return 0
}
