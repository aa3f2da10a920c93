package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"print-pricing/internal/app"
	"print-pricing/internal/artifact"
	"print-pricing/internal/services/registrar"
)

var (
	bucket = flag.String("bucket", "", "artifact bucket (defaults to ARTIFACT_BUCKET)")
	key    = flag.String("key", "", "artifact key")
	file   = flag.String("file", "", "register a local artifact file instead of a stored one")
	latest = flag.String("latest", "", "register the newest stored artifact with this product prefix")
)

func main() {
	flag.Parse()
	if *file == "" && *latest == "" && *key == "" {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit.
func run() int {
	cfg, logg, err := app.Bootstrap()
	if err != nil {
		log.Print(err)
		return 1
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := app.NewServices(ctx, cfg, logg)
	if err != nil {
		logg.Error("Failed to initialize registrar", "error", err)
		return 1
	}
	defer svc.Close()

	store := svc.Store
	loc := artifact.Location{Bucket: *bucket, Key: *key}
	if loc.Bucket == "" {
		loc.Bucket = cfg.ArtifactBucket
	}

	switch {
	case *file != "":
		abs, err := filepath.Abs(*file)
		if err != nil {
			logg.Error("Bad artifact path", "file", *file, "error", err)
			return 1
		}
		store = artifact.NewLocalStore(filepath.Dir(abs))
		loc = artifact.Location{Key: filepath.Base(abs)}
	case *latest != "":
		k, err := artifact.Latest(ctx, store, loc.Bucket, cfg.ArtifactSubdir, *latest)
		if err != nil {
			logg.Error("No artifact to register", "prefix", *latest, "error", err)
			return 1
		}
		loc.Key = k
	}

	res, err := svc.Registrar.RegisterArtifact(ctx, store, loc)
	if res != nil {
		printResult(res)
	}
	if err != nil {
		logg.Error("Registration failed", "artifact", loc.String(), "error", err)
		return 1
	}
	return 0
}

func printResult(res *registrar.Result) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(res)
}
