package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"print-pricing/internal/app"
	"print-pricing/internal/artifact"
	"print-pricing/internal/export"
)

var (
	bucket = flag.String("bucket", "", "artifact bucket (defaults to ARTIFACT_BUCKET)")
	key    = flag.String("key", "", "stored artifact key")
	file   = flag.String("file", "", "local artifact file")
	out    = flag.String("out", "", "output .xlsx path (defaults to the artifact name)")
)

func main() {
	flag.Parse()
	if *file == "" && *key == "" {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit.
func run() int {
	body, name, err := readArtifact()
	if err != nil {
		log.Print(err)
		return 1
	}
	records, err := artifact.Decode(body)
	if err != nil {
		log.Print(err)
		return 1
	}

	dest := *out
	if dest == "" {
		dest = strings.TrimSuffix(name[strings.LastIndex(name, "/")+1:], ".json") + ".xlsx"
	}
	f, err := os.Create(dest)
	if err != nil {
		log.Print(err)
		return 1
	}
	if err := export.WriteXLSX(f, artifact.Ordered(records)); err != nil {
		f.Close()
		log.Printf("write %s: %v", dest, err)
		return 1
	}
	if err := f.Close(); err != nil {
		log.Print(err)
		return 1
	}
	log.Printf("wrote %d records to %s", len(records), dest)
	return 0
}

func readArtifact() ([]byte, string, error) {
	if *file != "" {
		b, err := os.ReadFile(*file)
		return b, *file, err
	}

	cfg, logg, err := app.Bootstrap()
	if err != nil {
		return nil, "", err
	}
	defer logg.Sync()

	ctx := context.Background()
	store, err := artifact.NewStore(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	loc := artifact.Location{Bucket: *bucket, Key: *key}
	if loc.Bucket == "" {
		loc.Bucket = cfg.ArtifactBucket
	}
	b, err := store.Get(ctx, loc)
	return b, *key, err
}
