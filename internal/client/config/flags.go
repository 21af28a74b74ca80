package config

import (
	"flag"
	"os"

	"github.com/fitly/fitly/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend endpoint URL
//	-k string   anonymous access key
//	-b string   image bucket name
//
// The function filters os.Args to only the flags it owns, using
// flagx.FilterArgs, so the env-file flags stay out of its way.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "backend endpoint URL")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "anonymous access key")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "image bucket name")

	_ = fs.Parse(args)
}
