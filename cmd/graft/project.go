package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/graft/internal/config"
	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/component"
	"github.com/vango-dev/graft/pkg/store"
	"github.com/vango-dev/graft/pkg/telemetry"
)

// globals holds the persistent flags.
type globals struct {
	configPath string
	logLevel   string
}

// project is everything a command needs from graft.json.
type project struct {
	cfg    *config.Config
	reg    *component.Registry
	logger *slog.Logger
}

func (g *globals) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, errors.New("E160").WithDetailf("unknown log level %q", g.logLevel)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// load reads, validates and compiles the project configuration.
func (g *globals) load(stderr io.Writer) (*project, error) {
	logger, err := g.logger(stderr)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	logger.Debug("project loaded", "config", cfg.Path(), "components", reg.Len())
	return &project{cfg: cfg, reg: reg, logger: logger}, nil
}

// metrics returns the metrics sink and its registry, or nils when metrics
// are disabled.
func (p *project) metrics() (*telemetry.Metrics, *prometheus.Registry) {
	if !p.cfg.Metrics.Enabled {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return telemetry.NewMetrics(
		telemetry.WithRegistry(reg),
		telemetry.WithNamespace(p.cfg.Metrics.Namespace),
	), reg
}

// store opens the configured page store.
func (p *project) store(m *telemetry.Metrics) (store.Store, error) {
	sc := p.cfg.Store
	opts := []store.Option{
		store.WithPrecompress(sc.Precompress),
		store.WithLogger(p.logger.With("component", "store", "backend", sc.Kind)),
		store.WithMetrics(m),
	}

	switch sc.Kind {
	case config.StoreDisk:
		return store.NewDiskStore(p.cfg.StorePath(), opts...)
	case config.StoreS3:
		return store.NewS3Store(newS3Client(sc), sc.Bucket, sc.Prefix, store.DefaultBreakerSettings, opts...), nil
	case config.StoreNone:
		return store.NopStore{}, nil
	default:
		return nil, errors.New("E121").WithDetailf("unknown store kind %q", sc.Kind)
	}
}

// newS3Client builds a client from the store section and the standard AWS
// environment variables.
func newS3Client(sc config.StoreConfig) *s3.Client {
	opts := s3.Options{
		Region: sc.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
				if id == "" || secret == "" {
					return aws.Credentials{}, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
				}
				return aws.Credentials{
					AccessKeyID:     id,
					SecretAccessKey: secret,
					SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
					Source:          "environment",
				}, nil
			})),
	}
	if opts.Region == "" {
		opts.Region = os.Getenv("AWS_REGION")
	}
	if sc.Endpoint != "" {
		opts.BaseEndpoint = aws.String(strings.TrimSuffix(sc.Endpoint, "/"))
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}
