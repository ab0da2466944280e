// Package datadog sends metrics samples to a DogStatsD agent. Labels are
// turned into "key:value" tags.
package datadog

import (
	"errors"
	"fmt"
	"slices"

	"ppetl/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

type Config struct {
	// Addr is "host:port" for UDP or "unix:///path" for a socket.
	Addr       string
	Namespace  string
	GlobalTags []string
}

// Backend implements metrics.Backend. The zero value drops everything.
type Backend struct {
	client *statsd.Client
}

var _ metrics.Backend = (*Backend)(nil)

func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, errors.New("datadog: agent address is required")
	}
	opts := []statsd.Option{statsd.WithTags(cfg.GlobalTags)}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: dial %s: %w", cfg.Addr, err)
	}
	return &Backend{client: c}, nil
}

// IncCounter truncates delta; DogStatsD counts are integral.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client != nil {
		_ = b.client.Count(name, int64(delta), tagsOf(labels), 1)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client != nil {
		_ = b.client.Histogram(name, value, tagsOf(labels), 1)
	}
}

// Flush closes the client after sending what is buffered. The backend is
// unusable afterwards.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func tagsOf(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	tags := make([]string, 0, len(lbls))
	for k, v := range lbls {
		tags = append(tags, k+":"+v)
	}
	slices.Sort(tags)
	return tags
}
