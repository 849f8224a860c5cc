package container

import (
	"fmt"
	"time"
)

const serviceName = "registry-client"

// Options is the process configuration shared by the server and the worker.
// Every field is also read from a SERVICE_* environment variable.
type Options struct {
	Port      int    `default:"8888"           help:"Port to listen on"                               short:"p"`
	LogFormat string `default:"json"           help:"Log format: json or console"`
	LogLevel  string `default:"info"           help:"Minimum log level"`
	RedisAddr string `default:"localhost:6379" help:"Redis server address"                            short:"r"`

	DatabaseURL string `default:""   help:"PostgreSQL connection string; empty keeps submissions in memory"`
	CacheTTL    string `default:"5m" help:"How long submission reads stay cached in Redis"`

	RegistryURL     string `default:"https://ismp.crpt.ru" help:"Registry base URL"`
	RegistryToken   string `default:""                     help:"Bearer token for the registry"`
	RegistryTimeout string `default:"10s"                  help:"Timeout for a single registry call"`
	ProductGroup    string `default:""                     help:"Product group sent with every document"`

	RateUnit  string `default:"second" help:"Registry rate window: millisecond, second, minute, hour, day or a duration"`
	RateLimit int    `default:"10"     help:"Registry calls allowed per rate window"`

	InboundRPS   int  `default:"5"     help:"Sustained requests per second per client"`
	InboundBurst int  `default:"10"    help:"Request burst allowed per client"`
	TrustProxy   bool `default:"false" help:"Attribute requests by X-Forwarded-For/X-Real-IP set by a trusted proxy"`

	Telemetry     string `default:"none"            help:"Telemetry exporter: none or stdout"`
	ConsumerGroup string `default:"registry-worker" help:"Redis stream consumer group"`
	Worker        bool   `default:"false"           help:"Run the delivery worker inside the server process"`
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}

	return d, nil
}
