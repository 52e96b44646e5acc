package config

import (
	// Go Internal Packages
	"net/url"
	"strings"
	"time"

	// Local Packages
	errors "tanda-go/errors"
)

var DefaultConfig = []byte(`
application: "tanda"

logger:
  level: "debug"

is_prod_mode: false

tanda:
  client_id: ""
  client_secret: ""
  organisation_id: ""
  mode: "sandbox"
  auth_base_url: ""
  api_base_url: ""
  base_result_url: "http://localhost:8080"
  result_url: "tanda/payout/result"
  c2b_result_url: "tanda/c2b/result"
  p2p_result_url: "tanda/p2p/result"
  ipn_url: "tanda/ipn"
  timeout: 30s
  token_ttl_margin: 2m

breaker:
  max_requests: 1
  interval: 60s
  timeout: 30s
  failure_threshold: 5

store:
  driver: "sqlite"
  sqlite_path: "tanda.db"

mongo:
  uri: "mongodb://localhost:27017"
  database: "tanda"

redis:
  uri: ""
  password: ""

kafka:
  brokers:
    - "localhost:9092"
  consume: false
  topic: "tanda-callbacks"
  records_per_poll: 100
  consumer_name: "tanda-callbacks"
  retry_backoff: 1s

http:
  address: ":8080"
`)

// Tanda API modes.
const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"
)

// Store drivers.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

var defaultEndpoints = map[string][2]string{
	ModeSandbox: {"https://identity-uat.tanda.africa", "https://api-v3-uat.tanda.africa"},
	ModeLive:    {"https://identity.tanda.africa", "https://api-v3.tanda.africa"},
}

type Config struct {
	Application string  `koanf:"application"`
	Logger      Logger  `koanf:"logger"`
	IsProdMode  bool    `koanf:"is_prod_mode"`
	Tanda       Tanda   `koanf:"tanda"`
	Breaker     Breaker `koanf:"breaker"`
	Store       Store   `koanf:"store"`
	Mongo       Mongo   `koanf:"mongo"`
	Redis       Redis   `koanf:"redis"`
	Kafka       Kafka   `koanf:"kafka"`
	HTTP        HTTP    `koanf:"http"`
}

type Logger struct {
	Level string `koanf:"level"`
}

// Tanda holds the API credentials and the callback URLs handed to the provider.
type Tanda struct {
	ClientID       string        `koanf:"client_id"`
	ClientSecret   string        `koanf:"client_secret"`
	OrganisationID string        `koanf:"organisation_id"`
	Mode           string        `koanf:"mode"`
	AuthBaseURL    string        `koanf:"auth_base_url"`
	APIBaseURL     string        `koanf:"api_base_url"`
	BaseResultURL  string        `koanf:"base_result_url"`
	ResultURL      string        `koanf:"result_url"`
	C2BResultURL   string        `koanf:"c2b_result_url"`
	P2PResultURL   string        `koanf:"p2p_result_url"`
	IPNURL         string        `koanf:"ipn_url"`
	Timeout        time.Duration `koanf:"timeout"`
	TokenTTLMargin time.Duration `koanf:"token_ttl_margin"`
}

type Breaker struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

type Store struct {
	Driver     string `koanf:"driver"`
	SQLitePath string `koanf:"sqlite_path"`
}

type Mongo struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

// Redis is optional, an empty URI keeps the token cache in process.
type Redis struct {
	URI      string `koanf:"uri"`
	Password string `koanf:"password"`
}

type Kafka struct {
	Brokers        []string      `koanf:"brokers"`
	Consume        bool          `koanf:"consume"`
	Topic          string        `koanf:"topic"`
	RecordsPerPoll int           `koanf:"records_per_poll"`
	ConsumerName   string        `koanf:"consumer_name"`
	RetryBackoff   time.Duration `koanf:"retry_backoff"`
}

type HTTP struct {
	Address string `koanf:"address"`
}

// ResolveEndpoints fills the base URLs for the configured mode when they are unset.
func (t *Tanda) ResolveEndpoints() {
	urls, ok := defaultEndpoints[t.Mode]
	if !ok {
		return
	}
	if t.AuthBaseURL == "" {
		t.AuthBaseURL = urls[0]
	}
	if t.APIBaseURL == "" {
		t.APIBaseURL = urls[1]
	}
}

// PaymentResultURL is the callback URL for payouts (B2B and B2C).
func (t Tanda) PaymentResultURL() string {
	return joinURL(t.BaseResultURL, t.ResultURL)
}

// FundingResultURL is the callback URL for C2B requests.
func (t Tanda) FundingResultURL() string {
	return joinURL(t.BaseResultURL, t.C2BResultURL)
}

func (t Tanda) P2PCallbackURL() string {
	return joinURL(t.BaseResultURL, t.P2PResultURL)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// RoutePath turns a callback setting, a bare path or a full URL, into the
// path the callback server listens on.
func RoutePath(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		raw = u.Path
	}
	return "/" + strings.Trim(raw, "/")
}

// Validate checks every setting the client needs to talk to Tanda.
func (t Tanda) Validate() error {
	ve := errors.ValidationErrs()
	t.validate(ve)
	return ve.Err()
}

func (t Tanda) validate(ve *errors.ValidationErrors) {
	required := map[string]string{
		"tanda.client_id":       t.ClientID,
		"tanda.client_secret":   t.ClientSecret,
		"tanda.organisation_id": t.OrganisationID,
		"tanda.mode":            t.Mode,
		"tanda.auth_base_url":   t.AuthBaseURL,
		"tanda.api_base_url":    t.APIBaseURL,
		"tanda.base_result_url": t.BaseResultURL,
		"tanda.result_url":      t.ResultURL,
		"tanda.c2b_result_url":  t.C2BResultURL,
		"tanda.p2p_result_url":  t.P2PResultURL,
		"tanda.ipn_url":         t.IPNURL,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			ve.Add(field, "cannot be empty")
		}
	}

	callbacks := [][2]string{
		{"tanda.result_url", t.ResultURL},
		{"tanda.c2b_result_url", t.C2BResultURL},
		{"tanda.p2p_result_url", t.P2PResultURL},
		{"tanda.ipn_url", t.IPNURL},
	}
	seen := make(map[string]string, len(callbacks))
	for _, cb := range callbacks {
		if strings.TrimSpace(cb[1]) == "" {
			continue
		}
		path := RoutePath(cb[1])
		if other, ok := seen[path]; ok {
			ve.Add(cb[0], "must differ from "+other)
			continue
		}
		seen[path] = cb[0]
	}
	if t.Mode != "" && t.Mode != ModeSandbox && t.Mode != ModeLive {
		ve.Add("tanda.mode", "must be sandbox or live")
	}
	if t.Timeout <= 0 {
		ve.Add("tanda.timeout", "must be positive")
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	c.Tanda.validate(ve)

	switch c.Store.Driver {
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			ve.Add("store.sqlite_path", "cannot be empty")
		}
	case StoreMongo:
		if c.Mongo.URI == "" {
			ve.Add("mongo.uri", "cannot be empty")
		}
		if c.Mongo.Database == "" {
			ve.Add("mongo.database", "cannot be empty")
		}
	case StoreMemory:
	default:
		ve.Add("store.driver", "must be sqlite, mongo or memory")
	}

	if c.Kafka.Consume {
		if len(c.Kafka.Brokers) == 0 {
			ve.Add("kafka.brokers", "cannot be empty")
		}
		if c.Kafka.Topic == "" {
			ve.Add("kafka.topic", "cannot be empty")
		}
	}

	if err := ve.Err(); err != nil {
		return errors.ConfigErr(err)
	}
	return nil
}
