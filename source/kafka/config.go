package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mglaserna/envelope/output"
)

// Encoding selects the runtime representation of record keys and values.
type Encoding string

const (
	EncodingString    Encoding = "string"
	EncodingByteArray Encoding = "bytearray"
)

func (e Encoding) Valid() bool {
	return e == EncodingString || e == EncodingByteArray
}

type WindowCfg struct {
	Enabled      bool `koanf:"enabled"`
	Milliseconds int  `koanf:"milliseconds"`
}

type OffsetsCfg struct {
	Manage bool          `koanf:"manage"`
	Output output.Config `koanf:"output"`
}

type Config struct {
	Brokers  []string `koanf:"brokers"`
	Topic    string   `koanf:"topic"`
	Encoding Encoding `koanf:"encoding"`
	GroupID  string   `koanf:"group_id"`

	StartFrom string `koanf:"start_from"` // oldest|newest (default newest)
	Version   string `koanf:"version"`
	TLSEn     bool   `koanf:"tls_enabled"`
	SASLUser  string `koanf:"sasl_user"`
	SASLPass  string `koanf:"sasl_pass"`

	// Parameters passes arbitrary transport settings through to the
	// driver, keyed without the `parameter.` prefix. Filled from the
	// flattened key space by LoadConfig, since parameter names contain
	// the koanf delimiter themselves.
	Parameters map[string]string `koanf:"-"`

	BatchMilliseconds int        `koanf:"batch_milliseconds"` // fetch window per micro-batch
	MaxRecords        int        `koanf:"max_records"`        // per partition per batch, 0 = unbounded
	Window            WindowCfg  `koanf:"window"`
	Offsets           OffsetsCfg `koanf:"offsets"`
}

// FetchWindow is the bounded duration one fetch may run: the widened
// window when windowing is enabled, the batch interval otherwise.
func (c Config) FetchWindow() time.Duration {
	if c.Window.Enabled {
		return time.Duration(c.Window.Milliseconds) * time.Millisecond
	}
	return time.Duration(c.BatchMilliseconds) * time.Millisecond
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `ENVELOPE_KAFKA__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("kafka schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider("ENVELOPE_KAFKA__", "__", nil), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	if all := k.Cut("parameter").All(); len(all) > 0 {
		cfg.Parameters = make(map[string]string, len(all))
		for key, val := range all {
			cfg.Parameters[key] = fmt.Sprintf("%v", val)
		}
	}
	applyDefaults(&cfg)
	return cfg, validate(cfg)
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	if c.StartFrom == "" {
		c.StartFrom = "newest"
	}
	if c.Version == "" {
		c.Version = "3.6.0"
	}
	if c.BatchMilliseconds == 0 {
		c.BatchMilliseconds = 5000
	}
	if c.Window.Enabled && c.Window.Milliseconds == 0 {
		c.Window.Milliseconds = c.BatchMilliseconds
	}
}

func validate(c Config) error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka: brokers is required")
	}
	if c.Topic == "" {
		return fmt.Errorf("kafka: topic is required")
	}
	if !c.Encoding.Valid() {
		return fmt.Errorf("kafka: invalid encoding %q (valid types are 'string' and 'bytearray')", c.Encoding)
	}
	if c.Offsets.Manage && c.GroupID == "" {
		return fmt.Errorf("kafka: offsets.manage requires a configured group_id")
	}
	return nil
}
