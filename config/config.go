package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"campus_shelf/exchange"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// EnvPrefix 环境变量覆盖前缀，例如 SHELF_REDIS_ADDR -> redis.addr
const EnvPrefix = "SHELF_"

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Env struct {
		Name string `yaml:"name"`
		Log  Log    `yaml:"log"`
	} `yaml:"env"`

	HTTP struct {
		Port      int    `yaml:"port"`
		WebOrigin string `yaml:"webOrigin"`
	} `yaml:"http"`

	Postgres Postgres `yaml:"postgres"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Session struct {
		TTL              time.Duration `yaml:"ttl"`
		LastSeenThrottle time.Duration `yaml:"lastSeenThrottle"`
	} `yaml:"session"`

	AI struct {
		APIKey   string        `yaml:"apiKey"`
		Model    string        `yaml:"model"`
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"ai"`

	Rewards exchange.Rewards `yaml:"rewards"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type Postgres struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	DBName        string        `yaml:"dbName"`
	SSLMode       string        `yaml:"sslMode"`
	TimeZone      string        `yaml:"timeZone"`
	SlowThreshold time.Duration `yaml:"slowThreshold"`
}

func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode, p.TimeZone)
}

// SecureCookies origin 为 https 时 cookie 加 Secure
func (c *Config) SecureCookies() bool { return strings.HasPrefix(c.HTTP.WebOrigin, "https://") }

// LoadEnv 读取 .env（不存在则忽略）
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}
}

// bytesProvider 内嵌默认配置
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errors.New("bytesProvider does not support Read")
}

// Load layers the embedded defaults, an optional config.yaml (first hit in
// searchPaths) and SHELF_* environment variables.
func Load(searchPaths ...string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(bytesProvider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "read default config")
	}

	if len(searchPaths) == 0 {
		searchPaths = []string{".", "config"}
	}
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := k.Load(file.Provider(candidate), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read %s", candidate)
		}
		break
	}

	existing := k.Raw()
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, v string) (string, any) {
			return canonicalizeEnvKey(strings.TrimPrefix(key, EnvPrefix), existing), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}

	cfg := new(Config)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "yaml",
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: strings.EqualFold,
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	// 兼容直接导出 API_KEY 的部署
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("API_KEY")
	}
	return cfg, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if matched, next, ok := findSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
			continue
		}
		canonical = append(canonical, segment)
		current = nil
	}
	return strings.Join(canonical, ".")
}

func findSegment(current map[string]any, segment string) (string, map[string]any, bool) {
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}
		child, _ := value.(map[string]any)
		return key, child, true
	}
	return "", nil, false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
