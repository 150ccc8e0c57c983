package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v2"
)

// Defaults
const (
	DefaultPort               = 3318
	DefaultDatabaseType       = "sqlite"
	DefaultVerifierURL        = "https://mouauportal.edu.ng/login.php"
	DefaultVerifierAccountURL = "https://mouauportal.edu.ng/my-account-student.php"
	DefaultTimezone           = "Africa/Lagos"
	DefaultSessionTTL         = 2 * time.Hour
	DefaultRateLimit          = 10
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Signs session cookies
	SessionSecret string

	// Initial shared codes, used only when the principals do not exist yet
	StaffCode string
	AdminCode string

	VerifierURL        string
	VerifierAccountURL string

	// Election windows are entered in this zone
	Timezone string

	VoteRequiresActive bool
	SessionTTL         time.Duration

	// Login attempts per minute per client IP
	RateLimit int

	// Peers allowed to report the client address in X-Forwarded-For / X-Real-IP
	TrustedProxies []netip.Prefix

	// Mark session cookies Secure (serve behind HTTPS)
	SecureCookies bool
}

// Location loads the configured time zone
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// fileConfig is the optional YAML file layout
type fileConfig struct {
	Port     int `yaml:"port"`
	Database struct {
		URL  string `yaml:"url"`
		Type string `yaml:"type"`
	} `yaml:"database"`
	SessionSecret string `yaml:"session-secret"`
	StaffCode     string `yaml:"staff-code"`
	AdminCode     string `yaml:"admin-code"`
	Verifier      struct {
		LoginURL   string `yaml:"login-url"`
		AccountURL string `yaml:"account-url"`
	} `yaml:"verifier"`
	Timezone           string   `yaml:"timezone"`
	VoteRequiresActive *bool    `yaml:"vote-requires-active"`
	SessionTTL         string   `yaml:"session-ttl"`
	RateLimit          int      `yaml:"rate-limit"`
	TrustedProxies     []string `yaml:"trusted-proxies"`
	SecureCookies      *bool    `yaml:"secure-cookies"`
}

// loadConfigFile reads a YAML config file
func loadConfigFile(path string) (*fileConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fc := &fileConfig{}
	if err := yaml.NewDecoder(file).Decode(fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// ParseFlags resolves the configuration. Each setting is taken from its flag,
// then its environment variable, then the config file, then the default.
func ParseFlags(args []string) (Config, error) {
	var (
		cfg        Config
		configPath string
		voteActive string
		sessionTTL string
		proxies    string
		secure     string
	)

	fs := flag.NewFlagSet("voting", flag.ContinueOnError)

	fs.StringVar(&configPath, "c", "", "YAML config file")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fs.StringVar(&cfg.StaffCode, "staff-code", "", "Initial staff access code (prefer env)")
	fs.StringVar(&cfg.AdminCode, "admin-code", "", "Initial admin access code (prefer env)")

	fs.StringVar(&cfg.VerifierURL, "verifier-url", "", "Student portal login URL")
	fs.StringVar(&cfg.VerifierAccountURL, "verifier-account-url", "", "Student portal account URL reached on success")
	fs.StringVar(&cfg.Timezone, "tz", "", "Time zone of election windows")
	fs.StringVar(&voteActive, "vote-requires-active", "", "Reject ballots outside the active phase (true/false)")
	fs.StringVar(&sessionTTL, "session-ttl", "", "Session lifetime, e.g. 2h")
	fs.IntVar(&cfg.RateLimit, "rate-limit", 0, "Login attempts per minute per IP")
	fs.StringVar(&proxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs whose forwarding headers are trusted")
	fs.StringVar(&secure, "secure-cookies", "", "Mark session cookies Secure (true/false)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if configPath == "" {
		configPath = os.Getenv("CONFIG_FILE")
	}
	fc := &fileConfig{}
	if configPath != "" {
		loaded, err := loadConfigFile(configPath)
		if err != nil {
			return Config{}, err
		}
		fc = loaded
	}

	// Fall back to environment variables, then the file, then defaults
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else if fc.Port != 0 {
			cfg.Port = fc.Port
		} else {
			cfg.Port = DefaultPort
		}
	}

	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"), fc.Database.URL)
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	cfg.DatabaseType = firstNonEmpty(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), fc.Database.Type, DefaultDatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	cfg.SessionSecret = firstNonEmpty(cfg.SessionSecret, os.Getenv("SESSION_SECRET"), fc.SessionSecret)
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}
	cfg.StaffCode = firstNonEmpty(cfg.StaffCode, os.Getenv("STAFF_CODE"), fc.StaffCode)
	if cfg.StaffCode == "" {
		return Config{}, errors.New("STAFF_CODE required")
	}
	cfg.AdminCode = firstNonEmpty(cfg.AdminCode, os.Getenv("ADMIN_CODE"), fc.AdminCode)
	if cfg.AdminCode == "" {
		return Config{}, errors.New("ADMIN_CODE required")
	}

	cfg.VerifierURL = firstNonEmpty(cfg.VerifierURL, os.Getenv("VERIFIER_URL"), fc.Verifier.LoginURL, DefaultVerifierURL)
	cfg.VerifierAccountURL = firstNonEmpty(cfg.VerifierAccountURL, os.Getenv("VERIFIER_ACCOUNT_URL"), fc.Verifier.AccountURL, DefaultVerifierAccountURL)

	cfg.Timezone = firstNonEmpty(cfg.Timezone, os.Getenv("TIMEZONE"), fc.Timezone, DefaultTimezone)
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}

	cfg.VoteRequiresActive = true
	if voteActive == "" {
		voteActive = os.Getenv("VOTE_REQUIRES_ACTIVE")
	}
	if voteActive != "" {
		v, err := strconv.ParseBool(voteActive)
		if err != nil {
			return Config{}, errors.New("invalid VOTE_REQUIRES_ACTIVE value")
		}
		cfg.VoteRequiresActive = v
	} else if fc.VoteRequiresActive != nil {
		cfg.VoteRequiresActive = *fc.VoteRequiresActive
	}

	cfg.SessionTTL = DefaultSessionTTL
	if ttl := firstNonEmpty(sessionTTL, os.Getenv("SESSION_TTL"), fc.SessionTTL); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid session TTL %q", ttl)
		}
		cfg.SessionTTL = d
	}

	if cfg.RateLimit == 0 {
		if rl := os.Getenv("RATE_LIMIT"); rl != "" {
			n, err := strconv.Atoi(rl)
			if err != nil {
				return Config{}, errors.New("invalid RATE_LIMIT env variable")
			}
			cfg.RateLimit = n
		} else if fc.RateLimit != 0 {
			cfg.RateLimit = fc.RateLimit
		} else {
			cfg.RateLimit = DefaultRateLimit
		}
	}
	if cfg.RateLimit < 1 {
		return Config{}, errors.New("rate limit must be positive")
	}

	if proxies == "" {
		proxies = os.Getenv("TRUSTED_PROXIES")
	}
	if proxies == "" {
		proxies = strings.Join(fc.TrustedProxies, ",")
	}
	trusted, err := ParseProxies(proxies)
	if err != nil {
		return Config{}, err
	}
	cfg.TrustedProxies = trusted

	if secure == "" {
		secure = os.Getenv("SECURE_COOKIES")
	}
	if secure != "" {
		v, err := strconv.ParseBool(secure)
		if err != nil {
			return Config{}, errors.New("invalid SECURE_COOKIES value")
		}
		cfg.SecureCookies = v
	} else if fc.SecureCookies != nil {
		cfg.SecureCookies = *fc.SecureCookies
	}

	return cfg, nil
}

// ParseProxies reads a comma-separated list of IPs and CIDR prefixes.
// A bare IP becomes a single-address prefix.
func ParseProxies(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", item, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
