package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Generator GeneratorConfig `yaml:"generator" envconfig:"GENERATOR"`
	Rules     Rules           `yaml:"rules" envconfig:"RULES"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration.
// BaseDir anchors every derived data path; see Paths for the resolved layout.
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR" default:"data"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	WebDir  string `yaml:"web_dir" envconfig:"WEB_DIR" default:"web"`
}

// GeneratorConfig controls the synthetic dataset produced by the generator stage.
type GeneratorConfig struct {
	Seed           uint64  `yaml:"seed" envconfig:"SEED" default:"42"`
	StudentCount   int     `yaml:"student_count" envconfig:"STUDENT_COUNT" default:"500" validate:"gt=0"`
	MinCourses     int     `yaml:"min_courses" envconfig:"MIN_COURSES" default:"2" validate:"gt=0"`
	MaxCourses     int     `yaml:"max_courses" envconfig:"MAX_COURSES" default:"3" validate:"gtefield=MinCourses"`
	DuplicateRows  int     `yaml:"duplicate_rows" envconfig:"DUPLICATE_ROWS" default:"15" validate:"gte=0"`
	MissingAgeRate float64 `yaml:"missing_age_rate" envconfig:"MISSING_AGE_RATE" default:"0.05" validate:"gte=0,lte=1"`
	DropoutRate    float64 `yaml:"dropout_rate" envconfig:"DROPOUT_RATE" default:"0.03" validate:"gte=0,lte=1"`
	MissedExamRate float64 `yaml:"missed_exam_rate" envconfig:"MISSED_EXAM_RATE" default:"0.02" validate:"gte=0,lte=1"`
}

// Rules holds the business thresholds shared by the pipeline, the reporter
// and the dashboard. They are configuration rather than literals so each
// stage stays independently testable, but the defaults are the contract.
type Rules struct {
	// DropoutAttendanceCutoff separates "Dropout" from "Missed Exam" when the
	// final grade is absent.
	DropoutAttendanceCutoff float64 `yaml:"dropout_attendance_cutoff" envconfig:"DROPOUT_ATTENDANCE_CUTOFF" default:"35"`

	// At-risk rule: flagged when (midterm-final) > GradeDropLimit OR
	// attendance < AttendanceFloor OR final < FinalGradeFloor. All strict.
	GradeDropLimit  float64 `yaml:"grade_drop_limit" envconfig:"GRADE_DROP_LIMIT" default:"10"`
	AttendanceFloor float64 `yaml:"attendance_floor" envconfig:"ATTENDANCE_FLOOR" default:"75"`
	FinalGradeFloor float64 `yaml:"final_grade_floor" envconfig:"FINAL_GRADE_FLOOR" default:"65"`

	// OutlierStdDevs bounds the reporter's outlier detection window.
	OutlierStdDevs float64 `yaml:"outlier_std_devs" envconfig:"OUTLIER_STD_DEVS" default:"2"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load loads configuration from environment variables and config file.
// Environment variables (EDUPULSE_ prefix) take precedence over config.yaml.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = fileCfg
	}

	if err := envconfig.Process("EDUPULSE", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file, with defaults applied
// first so a partial file only overrides what it mentions.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags plus the
// cross-field constraints the tags cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	if c.Generator.MaxCourses > CoursesPerDepartment {
		return fmt.Errorf("max_courses %d exceeds per-department course count %d",
			c.Generator.MaxCourses, CoursesPerDepartment)
	}
	if c.Rules.DropoutAttendanceCutoff < 0 || c.Rules.DropoutAttendanceCutoff > 100 {
		return fmt.Errorf("dropout attendance cutoff out of range: %v", c.Rules.DropoutAttendanceCutoff)
	}
	return nil
}

// findConfigFile returns the path to the config file if one exists
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			BaseDir: "data",
			LogsDir: "logs",
			WebDir:  "web",
		},
		Generator: GeneratorConfig{
			Seed:           42,
			StudentCount:   500,
			MinCourses:     2,
			MaxCourses:     3,
			DuplicateRows:  15,
			MissingAgeRate: 0.05,
			DropoutRate:    0.03,
			MissedExamRate: 0.02,
		},
		Rules: DefaultRules(),
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}

// DefaultRules returns the authoritative business thresholds.
func DefaultRules() Rules {
	return Rules{
		DropoutAttendanceCutoff: 35,
		GradeDropLimit:          10,
		AttendanceFloor:         75,
		FinalGradeFloor:         65,
		OutlierStdDevs:          2,
	}
}
