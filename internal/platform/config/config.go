package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Email     EmailConfig     `yaml:"email"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// LoggingConfig はログ出力に関する設定です。
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EmailConfig は登録完了メールの SMTP 設定です。Enabled が false の場合は送信しません。
type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Sender   string `yaml:"sender"`
	Password string `yaml:"password"`
}

// ReconcileConfig は名寄せ時のセンチネル既定値と選択肢マスタを保持します。
// 自己登録で提供されない項目はここで定義された値で補完されます。
type ReconcileConfig struct {
	DefaultPosition       string   `yaml:"default_position"`
	DefaultDepartment     string   `yaml:"default_department"`
	DefaultAddress        string   `yaml:"default_address"`
	DefaultPhone          string   `yaml:"default_phone"`
	DefaultEducationLevel string   `yaml:"default_education_level"`
	DefaultProfile        string   `yaml:"default_profile"`
	Departments           []string `yaml:"departments"`
	Positions             []string `yaml:"positions"`
	EducationLevels       []string `yaml:"education_levels"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}

	c.Logging.applyDefaults()

	if err := c.Email.validate(); err != nil {
		return err
	}

	c.Reconcile.applyDefaults()

	return nil
}

func (l *LoggingConfig) applyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func (e *EmailConfig) validate() error {
	if !e.Enabled {
		return nil
	}
	if e.Host == "" {
		return fmt.Errorf("config: email.host must be set when email is enabled")
	}
	if e.Port == 0 {
		return fmt.Errorf("config: email.port must be set when email is enabled")
	}
	if e.Sender == "" {
		return fmt.Errorf("config: email.sender must be set when email is enabled")
	}
	return nil
}

func (r *ReconcileConfig) applyDefaults() {
	if r.DefaultPosition == "" {
		r.DefaultPosition = "Unassigned"
	}
	if r.DefaultDepartment == "" {
		r.DefaultDepartment = "General"
	}
	if r.DefaultAddress == "" {
		r.DefaultAddress = "Address pending"
	}
	if r.DefaultPhone == "" {
		r.DefaultPhone = "0000000"
	}
	if r.DefaultEducationLevel == "" {
		r.DefaultEducationLevel = "Not specified"
	}
	if r.DefaultProfile == "" {
		r.DefaultProfile = "Profile pending"
	}
	if len(r.Departments) == 0 {
		r.Departments = []string{
			"Logistics", "Marketing", "Human Resources", "Operations",
			"Sales", "Technology", "Accounting",
		}
	}
	if len(r.Positions) == 0 {
		r.Positions = []string{
			"Engineer", "Technical Support", "Analyst", "Coordinator",
			"Developer", "Assistant", "Administrator",
		}
	}
	if len(r.EducationLevels) == 0 {
		r.EducationLevels = []string{
			"High School", "Technician", "Technologist", "Professional",
			"Specialist", "Master",
		}
	}
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}
