package buildCFG

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) *ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, falling back to 8080")
	}
	return &ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	host := cfg.GetString("database.host")
	port := cfg.GetInt("database.port")
	user := cfg.GetString("database.user")
	password := cfg.GetString("database.password")
	name := cfg.GetString("database.name")
	sslMode := cfg.GetString("database.sslmode")

	if host == "" || user == "" || name == "" {
		return "", nil, nil, fmt.Errorf("database config incomplete: host, user and name are required")
	}
	if port == 0 {
		port = 5432
	}
	if sslMode == "" {
		sslMode = "disable"
	}

	masterDSN := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, password, host, port, name, sslMode,
	)

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("database.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: time.Duration(cfg.GetInt("database.conn_max_lifetime_seconds")) * time.Second,
	}

	log.Info().Str("host", host).Str("db", name).Msg("database config built")
	return masterDSN, nil, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (*RabbitConfig, error) {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		return nil, fmt.Errorf("rabbit.url is required")
	}
	exchange := cfg.GetString("rabbit.exchange")
	if exchange == "" {
		exchange = "campus360.notifications"
	}
	queue := cfg.GetString("rabbit.queue")
	if queue == "" {
		queue = "campus360.notifications.dispatch"
	}

	log.Info().Str("exchange", exchange).Str("queue", queue).Msg("rabbit config built")
	return &RabbitConfig{Url: url, Exchange: exchange, Queue: queue}, nil
}

// BuildSMTPConfig reads the mail relay settings. An empty host is allowed and
// switches the mailer into log-only mode.
func BuildSMTPConfig(cfg *config.Config) *SMTPConfig {
	port := cfg.GetInt("smtp.port")
	if port == 0 {
		port = 587
	}
	return &SMTPConfig{
		Host:     cfg.GetString("smtp.host"),
		Port:     port,
		From:     cfg.GetString("smtp.from"),
		Password: cfg.GetString("smtp.password"),
	}
}
