package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Database struct {
	Username string
	Password string
	Host     string
	Port     uint16
	DBName   string
	SSLMode  string
}

func loadPassword() (string, error) {
	password, ok := os.LookupEnv("POSTGRES_PASSWORD")
	if ok {
		return password, nil
	}

	passwordFile, ok := os.LookupEnv("POSTGRES_PASSWORD_FILE")
	if !ok {
		return "", fmt.Errorf("no POSTGRES_PASSWORD or POSTGRES_PASSWORD_FILE env variable set")
	}

	data, err := os.ReadFile(passwordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

func NewDatabase() (*Database, error) {
	vars := map[string]string{
		"POSTGRES_USER":    "",
		"POSTGRES_HOST":    "",
		"POSTGRES_PORT":    "",
		"POSTGRES_DB":      "",
		"POSTGRES_SSLMODE": "",
	}
	for name := range vars {
		value, ok := os.LookupEnv(name)
		if !ok {
			return nil, fmt.Errorf("no %s env variable set", name)
		}
		vars[name] = value
	}

	password, err := loadPassword()
	if err != nil {
		return nil, fmt.Errorf("unable to load password: %w", err)
	}

	port, err := strconv.ParseUint(vars["POSTGRES_PORT"], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("unable to parse POSTGRES_PORT: %w", err)
	}

	config := &Database{
		Username: vars["POSTGRES_USER"],
		Password: password,
		Host:     vars["POSTGRES_HOST"],
		Port:     uint16(port),
		DBName:   vars["POSTGRES_DB"],
		SSLMode:  vars["POSTGRES_SSLMODE"],
	}

	return config, nil
}

func (c Database) URL() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// DbURL prefers DATABASE_URL and falls back to the POSTGRES_* variables.
func DbURL() (string, error) {
	dbURL, ok := os.LookupEnv("DATABASE_URL")
	if ok {
		return dbURL, nil
	}

	cfg, err := NewDatabase()
	if err != nil {
		return "", fmt.Errorf("no DATABASE_URL set; %w", err)
	}
	return cfg.URL(), nil
}

func NewPgxpoolConfig() (*pgxpool.Config, error) {
	dbURL, err := DbURL()
	if err != nil {
		return nil, err
	}
	return pgxpool.ParseConfig(dbURL)
}
