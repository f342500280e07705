package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a ledger workspace.
const FileName = "ledgerbook.yaml"

// Config represents the top-level ledgerbook.yaml configuration.
type Config struct {
	Workspace    WorkspaceConfig   `yaml:"workspace"`
	Bookkeeping  BookkeepingConfig `yaml:"bookkeeping"`
	Logging      LoggingConfig     `yaml:"logging"`
	Git          GitConfig         `yaml:"git"`
	BankAccounts []BankAccount     `yaml:"bank_accounts,omitempty" validate:"dive"`
}

// WorkspaceConfig holds presentation and calendar settings.
type WorkspaceConfig struct {
	OperatingCurrency string `yaml:"operating_currency" validate:"required,len=3,uppercase"`
	Locale            string `yaml:"locale" validate:"required,locale"`
	FiscalYearStart   string `yaml:"fiscal_year_start" validate:"required,monthday"` // "MM-DD"
	CompactAmounts    bool   `yaml:"compact_amounts"`
}

// BookkeepingConfig controls transaction validation.
type BookkeepingConfig struct {
	Tolerance    string            `yaml:"tolerance" validate:"required,amount"`
	Tolerances   map[string]string `yaml:"tolerances,omitempty" validate:"dive,keys,required,endkeys,amount"`
	DefaultFlag  string            `yaml:"default_flag" validate:"oneof=* !"`
	LockedBefore int               `yaml:"locked_before" validate:"gte=0"` // fiscal year; 0 disables the lock
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// GitConfig controls version control of the workspace.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name" validate:"required_if=AutoCommit true"`
	AuthorEmail string `yaml:"author_email" validate:"omitempty,email"`
}

// BankAccount maps a bank export to a ledger account.
type BankAccount struct {
	Name     string `yaml:"name" validate:"required"`
	Format   string `yaml:"format" validate:"required,oneof=chase mapped"`
	LastFour string `yaml:"last_four,omitempty"`
	Account  string `yaml:"account" validate:"required"`
}

// Load reads a ledgerbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			OperatingCurrency: "INR",
			Locale:            "en-IN",
			FiscalYearStart:   "04-01",
			CompactAmounts:    true,
		},
		Bookkeeping: BookkeepingConfig{
			Tolerance:   "0.00001",
			DefaultFlag: "*",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Git: GitConfig{
			AuthorName:  "ledgerbook",
			AuthorEmail: "ledgerbook@ledgerbook.local",
		},
	}
}
