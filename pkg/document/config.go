/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package document

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/redline/internal/validation"
	"github.com/yorkie-team/redline/pkg/errors"
	"github.com/yorkie-team/redline/pkg/revision"
)

// Below are the values of the default values of the document config.
const (
	DefaultAuthorID   = "anonymous"
	DefaultAuthorName = "Anonymous"

	DefaultTrackingEnabled = false
	DefaultShowDeletions   = false

	DefaultSubscriptionBufferSize = 64

	DefaultLogLevel = "info"
)

var (
	// ErrInvalidConfig is returned when the config is not valid.
	ErrInvalidConfig = errors.InvalidArgument("invalid document config").WithCode("ErrInvalidConfig")
)

// TrackingConfig is the configuration of the interception layer.
type TrackingConfig struct {
	// Enabled is whether edits are tracked when the document is created.
	Enabled bool `yaml:"Enabled"`

	// ShowDeletions is whether deletion spans are displayed.
	ShowDeletions bool `yaml:"ShowDeletions"`
}

// LedgerConfig is the configuration of the revision ledger.
type LedgerConfig struct {
	// SubscriptionBufferSize is the default buffer of ledger subscriptions.
	SubscriptionBufferSize int `yaml:"SubscriptionBufferSize" validate:"min=0"`
}

// LoggingConfig is the configuration of the logger.
type LoggingConfig struct {
	Level string `yaml:"Level" validate:"oneof=debug info warn error"`
}

// Config is the configuration for creating a Document.
type Config struct {
	Author   revision.Author `yaml:"Author"`
	Tracking *TrackingConfig `yaml:"Tracking"`
	Ledger   *LedgerConfig   `yaml:"Ledger"`
	Logging  *LoggingConfig  `yaml:"Logging"`

	// Debug turns invariant violations into panics instead of repairs.
	Debug bool `yaml:"Debug"`
}

// NewConfig returns a Config struct that contains reasonable defaults.
func NewConfig() *Config {
	conf := &Config{}
	conf.ensureDefaultValue()
	return conf
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.Author.Validate(); err != nil {
		return err
	}

	if err := validation.ValidateStruct(c.Ledger); err != nil {
		return fmt.Errorf("ledger: %v: %w", err, ErrInvalidConfig)
	}

	if err := validation.ValidateStruct(c.Logging); err != nil {
		return fmt.Errorf("logging: %v: %w", err, ErrInvalidConfig)
	}

	return nil
}

// ensureDefaultValue sets default values for the fields which are not set.
func (c *Config) ensureDefaultValue() {
	if c.Author.ID == "" {
		c.Author.ID = DefaultAuthorID
	}
	if c.Author.Name == "" {
		c.Author.Name = DefaultAuthorName
	}

	if c.Tracking == nil {
		c.Tracking = &TrackingConfig{
			Enabled:       DefaultTrackingEnabled,
			ShowDeletions: DefaultShowDeletions,
		}
	}

	if c.Ledger == nil {
		c.Ledger = &LedgerConfig{}
	}
	if c.Ledger.SubscriptionBufferSize == 0 {
		c.Ledger.SubscriptionBufferSize = DefaultSubscriptionBufferSize
	}

	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
