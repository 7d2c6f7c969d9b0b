// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "RESEARCH"

// LoadConfig reads the optional config file at path, overlays environment variables
// (RESEARCH_DATABASE_HOST, RESEARCH_SWEEP_SCHEDULE, ...) and validates the result.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to load .env file: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if cfg.TechnicalParameters.InstanceId == "" {
		cfg.TechnicalParameters.InstanceId, _ = os.Hostname()
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.poolSize", 20)

	v.SetDefault("s3Storage.enabled", false)
	v.SetDefault("s3Storage.url", "")
	v.SetDefault("s3Storage.username", "")
	v.SetDefault("s3Storage.password", "")
	v.SetDefault("s3Storage.crt", "")
	v.SetDefault("s3Storage.bucketName", "")
	v.SetDefault("s3Storage.insecure", false)

	v.SetDefault("identityProvider.enabled", false)
	v.SetDefault("identityProvider.region", "")
	v.SetDefault("identityProvider.userPoolId", "")
	v.SetDefault("identityProvider.endpoint", "")

	v.SetDefault("deletion.delayDays", 90)
	v.SetDefault("deletion.testModeDelayHours", 24)
	v.SetDefault("deletion.fileListPageSize", 1000)

	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.schedule", "*/15 * * * *")
	v.SetDefault("sweep.timeoutMinutes", 0)

	v.SetDefault("security.systemApiKeyHash", "")
	v.SetDefault("security.allowedOrigins", []string{})

	v.SetDefault("technicalParameters.instanceId", "")
	v.SetDefault("technicalParameters.listenAddress", ":8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.maxSizeMb", 100)
	v.SetDefault("logging.maxBackups", 5)
	v.SetDefault("logging.maxAgeDays", 30)

	v.SetDefault("monitoring.enabled", true)
}

func validateConfig(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
