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
	"time"

	"github.com/research-marketplace/account-deletion-service/view"
)

type Config struct {
	Database            DatabaseConfig
	S3Storage           S3Config
	IdentityProvider    IdentityProviderConfig
	Deletion            DeletionConfig
	Sweep               SweepConfig
	Security            SecurityConfig
	TechnicalParameters TechnicalParameters
	Logging             LoggingConfig
	Monitoring          MonitoringConfig
}

type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required"`
	Name     string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required" sensitive:"true"`
	PoolSize int    `validate:"gte=0"`
}

type S3Config struct {
	Enabled    bool
	Url        string `validate:"required_if=Enabled true"`
	Username   string `validate:"required_if=Enabled true"`
	Password   string `validate:"required_if=Enabled true" sensitive:"true"`
	Crt        string
	BucketName string `validate:"required_if=Enabled true"`
	Insecure   bool
}

type IdentityProviderConfig struct {
	Enabled    bool
	Region     string `validate:"required_if=Enabled true"`
	UserPoolId string `validate:"required_if=Enabled true"`
	Endpoint   string
}

type DeletionConfig struct {
	DelayDays          int `validate:"gt=0"`
	TestModeDelayHours int `validate:"gt=0"`
	FileListPageSize   int `validate:"gt=0,lte=1000"`
}

type SweepConfig struct {
	Enabled        bool
	Schedule       string `validate:"required_if=Enabled true"`
	TimeoutMinutes int    `validate:"gte=0"`
}

type SecurityConfig struct {
	SystemApiKeyHash string `validate:"required" sensitive:"true"`
	AllowedOrigins   []string
}

type TechnicalParameters struct {
	InstanceId    string
	ListenAddress string `validate:"required"`
}

type LoggingConfig struct {
	Level      string `validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File       string
	MaxSizeMb  int
	MaxBackups int
	MaxAgeDays int
}

type MonitoringConfig struct {
	Enabled bool
}

func (c DeletionConfig) Delay(testMode bool) time.Duration {
	if testMode {
		return time.Duration(c.TestModeDelayHours) * time.Hour
	}
	return time.Duration(c.DelayDays) * 24 * time.Hour
}

func (c Config) DbCredentials() *view.DbCredentials {
	return &view.DbCredentials{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Name,
		Username: c.Database.Username,
		Password: c.Database.Password,
		PoolSize: c.Database.PoolSize,
	}
}

func (c Config) MinioStorageCreds() *view.MinioStorageCreds {
	return &view.MinioStorageCreds{
		BucketName:      c.S3Storage.BucketName,
		IsActive:        c.S3Storage.Enabled,
		Endpoint:        c.S3Storage.Url,
		Crt:             c.S3Storage.Crt,
		AccessKeyId:     c.S3Storage.Username,
		SecretAccessKey: c.S3Storage.Password,
		Insecure:        c.S3Storage.Insecure,
	}
}
