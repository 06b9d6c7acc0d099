package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected valid config, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "VERBOSE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "Level") {
		t.Errorf("Expected error mentioning Level, got: %v", err)
	}
}

func TestValidate_InvalidStoreType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Store.Type = "postgres"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown store type")
	}
}

func TestValidate_BadgerRequiresDBPath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Store.Type = "badger"
	cfg.Store.Badger["db_path"] = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing db_path")
	}
	if !strings.Contains(err.Error(), "db_path") {
		t.Errorf("Expected error mentioning db_path, got: %v", err)
	}
}

func TestValidate_FilesystemAttachmentsRequirePath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Attachments.Type = "filesystem"
	cfg.Attachments.Filesystem["path"] = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for missing attachments path")
	}
}

func TestValidate_S3AttachmentsRequireBucketAndRegion(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Attachments.Type = "s3"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing S3 bucket")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("Expected error mentioning bucket, got: %v", err)
	}

	cfg.Attachments.S3["bucket"] = "wiki-attachments"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing S3 region")
	}
	if !strings.Contains(err.Error(), "region") {
		t.Errorf("Expected error mentioning region, got: %v", err)
	}

	cfg.Attachments.S3["region"] = "us-east-1"
	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected valid S3 config, got: %v", err)
	}
}

func TestValidate_NegativeShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.ShutdownTimeout = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for negative shutdown timeout")
	}
}
