package kafka

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kafka.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `schema_version: v1
brokers: [localhost:9092]
topic: events
encoding: bytearray
parameter:
  client.id: envelope-test
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StartFrom != "newest" {
		t.Fatalf("want default start_from newest, got %q", cfg.StartFrom)
	}
	if cfg.BatchMilliseconds != 5000 {
		t.Fatalf("want default batch_milliseconds 5000, got %d", cfg.BatchMilliseconds)
	}
	if cfg.Parameters["client.id"] != "envelope-test" {
		t.Fatalf("want passthrough parameter, got %v", cfg.Parameters)
	}
}

func TestLoadConfig_InvalidEncoding(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `brokers: [localhost:9092]
topic: events
encoding: utf16
`))
	if err == nil {
		t.Fatal("want error for invalid encoding")
	}
}

func TestLoadConfig_ManageWithoutGroupID(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `brokers: [localhost:9092]
topic: events
encoding: string
offsets:
  manage: true
`))
	if err == nil {
		t.Fatal("want error for offsets.manage without group_id")
	}
}

func TestLoadConfig_InvalidSchemaVersion(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `schema_version: v999
brokers: [localhost:9092]
topic: events
encoding: string
`))
	if err == nil {
		t.Fatal("want error for unsupported schema_version")
	}
}

func TestLoadConfig_WindowDefaultsToBatchInterval(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `brokers: [localhost:9092]
topic: events
encoding: string
batch_milliseconds: 2000
window:
  enabled: true
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Window.Milliseconds != 2000 {
		t.Fatalf("want window widened to batch interval, got %d", cfg.Window.Milliseconds)
	}
}
