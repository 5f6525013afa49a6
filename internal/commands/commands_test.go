package commands

import (
	"reflect"
	"sort"
	"testing"
)

func TestNew_RegistersSubcommands(t *testing.T) {
	var names []string
	for _, c := range New().Commands() {
		names = append(names, c.Name())
	}
	sort.Strings(names)

	want := []string{"list", "login", "logout", "sync"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("subcommands = %v, want %v", names, want)
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	ro := &rootOptions{
		ConfigPath:  t.TempDir() + "/missing.yaml",
		MetricsAddr: ":9100",
		LogLevel:    "debug",
	}

	cfg, err := ro.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Metrics.Addr != ":9100" || cfg.Log.Level != "debug" {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Metrics, cfg.Log)
	}
}
