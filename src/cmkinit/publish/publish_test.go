package publish

import "testing"

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error when no bucket is configured")
	}
}

func TestConfig_APIEndpoint(t *testing.T) {
	cases := map[Config]string{
		{}:                                "",
		{Endpoint: "s3.example.com"}:      "https://s3.example.com",
		{Endpoint: "https://minio.local"}: "https://minio.local",
	}
	for cfg, want := range cases {
		if got := cfg.apiEndpoint(); got != want {
			t.Errorf("Config(%+v).apiEndpoint() = %q, want %q", cfg, got, want)
		}
	}
}
