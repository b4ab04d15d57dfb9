package redis

import "testing"

func TestClientOption(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RedisConfig
		wantErr bool
		check   func(t *testing.T, cfg RedisConfig)
	}{
		{name: "empty url", cfg: RedisConfig{}, wantErr: true},
		{name: "plaintext with RequireTLS", cfg: RedisConfig{URL: "redis://localhost:6379/0", RequireTLS: true}, wantErr: true},
		{name: "plaintext", cfg: RedisConfig{URL: "redis://:pw@localhost:6379/0", ClientName: "taskboard"}},
		{name: "tls skip verify", cfg: RedisConfig{URL: "rediss://:pw@cache.example.com:6379/0", SkipTLSVerify: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := clientOption(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("clientOption() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("clientOption() error = %v", err)
			}
			if opt.ClientName != tt.cfg.ClientName {
				t.Errorf("ClientName = %q, want %q", opt.ClientName, tt.cfg.ClientName)
			}
			if len(opt.InitAddress) == 0 {
				t.Error("InitAddress is empty")
			}
			if tt.cfg.SkipTLSVerify && (opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify) {
				t.Error("SkipTLSVerify not applied")
			}
		})
	}
}
