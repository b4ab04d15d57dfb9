package postgres

import (
	"net/url"
	"testing"
)

func TestConnURL(t *testing.T) {
	cfg := &PoolConfig{
		Host:         "pg.internal",
		Port:         6432,
		User:         "app",
		Password:     "p@ss:word",
		Database:     "taskboard",
		PoolMaxConns: 7,
	}

	u := connURL(cfg, "disable")
	if u.Scheme != "postgres" || u.Host != "pg.internal:6432" || u.Path != "/taskboard" {
		t.Fatalf("connURL() = %s", u)
	}
	if pw, _ := u.User.Password(); pw != "p@ss:word" {
		t.Errorf("password = %q, want it preserved", pw)
	}
	if got := u.Query().Get("sslmode"); got != "disable" {
		t.Errorf("sslmode = %q, want disable", got)
	}

	parsed, err := url.Parse(poolConnString(cfg, ""))
	if err != nil {
		t.Fatalf("poolConnString() not a URL: %v", err)
	}
	if got := parsed.Query().Get("pool_max_conns"); got != "7" {
		t.Errorf("pool_max_conns = %q, want 7", got)
	}
	if parsed.Query().Has("sslmode") {
		t.Error("empty sslmode must not be forwarded")
	}
}
