package clickhouse

import (
	"net/url"
	"testing"
	"time"
)

func TestDSN(t *testing.T) {
	cfg := clientConfig{
		host:        "ch.internal",
		port:        9000,
		database:    "marketdata",
		user:        "writer",
		password:    "secret",
		dialTimeout: 5 * time.Second,
		readTimeout: 10 * time.Second,
		maxExecTime: 30 * time.Second,
	}

	u, err := url.Parse(dsn(cfg))
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	if u.Scheme != "clickhouse" {
		t.Errorf("scheme = %q", u.Scheme)
	}
	if u.Host != "ch.internal:9000" {
		t.Errorf("host = %q", u.Host)
	}
	if u.Path != "/marketdata" {
		t.Errorf("path = %q", u.Path)
	}
	if user := u.User.Username(); user != "writer" {
		t.Errorf("user = %q", user)
	}

	q := u.Query()
	if got := q.Get("dial_timeout"); got != "5s" {
		t.Errorf("dial_timeout = %q", got)
	}
	if got := q.Get("max_execution_time"); got != "30" {
		t.Errorf("max_execution_time = %q", got)
	}
	if q.Has("async_insert") {
		t.Error("async_insert set without WithAsyncInsert")
	}
}

func TestDSNHTTPAndAsync(t *testing.T) {
	cfg := clientConfig{
		host:         "ch.internal",
		port:         8123,
		database:     "marketdata",
		useHTTP:      true,
		asyncInsert:  true,
		waitForAsync: true,
	}

	u, err := url.Parse(dsn(cfg))
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	if u.Scheme != "clickhouse+http" {
		t.Errorf("scheme = %q", u.Scheme)
	}
	q := u.Query()
	if q.Get("async_insert") != "1" || q.Get("wait_for_async_insert") != "1" {
		t.Errorf("async params = %v", q)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatal("expected error without host")
	}
}
