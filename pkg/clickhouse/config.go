package clickhouse

import "time"

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	host     string
	port     int
	database string
	user     string
	password string

	maxOpen int
	maxIdle int

	dialTimeout time.Duration
	readTimeout time.Duration
	maxExecTime time.Duration

	useHTTP      bool
	asyncInsert  bool
	waitForAsync bool
}

// WithAddress sets the server host and port. Host is required.
func WithAddress(host string, port int) ClientOption {
	return func(c *clientConfig) {
		c.host = host
		c.port = port
	}
}

// WithDatabase sets the target database.
func WithDatabase(name string) ClientOption {
	return func(c *clientConfig) {
		c.database = name
	}
}

// WithCredentials sets username and password.
func WithCredentials(user, password string) ClientOption {
	return func(c *clientConfig) {
		c.user = user
		c.password = password
	}
}

// WithPool bounds the connection pool.
func WithPool(maxOpen, maxIdle int) ClientOption {
	return func(c *clientConfig) {
		c.maxOpen = maxOpen
		c.maxIdle = maxIdle
	}
}

// WithTimeouts sets the dial and read timeouts.
func WithTimeouts(dial, read time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.dialTimeout = dial
		c.readTimeout = read
	}
}

// WithMaxExecutionTime caps per-query execution time.
func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.maxExecTime = d
	}
}

// WithHTTP selects the HTTP transport instead of the native protocol.
func WithHTTP(useHTTP bool) ClientOption {
	return func(c *clientConfig) {
		c.useHTTP = useHTTP
	}
}

// WithAsyncInsert enables server-side async inserts; wait controls
// whether the insert returns before the buffer is flushed.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(c *clientConfig) {
		c.asyncInsert = enabled
		c.waitForAsync = wait
	}
}
