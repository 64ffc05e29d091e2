package store

import "context"

// Driver names accepted by Open.
const (
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver    string
	Path      string
	RedisAddr string
	RedisDB   int
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverBolt, "":
		return NewBolt(opts.Path)
	case DriverRedis:
		return DialRedis(ctx, opts.RedisAddr, opts.RedisDB)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, errUnknownDriver.Fmt(opts.Driver)
	}
}
