package config

import "time"

// DBPool tunes the MySQL connection pool.  The defaults suit a single
// instance absorbing bursts of purchase traffic; every value can be
// overridden per environment.
type DBPool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// LoadDBPool reads the pool tunables from the environment.
//
//	DB_MAX_OPEN_CONNS    – open connection cap (default 25)
//	DB_MAX_IDLE_CONNS    – idle connections kept around (default 25)
//	DB_CONN_MAX_LIFETIME – recycle age for a connection (default 30m)
//	DB_PING_TIMEOUT      – bound on the startup ping (default 5s)
func LoadDBPool() DBPool {
	pool := DBPool{
		MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		PingTimeout:     envDur("DB_PING_TIMEOUT", 5*time.Second),
	}
	if pool.MaxOpenConns < 1 {
		pool.MaxOpenConns = 1
	}
	// Idle connections beyond the open cap can never exist.
	if pool.MaxIdleConns > pool.MaxOpenConns {
		pool.MaxIdleConns = pool.MaxOpenConns
	}
	if pool.PingTimeout <= 0 {
		pool.PingTimeout = 5 * time.Second
	}
	return pool
}
