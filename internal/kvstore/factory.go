package kvstore

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"photojournal/internal/database"
	"photojournal/internal/storage"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendMinIO    = "minio"
	BackendMemory   = "memory"
)

// objectFolder is where the minio backend keeps its blobs.
const objectFolder = "kv"

// Backends carries the already-opened clients a backend may need.
type Backends struct {
	SQL     *sql.DB
	Redis   redis.UniversalClient
	Objects storage.Storage
}

// New builds the Store named by backend, namespaced by prefix.
func New(backend, prefix string, b Backends) (Store, error) {
	var (
		store Store
		err   error
	)
	switch backend {
	case BackendPostgres, BackendSQLite:
		if b.SQL == nil {
			return nil, fmt.Errorf("%s backend requires a database connection", backend)
		}
		store, err = NewSQL(b.SQL, database.Dialect(backend))
		if err != nil {
			return nil, err
		}
	case BackendRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("redis backend requires a redis client")
		}
		store = NewRedis(b.Redis)
	case BackendMinIO:
		if b.Objects == nil {
			return nil, fmt.Errorf("minio backend requires object storage")
		}
		store = NewObject(b.Objects, objectFolder)
	case BackendMemory:
		store = NewMemory()
	default:
		return nil, fmt.Errorf("unsupported kv backend: %s", backend)
	}
	return WithPrefix(prefix, store), nil
}
