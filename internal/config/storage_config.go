package config

import "time"

const (
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetStorageTTL() time.Duration
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStorageDriver() string {
	return GetEnv("STORAGE_DRIVER", StorageDriverMemory)
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "127.0.0.1:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvAsInt("REDIS_DB", 0)
}

// GetStorageTTL is how long an idle browser namespace is kept in redis. Zero keeps it forever.
func (Storage) GetStorageTTL() time.Duration {
	return time.Duration(GetEnvAsInt("STORAGE_TTL_HOURS", 24*30)) * time.Hour
}
