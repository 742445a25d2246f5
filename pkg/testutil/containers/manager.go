//go:build integration

package containers

import (
	"sync"
	"testing"
)

// Manager shares containers across test suites so each backend starts at
// most one container per test run.
type Manager struct {
	redisOnce sync.Once
	redis     *RedisContainer

	postgresOnce sync.Once
	postgres     *PostgresContainer

	mongoOnce sync.Once
	mongo     *MongoContainer
}

var manager = &Manager{}

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	return manager
}

// GetRedis returns the shared Redis container, starting it on first use.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.redisOnce.Do(func() {
		m.redis = NewRedisContainer(t)
	})
	if m.redis == nil {
		t.Fatal("redis container failed to start in an earlier suite")
	}
	return m.redis
}

// GetPostgres returns the shared Postgres container, starting it on
// first use.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.postgresOnce.Do(func() {
		m.postgres = NewPostgresContainer(t)
	})
	if m.postgres == nil {
		t.Fatal("postgres container failed to start in an earlier suite")
	}
	return m.postgres
}

// GetMongo returns the shared MongoDB container, starting it on first use.
func (m *Manager) GetMongo(t *testing.T) *MongoContainer {
	t.Helper()
	m.mongoOnce.Do(func() {
		m.mongo = NewMongoContainer(t)
	})
	if m.mongo == nil {
		t.Fatal("mongo container failed to start in an earlier suite")
	}
	return m.mongo
}
