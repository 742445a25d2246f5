//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoContainer wraps a testcontainers MongoDB instance.
type MongoContainer struct {
	Container testcontainers.Container
	URI       string
	Client    *mongodriver.Client
}

// NewMongoContainer starts a new MongoDB container and returns a connected
// client. The container is shared via Manager; Ryuk handles teardown after
// the run.
func NewMongoContainer(t *testing.T) *MongoContainer {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start mongo container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get mongo host: %v", err)
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get mongo port: %v", err)
	}

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping mongo: %v", err)
	}

	return &MongoContainer{
		Container: container,
		URI:       uri,
		Client:    client,
	}
}

// DropDatabase removes the named database.
// Use between tests to ensure isolation.
func (m *MongoContainer) DropDatabase(ctx context.Context, name string) error {
	return m.Client.Database(name).Drop(ctx)
}
