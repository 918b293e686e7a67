package testutil

import (
	"os"
	"testing"

	"resort/pkg/client"
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	BookingsURL  string
	CatalogURL   string
}

// NewTestEnv reads the running services from the environment and skips the
// test when TEST_SERVER_URL is not set.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	bookingsURL := os.Getenv("TEST_SERVER_URL")
	if bookingsURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration test")
	}

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		BookingsURL:  bookingsURL,
		CatalogURL:   getEnv("TEST_CATALOG_URL", bookingsURL),
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *client.CatalogClient, *client.BookingClient) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	for _, url := range []string{e.CatalogURL, e.BookingsURL} {
		if err := client.NewHttpClient(url).WaitForHealthy(DefaultHealthCheckTimeout); err != nil {
			t.Fatalf("%s: %v", url, err)
		}
	}

	return mongo, client.NewCatalogClient(e.CatalogURL), client.NewBookingClient(e.BookingsURL)
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const (
	DefaultHealthCheckTimeout = 3 * ConnectionTimeout
)
