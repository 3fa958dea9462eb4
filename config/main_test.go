package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain refuses to run the config tests outside GO_ENV=test. They call
// ConnectDatabase, which would otherwise pick up the developer's .env and the
// cafe database it points at.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr, "\n"+
			"cafe-orders: refusing to run config tests with GO_ENV=%q\n"+
			"  they load .env files and open DATABASE_URL, which must not be\n"+
			"  the orders database of a running cafe.\n\n"+
			"  Run them with:\n"+
			"    GO_ENV=test go test ./...\n\n",
			env)
		os.Exit(1)
	}

	os.Exit(m.Run())
}
