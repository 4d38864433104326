package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSNIncludesFoundRowsAndTimeOptions(t *testing.T) {
	got := dsn("workflow", "s3cret", "db.local", "3306", "workflow")
	assert.Equal(t,
		"workflow:s3cret@tcp(db.local:3306)/workflow?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		got)
}

func TestDSNOmitsEmptyPassword(t *testing.T) {
	got := dsn("workflow", "", "localhost", "3306", "workflow")
	assert.Contains(t, got, "workflow@tcp(localhost:3306)/workflow?")
	assert.NotContains(t, got, ":@")
	assert.Contains(t, got, "clientFoundRows=true", "no-op updates must still count as matched rows")
}
