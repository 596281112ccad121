package service

import (
	"os"
	"testing"

	"github.com/ayo6706/lottery-wallet/internal/testutil/dblock"
	"github.com/joho/godotenv"
)

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env")
	if url := os.Getenv("DATABASE_URL"); url == "" || url == "memory" {
		os.Exit(m.Run())
	}
	release := dblock.Acquire()
	code := m.Run()
	release()
	os.Exit(code)
}
