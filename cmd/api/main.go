package main

import (
	"fmt"
	"os"

	"github.com/ayo6706/lottery-wallet/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "lottery-wallet: %v\n", err)
		os.Exit(1)
	}
}
