// notifeed is a terminal client for the notifications service.
//
// Usage:
//
//	notifeed                         interactive feed
//	notifeed list [--type T] [--unread]
//	notifeed read <id>
//	notifeed read-all
//	notifeed generate
//	notifeed login [--url URL] [--token TOKEN]
//	notifeed logout
//	notifeed devserver
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
