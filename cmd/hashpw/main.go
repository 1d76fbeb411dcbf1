// Command hashpw prints a bcrypt hash for ADMIN_PASSWORD_HASH. The password is
// read from the first line of stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"storefront/internal/service/auth"
)

func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "hashpw: expected a password on stdin")
		os.Exit(2)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		fmt.Fprintln(os.Stderr, "hashpw: empty password")
		os.Exit(2)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
