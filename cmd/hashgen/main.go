// Command hashgen 生成 ADMIN_PASSWORD_HASH 使用的 bcrypt 哈希
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("user", "admin", "admin username")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	password := flag.Arg(0)
	if password == "" {
		fmt.Fprintln(os.Stderr, "usage: hashgen [-user name] [-cost n] <password>")
		os.Exit(2)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Printf("ADMIN_USERNAME=%s\n", *username)
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", string(hashedPassword))
}
