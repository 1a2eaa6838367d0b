//go:build ignore

// Demo users API for trying the feature files under demo/ by hand:
//
//	go run scripts/demo-server.go -addr :8080
//	readytest --config demo/readytest.yaml run
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/roshangit23/ReadyTestAPI/internal/demoapi"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	api := demoapi.New(demoapi.Credentials{Email: "qa@example.com", Password: "secret"}, "demo-token", "Alice", "Bob")

	fmt.Printf("Starting demo server on http://localhost%s\n", *addr)
	fmt.Println("Endpoints:")
	fmt.Println("  - GET    /health")
	fmt.Println("  - POST   /login")
	fmt.Println("  - GET    /users")
	fmt.Println("  - POST   /users")
	fmt.Println("  - GET    /users/{id}")
	fmt.Println("  - DELETE /users/{id}")
	fmt.Println("  - ANY    /echo")
	fmt.Println()

	if err := http.ListenAndServe(*addr, api.Handler()); err != nil {
		log.Fatal(err)
	}
}
