package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

// Tiny operational CLI against a running instance. State lives only in the
// server process, so inspection goes over HTTP rather than a database.
func main() {
	baseURL := os.Getenv("WHISPERGO_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command>")
		fmt.Println("Commands: dump, health")
		os.Exit(1)
	}

	var path string
	switch os.Args[1] {
	case "dump":
		path = "/dump"
	case "health":
		path = "/healthz"
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	resp, err := http.Get(baseURL + path)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("reading response failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("server returned %s", resp.Status)
	}
	fmt.Print(string(body))
}
