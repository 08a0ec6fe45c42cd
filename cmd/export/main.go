package main

import (
	"fmt"
	"log"
	"os"

	"github.com/privmatch/zkmatch/circuits/kidney"
	"github.com/privmatch/zkmatch/circuits/matching"
	"github.com/privmatch/zkmatch/circuits/matchproof"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/export <circuit>")
		fmt.Println()
		fmt.Println("Available circuits: matching, kidney, matchproof")
		fmt.Println()
		fmt.Println("Keys must exist in the current directory (run `go run ./cmd/compile <circuit> dev` first).")
		os.Exit(1)
	}

	circuit := os.Args[1]
	var (
		jsonOut []byte
		err     error
	)
	switch circuit {
	case "matching":
		jsonOut, err = matching.ExportProofFixture(".")
	case "kidney":
		jsonOut, err = kidney.ExportProofFixture(".")
	case "matchproof":
		jsonOut, err = matchproof.ExportProofFixture(".")
	default:
		fmt.Fprintf(os.Stderr, "Unknown circuit: %s\n", circuit)
		fmt.Fprintln(os.Stderr, "Available circuits: matching, kidney, matchproof")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("export proof fixture: %v", err)
	}

	outFile := circuit + "_proof_fixture.json"
	if err := os.WriteFile(outFile, jsonOut, 0644); err != nil {
		log.Fatalf("write fixture file: %v", err)
	}
	fmt.Printf("\nFixture written to %s\n", outFile)
}
