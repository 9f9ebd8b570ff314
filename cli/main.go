package main

import (
	"Hauler/pkg/engine"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var (
	sourcePath string
	destPath   string
	resume     bool
	jsonOutput bool
	serveMode  bool
	servePort  int
)

func init() {
	flag.StringVar(&sourcePath, "source", "", "Source file or directory to copy")
	flag.StringVar(&destPath, "dest", "", "Destination directory")
	flag.BoolVar(&resume, "resume", false, "Resume a previous copy instead of starting over")
	flag.BoolVar(&jsonOutput, "json", false, "Output machine-readable JSON (one event per line)")
	flag.BoolVar(&serveMode, "serve", false, "Run as an HTTP API daemon instead of a one-shot copy")
	flag.IntVar(&servePort, "port", 8791, "Port for the HTTP API daemon (with -serve)")
}

func main() {
	flag.Parse()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if !jsonOutput {
			fmt.Println("\nShutdown signal received. Finishing current chunk...")
		}
		cancel()
	}()

	if serveMode {
		os.Exit(runServe(ctx, servePort))
	}

	if sourcePath == "" || destPath == "" {
		if jsonOutput {
			emitJSONError("source and dest are required")
		} else {
			fmt.Fprintf(os.Stderr, "Usage: %s -source <src> -dest <dst> [-resume] [-json]\n", os.Args[0])
			flag.PrintDefaults()
		}
		os.Exit(1)
	}

	// Create reporter based on output mode
	var reporter engine.ProgressReporter
	var jsonReporter *JSONReporter
	if jsonOutput {
		jsonReporter = NewJSONReporter()
		reporter = jsonReporter
		jsonReporter.emit("start", map[string]interface{}{
			"source": sourcePath,
			"dest":   destPath,
			"resume": resume,
		})
	} else {
		reporter = NewConsoleReporter()
		fmt.Printf("Hauler - Starting copy\n")
		fmt.Printf("Source: %s\n", sourcePath)
		fmt.Printf("Dest: %s\n", destPath)
		if resume {
			fmt.Println("Resume: on")
		}
	}

	e := engine.New(engine.Config{
		SourcePath: sourcePath,
		DestRoot:   destPath,
		Resume:     resume,
		Reporter:   reporter,
	})

	result := e.Run(ctx)

	if jsonOutput {
		jsonReporter.EmitComplete(result)
	} else {
		fmt.Printf("\n%s\n", result.Message)
		if result.Failures > 0 {
			fmt.Printf("Error log: %s\n", result.ErrorLog)
		}
	}

	os.Exit(exitCode(result.Outcome))
}

func exitCode(outcome engine.Outcome) int {
	switch outcome {
	case engine.OutcomeCompleted:
		return 0
	case engine.OutcomeCompletedWithErrors:
		return 2
	case engine.OutcomeCancelled:
		return 130
	default:
		return 1
	}
}

// emitJSONError outputs an error in JSON format
func emitJSONError(message string) {
	event := map[string]interface{}{
		"type": "error",
		"data": map[string]string{"message": message},
	}
	json.NewEncoder(os.Stderr).Encode(event)
}
