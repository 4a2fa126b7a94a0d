package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "overlay-stream",
		Usage: "REST API for live stream overlays and RTSP source settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before reading the environment",
				Value: ".env",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP listen port, overrides PORT",
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: runServe,
			},
			{
				Name:   "check-db",
				Usage:  "check the MongoDB connection with a write/read/delete probe",
				Action: runCheckDB,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
