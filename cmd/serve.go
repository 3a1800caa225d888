package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seashell-sh/seashell/core"
)

// serveCmd exposes the interpreter over SSH on a local port.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interpreter over SSH on a local port.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		log.Println("Initializing server...")

		configuration, err := loadConfig()
		if err != nil {
			return err
		}
		if err := configuration.Validate(); err != nil {
			return err
		}

		var logDest io.Writer = cmd.ErrOrStderr()
		if fd, err := configuration.OpenAppLog(); err == nil {
			defer fd.Close()
			logDest = fd
		}

		server, err := core.NewServer(configuration, logDest)
		if err != nil {
			return err
		}

		go func() {
			if err := server.ListenAndServe(); err != nil {
				log.Fatal(err)
			}
		}()
		log.Printf("Listening on port %d", configuration.SSH.Port)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		sig := <-sigs
		log.Printf("Got signal %q, terminating...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server shutdown failed: %s", err)
		}
		log.Print("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
