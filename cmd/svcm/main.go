// Command svcm supervises configured systemd units: it enforces their daily
// operational windows, performs scheduled restarts with dependency handling
// and gates workday-only units on the trading calendar.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loykin/svcm"
	"github.com/loykin/svcm/internal/config"
	"github.com/loykin/svcm/internal/server"
	"github.com/loykin/svcm/internal/supervisor"
)

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "svcm",
		Short:         "Daily scheduler and supervisor for systemd units",
		Version:       svcm.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to the configuration file")
	return root
}

func run(configPath string) error {
	sup := supervisor.New(supervisor.Options{
		ConfigPath: configPath,
		Version:    svcm.Version,
	})
	if err := sup.Prepare(); err != nil {
		return err
	}
	defer sup.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGABRT)
	go func() {
		<-sig
		sup.Exit()
	}()

	if addr := sup.Config().Listen; addr != "" {
		admin := server.NewServer(addr, sup)
		defer func() { _ = admin.Close() }()
	}

	return sup.Block()
}
