// Command svcmctl is a diagnostic companion to svcm: it issues a single
// start, stop, restart or status call against one systemd unit and exits.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loykin/svcm"
	"github.com/loykin/svcm/internal/sysd"
)

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "svcmctl <start|stop|restart|status> <unit>",
		Short:         "Issue one transition or status query against a systemd unit",
		Version:       svcm.Version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1])
		},
	}
	return root
}

func run(cmd *cobra.Command, task, name string) error {
	ctx := context.Background()
	conn, err := sysd.NewDBus(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	unit := sysd.NormalizeName(name)
	switch task {
	case "start":
		return conn.Start(unit)
	case "stop":
		return conn.Stop(unit)
	case "restart":
		return conn.Restart(unit)
	case "status":
		state, err := conn.Status(unit)
		if err != nil {
			return err
		}
		cmd.Printf("%s %s\n", unit, state)
		return nil
	default:
		return fmt.Errorf("unknown task %q (want start, stop, restart or status)", task)
	}
}
