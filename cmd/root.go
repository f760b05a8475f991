package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/tcpIO/cmd/send"
	"github.com/ValentinKolb/tcpIO/cmd/serve"
	synccmd "github.com/ValentinKolb/tcpIO/cmd/sync"
	"github.com/ValentinKolb/tcpIO/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.2"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tcpio",
		Short: "concurrent TCP connection toolkit",
		Long: fmt.Sprintf(`tcpIO (v%s)

A concurrent TCP connection and server library written in Go.
Every connection runs its own background loop, the application
only ever touches non-blocking queue operations. This CLI hosts
a line echo server, a matching client and a UDP clock
synchronizer built on the library.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tcpIO",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tcpIO v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(send.SendCmd)
	RootCmd.AddCommand(synccmd.SyncCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
