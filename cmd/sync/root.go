package sync

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ValentinKolb/tcpIO/clocksync"
	"github.com/ValentinKolb/tcpIO/cmd/util"
	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	SyncCmd = &cobra.Command{
		Use:   "sync",
		Short: "UDP clock synchronization",
		Long:  `Run the UDP clock synchronizer: 'sync serve' answers time requests, 'sync client' estimates the clock offset against a running server and prints it periodically.`,
	}

	serveCmd = &cobra.Command{
		Use:     "serve",
		Short:   "Answer clock sync requests",
		PreRunE: processConfig,
		RunE:    runServe,
	}

	clientCmd = &cobra.Command{
		Use:     "client",
		Short:   "Estimate the clock offset against a sync server",
		PreRunE: processConfig,
		RunE:    runClient,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitEnv)

	// add commands
	SyncCmd.AddCommand(serveCmd)
	SyncCmd.AddCommand(clientCmd)

	// add flags
	key := "endpoint"
	SyncCmd.PersistentFlags().String(key, "0.0.0.0:9053", util.WrapString("The UDP address to bind (serve) or to target (client)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	common.InitLoggers(viper.GetString("log-level"))

	srv, err := clocksync.CreateServer(viper.GetString("endpoint"))
	if err != nil {
		return err
	}

	// run until SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Close()
	return nil
}

func runClient(_ *cobra.Command, _ []string) error {
	common.InitLoggers(viper.GetString("log-level"))

	client, err := clocksync.CreateClient(viper.GetString("endpoint"))
	if err != nil {
		return err
	}
	defer client.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			return nil
		case <-ticker.C:
			fmt.Printf("offset: %v\n", client.Offset())
		}
	}
}
