package send

import (
	"fmt"
	"strings"
	"time"

	"github.com/ValentinKolb/tcpIO/cmd/util"
	"github.com/ValentinKolb/tcpIO/netio"
	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	SendCmd = &cobra.Command{
		Use:     "send [message ...]",
		Short:   "Send one line to an echo server and print the reply",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitEnv)

	// add flags
	key := "endpoint"
	SendCmd.PersistentFlags().String(key, "localhost:7000", util.WrapString("The address of the echo server"))

	key = "timeout"
	SendCmd.PersistentFlags().Int(key, 10, util.WrapString("How long to wait for the reply (in seconds)"))

	util.SetupConnectionFlags(SendCmd)
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

func run(_ *cobra.Command, args []string) error {
	common.InitLoggers(viper.GetString("log-level"))

	connector, err := util.GetConnector()
	if err != nil {
		return err
	}

	conn, err := netio.Connect(connector, viper.GetString("endpoint"), util.GetConnectionConfig())
	if err != nil {
		return err
	}
	defer conn.Close()

	// one line per invocation
	if !conn.SendString(strings.Join(args, " ") + "\n") {
		return fmt.Errorf("connection closed before the message could be queued")
	}

	// poll for the reply line
	deadline := time.Now().Add(time.Duration(viper.GetInt("timeout")) * time.Second)
	for time.Now().Before(deadline) {
		if reply := conn.ReceiveString('\n'); reply != "" {
			fmt.Print(reply)
			return nil
		}
		if !conn.IsOpen() {
			return fmt.Errorf("connection to %s closed before a reply arrived", conn.RemoteAddr())
		}
		time.Sleep(5 * time.Millisecond)
	}

	return fmt.Errorf("no reply within %d seconds", viper.GetInt("timeout"))
}
