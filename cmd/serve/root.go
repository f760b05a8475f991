package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ValentinKolb/tcpIO/cmd/util"
	"github.com/ValentinKolb/tcpIO/netio"
	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Logger = logger.GetLogger("cmd")

	ServeCmd = &cobra.Command{
		Use:     "serve",
		Short:   "Start the echo server",
		Long:    `Start a line echo server: every received line (delimiter '\n') is sent back to the client unchanged. The configuration can be set via command line flags or environment variables. The format of the environment variables is TCPIO_<flag> (e.g. TCPIO_POLL_INTERVAL=5)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitEnv)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:7000", util.WrapString("The address to listen on (e.g. 0.0.0.0:7000 or /tmp/tcpio.sock for the unix transport)"))

	key = "accept-poll-interval"
	ServeCmd.PersistentFlags().Int(key, common.DefaultAcceptPollIntervalMs, util.WrapString("Poll interval of the accept loop (in milliseconds)"))

	util.SetupConnectionFlags(ServeCmd)
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

func run(_ *cobra.Command, _ []string) error {
	common.InitLoggers(viper.GetString("log-level"))

	conf := common.ServerConfig{
		Connection:           util.GetConnectionConfig(),
		AcceptPollIntervalMs: viper.GetInt("accept-poll-interval"),
		LogLevel:             viper.GetString("log-level"),
	}
	fmt.Println(conf.String())

	connector, err := util.GetConnector()
	if err != nil {
		return err
	}

	srv, err := netio.CreateServer(connector, viper.GetString("endpoint"), conf)
	if err != nil {
		return err
	}

	// shut down cleanly on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			Logger.Infof("Shutting down")
			srv.Close()
			return nil
		default:
		}

		conn := srv.GetIncomingConnection()
		if conn == nil {
			if !srv.IsOpen() {
				return fmt.Errorf("server closed unexpectedly")
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		Logger.Infof("New connection from %s", conn.RemoteAddr())
		go echo(conn)
	}
}

// echo sends every received line back to the client until the connection
// reaches its terminal state
func echo(conn netio.IConnection) {
	defer conn.Close()

	for conn.IsOpen() {
		line := conn.ReceiveString('\n')
		if line == "" {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		conn.SendString(line)
	}
}
