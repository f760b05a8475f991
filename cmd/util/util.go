package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/tcpIO/netio/common"
	"github.com/ValentinKolb/tcpIO/netio/transport"
	"github.com/ValentinKolb/tcpIO/netio/transport/tcp"
	"github.com/ValentinKolb/tcpIO/netio/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupConnectionFlags adds the common connection tuning flags to a command
func SetupConnectionFlags(cmd *cobra.Command) {
	key := "poll-interval"
	cmd.PersistentFlags().Int(key, common.DefaultPollIntervalMs, WrapString("Poll interval of the connection's background loop (in milliseconds)"))

	key = "read-chunk"
	cmd.PersistentFlags().Int(key, common.DefaultReadChunkSize, WrapString("Read buffer size in bytes - the maximum size of one inbound packet"))

	key = "write-timeout"
	cmd.PersistentFlags().Int(key, common.DefaultWriteTimeoutSec, WrapString("Bound of one send attempt in seconds, a timed out send closes the connection (0 = no deadline)"))

	key = "write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 = OS default)"))

	key = "read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 = OS default)"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval (in seconds, only for tcp)"))

	key = "tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time (in seconds, only for tcp, -1 = OS default)"))
}

// InitEnv initializes configuration from environment variables. The format
// of the environment variables is TCPIO_<flag> (e.g. TCPIO_POLL_INTERVAL=5)
func InitEnv() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tcpio")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetConnectionConfig reads the connection configuration from viper
func GetConnectionConfig() common.ConnectionConfig {
	return common.ConnectionConfig{
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("read-buffer") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("tcp-linger"),
		},
		PollIntervalMs:  viper.GetInt("poll-interval"),
		ReadChunkSize:   viper.GetInt("read-chunk"),
		WriteTimeoutSec: viper.GetInt("write-timeout"),
	}
}

// GetConnector creates a transport connector based on configuration
func GetConnector() (transport.IConnector, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPConnector(), nil
	case "unix":
		return unix.NewUnixConnector(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
