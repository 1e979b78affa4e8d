package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/fivetwenty-io/restfully/pkg/restfully/natstrace"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// clientSession is a restfully session plus the collaborators the CLI wires
// around it.
type clientSession struct {
	*restfully.Session

	registry *prometheus.Registry
	conn     *nats.Conn
}

// newClientSession builds a session from the configuration file, the
// environment and the command line, in increasing order of precedence.
func newClientSession(cmd *cobra.Command) (*clientSession, error) {
	explicit := &restfully.Config{
		URI:           viper.GetString("uri"),
		Username:      viper.GetString("username"),
		Password:      viper.GetString("password"),
		MediaTypes:    viper.GetStringSlice("media_types"),
		GuessItemURIs: viper.GetBool("guess"),
		Debug:         viper.GetBool("verbose"),
	}

	if viper.GetBool("ask_password") {
		password, err := promptPassword(cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}

		explicit.Password = password
	}

	config, err := restfully.LoadConfigWith(viper.GetString("config"), explicit)
	if err != nil {
		return nil, err
	}

	// Set by a flag or a RESTFULLY_* variable.
	if viper.IsSet("retries") {
		config.RetryOnError = viper.GetInt("retries")
	}

	if viper.IsSet("wait") {
		config.WaitBeforeRetry = viper.GetDuration("wait")
	}

	if viper.IsSet("timeout") {
		config.Timeout = viper.GetDuration("timeout")
	}

	config.Logger = newLogger(cmd.ErrOrStderr(), config.Debug)

	cs := &clientSession{}

	if viper.GetBool("metrics") {
		cs.registry = prometheus.NewRegistry()
		config.Metrics = restfully.NewMetricsCollectorWithRegistry(cs.registry)
	}

	if natsURL := viper.GetString("nats_url"); natsURL != "" {
		conn, err := natstrace.Connect(natsURL)
		if err != nil {
			return nil, err
		}

		cs.conn = conn
		tracer := natstrace.New(conn, viper.GetString("nats_subject"), config.Logger)
		config.ResponseInterceptors = append(config.ResponseInterceptors, tracer.ResponseInterceptor())
	}

	session, err := restfully.New(config)
	if err != nil {
		cs.Close(io.Discard)

		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	cs.Session = session

	return cs, nil
}

// Close flushes trace events and prints the metrics when requested.
func (cs *clientSession) Close(w io.Writer) {
	if cs.conn != nil {
		_ = cs.conn.Flush()
		cs.conn.Close()
	}

	if cs.registry != nil {
		_ = renderMetrics(w, cs.registry)
	}
}

func newLogger(w io.Writer, debug bool) restfully.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    viper.GetBool("no_color"),
	}).Level(level).With().Timestamp().Logger()

	return restfully.NewZerologLogger(logger)
}

func promptPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in an int

	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}

	fmt.Fprint(w, "Password: ")

	bytePassword, err := term.ReadPassword(fd)

	fmt.Fprintln(w)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(bytePassword), nil
}
