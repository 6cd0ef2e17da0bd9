package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nando-os/setprotocol-go/api"
	"github.com/nando-os/setprotocol-go/eth"
	"github.com/nando-os/setprotocol-go/internal/logging"
	"github.com/nando-os/setprotocol-go/internal/metrics"
	"github.com/nando-os/setprotocol-go/internal/publisher"
)

const defaultEnvFile = ".env"

type globalFlags struct {
	EnvFile      string
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	From         string
	Decimals     int32
	Wait         bool
	PrintMetrics bool
}

// connect builds the client from --config or ETH_* variables. Replaced in tests.
var connect = func(ctx context.Context, flags *globalFlags, logger logrus.FieldLogger) (eth.Client, error) {
	var (
		cfg eth.Config
		err error
	)
	if flags.ConfigFile != "" {
		cfg, err = eth.NewConfigurationFromFile(flags.ConfigFile)
	} else {
		cfg, err = eth.NewConfiguration()
	}
	if err != nil {
		return nil, err
	}
	return eth.NewClient(ctx, cfg, eth.WithLogger(logger.WithField("component", "eth")))
}

type cli struct {
	root     *cobra.Command
	flags    globalFlags
	logger   *logrus.Logger
	registry *prometheus.Registry

	client    eth.Client
	sdk       *api.SetProtocol
	publisher publisher.Publisher
}

func newCLI() *cli {
	c := &cli{}
	root := &cobra.Command{
		Use:           "setprotocol",
		Short:         "Issue, redeem and inspect Set Protocol tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(c.flags.EnvFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			logger, err := logging.NewWithOutput(cmd.ErrOrStderr(), c.flags.LogLevel, c.flags.LogFormat)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.flags.PrintMetrics && c.registry != nil {
				return printMetrics(cmd.ErrOrStderr(), c.registry)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.flags.EnvFile, "env-file", defaultEnvFile, "dotenv file loaded before reading the environment")
	flags.StringVar(&c.flags.ConfigFile, "config", "", "configuration file (default: ETH_* environment variables)")
	flags.StringVar(&c.flags.LogLevel, "log-level", "info", "log level: debug|info|warn|error")
	flags.StringVar(&c.flags.LogFormat, "log-format", "text", "log format: text|json")
	flags.StringVar(&c.flags.From, "from", "", "sending account (default: first configured signing account)")
	flags.Int32Var(&c.flags.Decimals, "decimals", 0, "decimal places of quantities given on the command line")
	flags.BoolVar(&c.flags.Wait, "wait", false, "wait for submitted transactions to be mined")
	flags.BoolVar(&c.flags.PrintMetrics, "print-metrics", false, "print contract call metrics on exit")

	root.AddCommand(
		c.naturalUnitCmd(),
		c.issueCmd(),
		c.redeemCmd(),
		c.createCmd(),
		c.depositCmd(),
		c.withdrawCmd(),
		c.authorizedCmd(),
		c.whitelistCmd(),
		c.vaultBalanceCmd(),
		c.waitCmd(),
	)
	c.root = root
	return c
}

// execute runs the command tree and releases the session whether or not the command failed.
func (c *cli) execute() error {
	defer c.close()
	return c.root.Execute()
}

// loadEnvFile loads path if it exists. A missing file is only an error when it was asked for.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// session connects on first use so that help and flag errors never touch the network.
func (c *cli) session(ctx context.Context) (*api.SetProtocol, error) {
	if c.sdk != nil {
		return c.sdk, nil
	}
	client, err := connect(ctx, &c.flags, c.logger)
	if err != nil {
		return nil, err
	}
	addresses, err := api.LoadAddresses(nil)
	if err != nil {
		client.Close()
		return nil, err
	}

	c.registry = prometheus.NewRegistry()
	c.client = client
	c.sdk = api.New(client, addresses,
		api.WithLogger(c.logger.WithField("component", "api")),
		api.WithMetrics(metrics.New(c.registry)),
	)

	kafkaConfig, err := publisher.LoadKafkaConfig(nil)
	switch {
	case errors.Is(err, publisher.ErrNotConfigured):
	case err != nil:
		return nil, err
	default:
		p := publisher.NewKafkaPublisher(kafkaConfig, c.logger)
		if err := p.Connect(ctx); err != nil {
			return nil, err
		}
		c.publisher = p
	}
	return c.sdk, nil
}

func (c *cli) close() {
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close publisher")
		}
	}
	if c.client != nil {
		c.client.Close()
	}
}

// sender resolves --from, falling back to the first account that can sign.
func (c *cli) sender() (common.Address, error) {
	if c.flags.From != "" {
		return parseAddress("from", c.flags.From)
	}
	for _, account := range c.client.Config().Accounts() {
		if account.CanSign() {
			return account.Address, nil
		}
	}
	return common.Address{}, fmt.Errorf("no signing account configured; set ETH_ACCOUNTS or --from")
}

// submitted reports a transaction hash, publishes it and optionally waits for the receipt.
func (c *cli) submitted(cmd *cobra.Command, operation string, from, target common.Address, quantity *big.Int, hash common.Hash) error {
	ctx := cmd.Context()
	fmt.Fprintln(cmd.OutOrStdout(), hash.Hex())

	if c.publisher != nil {
		if err := c.publisher.PublishSubmission(ctx, &publisher.Submission{
			Hash:      hash,
			Operation: operation,
			From:      from,
			Contract:  target,
			Quantity:  quantity,
			ChainID:   c.client.ChainID(),
			Submitted: time.Now().UTC(),
		}); err != nil {
			c.logger.WithError(err).Warn("Failed to publish submission")
		}
	}

	if !c.flags.Wait {
		return nil
	}
	return c.waitFor(cmd, hash)
}

func (c *cli) waitFor(cmd *cobra.Command, hash common.Hash) error {
	receipt, err := c.client.WaitForTransaction(cmd.Context(), hash)
	if err != nil {
		return err
	}
	if !receipt.Succeeded() {
		return fmt.Errorf("transaction %s reverted in block %d", hash.Hex(), receipt.BlockNumber)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "mined in block %d (gas used %d)\n", receipt.BlockNumber, receipt.GasUsed)
	return nil
}

func printMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := ""
			for _, pair := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", pair.GetName(), pair.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s%s %g\n", family.GetName(), labels, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s%s count=%d sum=%g\n", family.GetName(), labels, m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
	return nil
}
