package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/ibm/ovsdb-portctl/pkg/ovsdb"
	"github.com/ibm/ovsdb-portctl/pkg/vswitch"
)

const (
	flagEndpoint = "endpoint"
	flagTimeout  = "timeout"
	flagFramed   = "framed"
	flagGuard    = "guard"
	flagTag      = "tag"
	flagTrunks   = "trunks"

	flagPrivateKey     = "private-key"
	flagCertificate    = "certificate"
	flagCACert         = "ca-cert"
	flagSSLVersion     = "ssl-version"
	flagSSLCipherSuite = "ssl-cipher-suite"
)

var (
	rootCmd = &cobra.Command{
		Use:   "portctl",
		Short: "Inspect and modify Open vSwitch bridges and ports",
		Long: `portctl talks to an Open vSwitch database server over the OVSDB management protocol.
It lists bridges and ports and adds access or trunk ports to a bridge.`,
		SilenceUsage: true,
	}

	listPortsCmd = &cobra.Command{
		Use:   "list-ports",
		Short: "List all ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient()
			if err != nil {
				return err
			}
			ports, err := cli.ListPorts(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ports)
		},
	}

	listBridgesCmd = &cobra.Command{
		Use:   "list-bridges",
		Short: "List all bridges with their ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient()
			if err != nil {
				return err
			}
			bridges, err := cli.ListBridges(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), bridges)
		},
	}

	addPortCmd = &cobra.Command{
		Use:   "add-port BRIDGE PORT",
		Short: "Add a port to a bridge",
		Long: `add-port creates a port and its interface and attaches it to the bridge.
Use --tag for an access port or --trunks for a trunk port. Without either the port carries all VLANs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := portMode(cmd.Flags())
			if err != nil {
				return err
			}
			cli, err := newClient()
			if err != nil {
				return err
			}
			if err := cli.AddPort(cmd.Context(), args[0], args[1], mode); err != nil {
				return err
			}
			klog.Infof("Added port %s to bridge %s", args[1], args[0])
			return nil
		},
	}

	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Check that the database server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newClient()
			if err != nil {
				return err
			}
			if err := cli.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is alive\n", cli.Endpoint())
			return nil
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig)
	klog.InitFlags(nil)

	pflag.CommandLine.AddGoFlag(flag.CommandLine.Lookup("v"))
	pflag.CommandLine.AddGoFlag(flag.CommandLine.Lookup("logtostderr"))
	pflag.CommandLine.Set("logtostderr", "true")

	rootCmd.PersistentFlags().StringP(flagEndpoint, "e", fmt.Sprintf("tcp:127.0.0.1:%d", ovsdb.DefaultPort), "database endpoint, tcp:HOST:PORT, ssl:HOST:PORT or unix:PATH")
	rootCmd.PersistentFlags().Duration(flagTimeout, 0, "timeout of every request, 0 waits forever")
	rootCmd.PersistentFlags().Bool(flagFramed, false, "read one JSON response instead of waiting for the server to close the connection")
	rootCmd.PersistentFlags().String(flagPrivateKey, "", "client private key file for ssl endpoints")
	rootCmd.PersistentFlags().String(flagCertificate, "", "client certificate file for ssl endpoints")
	rootCmd.PersistentFlags().String(flagCACert, "", "CA certificate file to verify the server")
	rootCmd.PersistentFlags().String(flagSSLVersion, "", "pin the TLS version, e.g. VersionTLS12")
	rootCmd.PersistentFlags().String(flagSSLCipherSuite, "", "restrict TLS to one cipher suite")
	viper.BindPFlags(rootCmd.PersistentFlags())

	addPortCmd.Flags().Uint16(flagTag, 0, "VLAN of an access port")
	addPortCmd.Flags().UintSlice(flagTrunks, nil, "VLANs of a trunk port, comma separated")
	addPortCmd.Flags().Bool(flagGuard, false, "fail if the bridge's ports change while the port is added")
	viper.BindPFlag(flagGuard, addPortCmd.Flags().Lookup(flagGuard))

	rootCmd.AddCommand(listPortsCmd, listBridgesCmd, addPortCmd, pingCmd)
}

func initConfig() {
	viper.SetEnvPrefix("portctl")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newClient() (*ovsdb.Client, error) {
	opts := []ovsdb.Option{ovsdb.WithTimeout(viper.GetDuration(flagTimeout))}
	if viper.GetBool(flagFramed) {
		opts = append(opts, ovsdb.WithFramedResponses())
	}
	if viper.GetBool(flagGuard) {
		opts = append(opts, ovsdb.WithPortsGuard())
	}
	endpoint := viper.GetString(flagEndpoint)
	if strings.HasPrefix(endpoint, "ssl:") {
		conf, err := ovsdb.NewTLSConfig(ovsdb.TLSOptions{
			PrivateKey:  viper.GetString(flagPrivateKey),
			Certificate: viper.GetString(flagCertificate),
			CACert:      viper.GetString(flagCACert),
			Version:     viper.GetString(flagSSLVersion),
			CipherSuite: viper.GetString(flagSSLCipherSuite),
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, ovsdb.WithTLSConfig(conf))
	}
	return ovsdb.ConnectEndpoint(endpoint, opts...)
}

// portMode builds the mode of a new port from --tag and --trunks, which are mutually exclusive.
func portMode(flags *pflag.FlagSet) (vswitch.PortMode, error) {
	tagSet := flags.Changed(flagTag)
	trunksSet := flags.Changed(flagTrunks)
	if tagSet && trunksSet {
		return nil, fmt.Errorf("--%s and --%s are mutually exclusive", flagTag, flagTrunks)
	}
	if tagSet {
		tag, err := flags.GetUint16(flagTag)
		if err != nil {
			return nil, err
		}
		return vswitch.Access{VLAN: tag}, nil
	}
	trunks, err := flags.GetUintSlice(flagTrunks)
	if err != nil {
		return nil, err
	}
	vlans := make([]uint16, 0, len(trunks))
	for _, t := range trunks {
		if t > 0xffff {
			return nil, fmt.Errorf("invalid VLAN %d", t)
		}
		vlans = append(vlans, uint16(t))
	}
	return vswitch.Trunk{VLANs: vlans}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := Execute(); err != nil {
		klog.Error(err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}
