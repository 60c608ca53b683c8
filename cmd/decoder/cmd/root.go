package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "decoder",
	Short: "decoder - a real-time Solana swap and pool-creation decoder",
	Long: `decoder streams confirmed Solana transactions and turns the ones that
touch pump.fun's AMM, pump.fun's bonding curve, or Raydium's legacy AMM into
a unified buy/sell/swap/create_pool event, optionally persisting them to
Postgres.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.decoder.yaml)")
	rootCmd.PersistentFlags().String("rpc", "https://api.mainnet-beta.solana.com", "Solana RPC endpoint")
	rootCmd.PersistentFlags().String("network", "mainnet-beta", "Solana network (mainnet-beta, devnet, testnet)")

	if err := viper.BindPFlag("solana.rpc", rootCmd.PersistentFlags().Lookup("rpc")); err != nil {
		fmt.Fprintf(os.Stderr, "error binding flag: %v\n", err)
	}
	if err := viper.BindPFlag("solana.network", rootCmd.PersistentFlags().Lookup("network")); err != nil {
		fmt.Fprintf(os.Stderr, "error binding flag: %v\n", err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".decoder")
	}

	viper.SetEnvPrefix("DECODER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}
