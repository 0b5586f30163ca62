package main

import (
	"encoding/json"
	"fmt"
	"os"

	bank "github.com/satbank/satbank/pkg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	// Load config
	var config bank.Config

	LoadConfig(&config)

	// define root command
	rootCmd := &cobra.Command{
		Use: "satbank",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
			os.Exit(0)
		},
	}

	// Add flags for each configuration option
	rootCmd.PersistentFlags().StringVar(&config.SatBank.Bitcoind, "bitcoind", "", "Bitcoind")
	rootCmd.PersistentFlags().StringVar(&config.SatBank.Network, "network", "", "Chain network")
	rootCmd.PersistentFlags().Int64Var(&config.SatBank.ConfirmationsNeeded, "confirmations-needed", 0, "Confirmations needed")
	rootCmd.PersistentFlags().StringVar(&config.WebAPI.AdminPort, "webapi-admin-port", "", "Web API admin port")
	rootCmd.PersistentFlags().StringVar(&config.WebAPI.AdminBind, "webapi-admin-bind", "", "Web API admin bind")
	rootCmd.PersistentFlags().StringVar(&config.WebAPI.PubPort, "webapi-pub-port", "", "Web API public port")
	rootCmd.PersistentFlags().StringVar(&config.WebAPI.PubBind, "webapi-pub-bind", "", "Web API public bind")
	rootCmd.PersistentFlags().StringVar(&config.Store.DBFile, "store-db-file", "", "Store DB file")
	// ...
	// Bind flags to config fields
	viper.BindPFlags(rootCmd.PersistentFlags())

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the SatBank server",
		Run: func(cmd *cobra.Command, args []string) {
			Server(config)
		},
	}

	configCmd := &cobra.Command{
		Use:   "showconf",
		Short: "Print the config state and exit",
		Run: func(cmd *cobra.Command, args []string) {
			o, _ := json.MarshalIndent(config, ">", " ")
			fmt.Println(string(o))
			os.Exit(0)
		},
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile [foreignID]",
		Short: "Ask a running SatBank to reconcile an account's deposits",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := Reconcile(args[0], config, SubCommandArgs{}); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		},
	}

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(reconcileCmd)

	// Execute the Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
	}

}

func LoadConfig(config *bank.Config) {

	configFileName, set := os.LookupEnv("SATBANK_ENV")
	if set {
		viper.SetConfigName(configFileName)
	} else {
		viper.SetConfigName("config")
	}

	// Set config file name and search paths
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/satbank/")
	viper.AddConfigPath("$HOME/.satbank")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("failed to find config file: ", err)
		os.Exit(1)
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %s", err))
	}
}
