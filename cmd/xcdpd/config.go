package xcdpd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// initFileConfig initializes configuration according to the following
// precedence:
// 1. Command line flags
// 2. Environment variables (prefixed with XCDPD, e.g. XCDPD_DATADIR)
// 3. Config file
// 4. Cobra default values
func initFileConfig(cmd *cobra.Command, filePath string) error {
	v := viper.New()

	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	v.SetEnvPrefix("XCDPD")
	v.AutomaticEnv()

	bindFlags(cmd, v)

	return nil
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Apply the viper config value to the flag when the flag is not set
		// and viper has a value.
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
			if err != nil {
				log.Fatalf("failed to bind flag %s to viper: %v", f.Name, err)
			}
		}
	})
}
