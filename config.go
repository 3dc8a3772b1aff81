package sluice

import (
	"github.com/spf13/viper"
)

func loadConfig() {
	viper.SetConfigName("sluicerc")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.sluice")

	setupDefaults()

	viper.ReadInConfig()

	viper.SetEnvPrefix("sluice")
	viper.AutomaticEnv()
}

func setupDefaults() {
	defaultSettings := map[string]interface{}{
		"verbose":          false,
		"max_concurrency":  64,   // Maximum number of concurrent evaluation goroutines
		"chunk_size":       1024, // Elements handed to one goroutine at a time
		"cache_size":       128,  // Materialized nodes kept by the evaluator's memo cache
		"working_location": ".",
	}
	for key, value := range defaultSettings {
		viper.SetDefault(key, value)
	}

	aliases := map[string]string{
		"verbose":          "v",
		"working_location": "o",
	}
	for key, alias := range aliases {
		viper.RegisterAlias(alias, key)
	}
}
