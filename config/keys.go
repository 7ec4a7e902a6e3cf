package config

const (
	delimiter = "."

	StorePrefix = "store"

	StoreMaxHistorySize = StorePrefix + delimiter + "max_history_size"
	StoreRegistryShards = StorePrefix + delimiter + "registry_shards"

	LogPrefix = "log"

	LogLevel       = LogPrefix + delimiter + "level"
	LogDevelopment = LogPrefix + delimiter + "development"

	MetricsPrefix = "metrics"

	MetricsEnabled   = MetricsPrefix + delimiter + "enabled"
	MetricsNamespace = MetricsPrefix + delimiter + "namespace"
)

// Keys lists every dotted key a configuration file may set.
var Keys = []string{
	StoreMaxHistorySize,
	StoreRegistryShards,
	LogLevel,
	LogDevelopment,
	MetricsEnabled,
	MetricsNamespace,
}
