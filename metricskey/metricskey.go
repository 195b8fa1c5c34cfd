package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfCryptoOperation is perf metric
	PerfCryptoOperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_crypto",
		Help:         "perf_crypto provides the sample metrics of crypto operations",
		RequiredTags: []string{"provider", "action"},
	}

	// PerfKeyDerivation is perf metric
	PerfKeyDerivation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_kdf",
		Help:         "perf_kdf provides the sample metrics of key derivations",
		RequiredTags: []string{"provider", "alg"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfCryptoOperation,
	&PerfKeyDerivation,
}
